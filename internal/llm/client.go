package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Role identifies who a chat message is attributed to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn handed to the completion endpoint.
type Message struct {
	Role Role
	Text string
}

// Options control a single completion call.
type Options struct {
	Temperature float64
	MaxChars    int
}

// Client is the narrow completion interface the orchestrator depends on.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, opts Options) (string, error)
}

// OpenAIClient implements Client on top of an OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	model llms.Model
	name  string
}

// ClientConfig holds configuration for the completion client.
type ClientConfig struct {
	APIKey   string
	Endpoint string
	Model    string
}

// NewOpenAIClient creates a completion client for the configured deployment.
func NewOpenAIClient(cfg ClientConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if strings.TrimSpace(cfg.Endpoint) != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %v", err)
	}

	return &OpenAIClient{model: model, name: cfg.Model}, nil
}

// Complete sends the prompt and returns the full response text. The
// returned text is not truncated here; callers apply Truncate so the cut
// happens at a whitespace boundary they control.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, messages []Message, opts Options) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	if systemPrompt != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))
	}
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Text))
	}

	callOpts := []llms.CallOption{}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.MaxChars > 0 {
		// Rough chars-per-token budget so the model rarely overruns the
		// cap and forces a mid-sentence cut.
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxChars/3))
	}

	resp, err := c.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", Classify("complete", err)
	}
	if len(resp.Choices) == 0 {
		return "", NewError(KindTransient, "complete", errors.New("empty model output"))
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	logging.Debug("LLM completion", map[string]interface{}{
		"model": c.name,
		"chars": len(text),
	})
	return text, nil
}
