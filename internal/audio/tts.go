package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/neo/rapbattle_backend/internal/llm"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/sashabaranov/go-openai"
)

// Clip is one synthesized utterance with its declared codec.
type Clip struct {
	Data []byte `json:"data"`
	MIME string `json:"mime"`
}

// Synthesizer is the narrow speech-synthesis interface the orchestrator
// depends on. A nil Clip with nil error means there was nothing to speak.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID string) (*Clip, error)
}

// TTSService synthesizes speech through the OpenAI speech endpoint.
type TTSService struct {
	client *openai.Client
}

// NewTTSService creates a new TTS service.
func NewTTSService(apiKey string) (*TTSService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("tts api key is required")
	}
	return &TTSService{client: openai.NewClient(apiKey)}, nil
}

// Synthesize generates audio for text using the given voice. Empty or
// whitespace-only text returns nil without calling the backend.
func (t *TTSService) Synthesize(ctx context.Context, text string, voiceID string) (*Clip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          speechVoice(voiceID),
		ResponseFormat: openai.SpeechResponseFormatAac,
	}

	resp, err := t.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, llm.Classify("synthesize", err)
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp); err != nil {
		return nil, llm.Classify("synthesize", fmt.Errorf("failed to read response: %v", err))
	}

	logging.LogTTSEvent("synthesized", voiceID, map[string]interface{}{
		"bytes": buf.Len(),
	})

	return &Clip{Data: buf.Bytes(), MIME: "audio/aac"}, nil
}

// speechVoice maps a voice id onto the SDK enum, falling back to alloy.
func speechVoice(voiceID string) openai.SpeechVoice {
	switch voiceID {
	case "alloy":
		return openai.VoiceAlloy
	case "echo":
		return openai.VoiceEcho
	case "fable":
		return openai.VoiceFable
	case "onyx":
		return openai.VoiceOnyx
	case "nova":
		return openai.VoiceNova
	case "shimmer":
		return openai.VoiceShimmer
	default:
		return openai.VoiceAlloy
	}
}
