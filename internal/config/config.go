// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/neo/rapbattle_backend/internal/types"
)

// Config is the full service configuration.
type Config struct {
	Port     string
	CertFile string
	KeyFile  string

	// LLM access
	LLMEndpoint   string
	LLMAPIKey     string
	LLMDeployment string

	// TTS access
	TTSEndpoint string
	TTSAPIKey   string
	TTSRegion   string

	// Persona store
	StoreDir string

	// Headline prefill
	NewsEndpoint string
	NewsAPIKey   string

	// Voice selection
	VoiceMap           map[string]string
	DefaultMaleVoice   types.Voice
	DefaultFemaleVoice types.Voice

	// Personas inserted when the store is empty
	SeedPersonas []string
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables win either way.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "3000"),
		CertFile:      os.Getenv("TLS_CERT_FILE"),
		KeyFile:       os.Getenv("TLS_KEY_FILE"),
		LLMEndpoint:   os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:     firstenv("LLM_API_KEY", "OPENAI_API_KEY"),
		LLMDeployment: getenv("LLM_DEPLOYMENT", "gpt-4o-mini"),
		TTSEndpoint:   os.Getenv("TTS_ENDPOINT"),
		TTSAPIKey:     firstenv("TTS_API_KEY", "OPENAI_API_KEY"),
		TTSRegion:     os.Getenv("TTS_REGION"),
		StoreDir:      getenv("STORE_DIR", "data"),
		NewsEndpoint:  os.Getenv("NEWS_ENDPOINT"),
		NewsAPIKey:    os.Getenv("NEWS_API_KEY"),
		VoiceMap:      parseVoiceMap(os.Getenv("VOICES_MAP")),
		SeedPersonas:  parseList(getenv("PERSONAS_SEED", "MC Nova,Big Byte")),
	}

	cfg.DefaultMaleVoice = types.Voice(getenv("VOICES_DEFAULT_MALE", types.VoiceOnyx.String()))
	cfg.DefaultFemaleVoice = types.Voice(getenv("VOICES_DEFAULT_FEMALE", types.VoiceNova.String()))

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY (or OPENAI_API_KEY) is required")
	}
	if cfg.TTSAPIKey == "" {
		return nil, fmt.Errorf("TTS_API_KEY (or OPENAI_API_KEY) is required")
	}
	if len(cfg.SeedPersonas) < 2 {
		return nil, fmt.Errorf("PERSONAS_SEED must list at least two personas")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstenv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// parseVoiceMap decodes "Persona=voice,Other=voice" pairs.
func parseVoiceMap(raw string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, voice, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		voice = strings.TrimSpace(voice)
		if name != "" && voice != "" {
			result[name] = voice
		}
	}
	return result
}

func parseList(raw string) []string {
	var result []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
