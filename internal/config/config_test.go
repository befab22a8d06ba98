package config

import (
	"testing"

	"github.com/neo/rapbattle_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("TTS_API_KEY", "")
	t.Setenv("PERSONAS_SEED", "")
	t.Setenv("VOICES_MAP", "")
	t.Setenv("VOICES_DEFAULT_MALE", "")
	t.Setenv("VOICES_DEFAULT_FEMALE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, "sk-test", cfg.TTSAPIKey)
	assert.Equal(t, []string{"MC Nova", "Big Byte"}, cfg.SeedPersonas)
	assert.Equal(t, types.VoiceOnyx, cfg.DefaultMaleVoice)
	assert.Equal(t, types.VoiceNova, cfg.DefaultFemaleVoice)
}

func TestLoadExplicitKeysWin(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-shared")
	t.Setenv("LLM_API_KEY", "sk-llm")
	t.Setenv("TTS_API_KEY", "sk-tts")
	t.Setenv("PERSONAS_SEED", "A,B,C")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-llm", cfg.LLMAPIKey)
	assert.Equal(t, "sk-tts", cfg.TTSAPIKey)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.SeedPersonas)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("TTS_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresTwoSeedPersonas(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PERSONAS_SEED", "Loner")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseVoiceMap(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single pair", "MC Nova=nova", map[string]string{"MC Nova": "nova"}},
		{
			"multiple pairs with spaces",
			" MC Nova = nova , Big Byte=echo ",
			map[string]string{"MC Nova": "nova", "Big Byte": "echo"},
		},
		{"malformed entries skipped", "no-equals,=nova,MC Nova=", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVoiceMap(tt.raw))
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList(" a , b ,, "))
	assert.Nil(t, parseList("  ,  "))
}
