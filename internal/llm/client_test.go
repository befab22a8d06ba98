package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(ClientConfig{})
	assert.Error(t, err)

	_, err = NewOpenAIClient(ClientConfig{APIKey: "   "})
	assert.Error(t, err)
}

func TestNewOpenAIClientDefaultsModel(t *testing.T) {
	c, err := NewOpenAIClient(ClientConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.name)
}
