package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopic(t *testing.T) {
	topic, err := NewTopic("  Cats are better than dogs  ", "  the eternal question ")
	require.NoError(t, err)
	assert.Equal(t, "Cats are better than dogs", topic.Title)
	assert.Equal(t, "the eternal question", topic.Description)

	_, err = NewTopic("", "whatever")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = NewTopic("   \t ", "")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = NewTopic(strings.Repeat("a", MaxTopicTitleLen), "")
	assert.NoError(t, err)

	_, err = NewTopic(strings.Repeat("a", MaxTopicTitleLen+1), "")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	// The cap counts runes, not bytes.
	_, err = NewTopic(strings.Repeat("ü", MaxTopicTitleLen), "")
	assert.NoError(t, err)
}

func TestPhaseTerminal(t *testing.T) {
	terminal := []Phase{PhaseFinished, PhaseCancelled, PhaseFailed}
	for _, p := range terminal {
		assert.True(t, p.Terminal(), "%s", p)
	}

	active := []Phase{PhaseIdle, PhaseGeneratingText, PhaseSynthesizingAudio, PhaseAwaitingPlaybackAck, PhaseJudging}
	for _, p := range active {
		assert.False(t, p.Terminal(), "%s", p)
	}
}

func TestIsSentinelWinner(t *testing.T) {
	for _, w := range []string{WinnerDraw, WinnerStatsError, WinnerErrorParsing, WinnerErrorJudging} {
		assert.True(t, IsSentinelWinner(w), "%s", w)
	}
	assert.False(t, IsSentinelWinner("MC Nova"))
	assert.False(t, IsSentinelWinner(""))
}

func TestParseVoice(t *testing.T) {
	for _, v := range AllVoices {
		parsed, err := ParseVoice(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
		assert.True(t, parsed.IsValid())
	}

	_, err := ParseVoice("megaphone")
	assert.ErrorIs(t, err, ErrInvalidVoice)
	assert.False(t, Voice("megaphone").IsValid())
}
