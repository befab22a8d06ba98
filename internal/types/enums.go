package types

import (
	"fmt"
)

// Phase represents the state of a debate session as seen by clients.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseGeneratingText      Phase = "generating_text"
	PhaseSynthesizingAudio   Phase = "synthesizing_audio"
	PhaseAwaitingPlaybackAck Phase = "awaiting_playback_ack"
	PhaseJudging             Phase = "judging"
	PhaseFinished            Phase = "finished"
	PhaseCancelled           Phase = "cancelled"
	PhaseFailed              Phase = "failed"
)

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	return p == PhaseFinished || p == PhaseCancelled || p == PhaseFailed
}

// String converts the enum to string
func (p Phase) String() string {
	return string(p)
}

// Winner sentinels used when the judge could not name a real persona.
const (
	WinnerDraw         = "Draw"
	WinnerStatsError   = "StatsError"
	WinnerErrorParsing = "ErrorParsing"
	WinnerErrorJudging = "ErrorJudging"
)

// IsSentinelWinner reports whether the winner label is a sentinel rather
// than a persona name. Only real persona winners update the store.
func IsSentinelWinner(winner string) bool {
	switch winner {
	case WinnerDraw, WinnerStatsError, WinnerErrorParsing, WinnerErrorJudging:
		return true
	}
	return false
}

// Voice represents available TTS voices
type Voice string

const (
	// VoiceAlloy - A versatile, neutral voice that maintains clarity and engagement
	VoiceAlloy Voice = "alloy"

	// VoiceEcho - A baritone voice with depth and warmth, good for narration
	VoiceEcho Voice = "echo"

	// VoiceFable - A youthful voice with a bright and optimistic tone
	VoiceFable Voice = "fable"

	// VoiceOnyx - A deep and authoritative male voice with gravitas
	VoiceOnyx Voice = "onyx"

	// VoiceNova - A feminine voice with a professional and welcoming tone
	VoiceNova Voice = "nova"

	// VoiceShimmer - A clear, energetic voice with a friendly character
	VoiceShimmer Voice = "shimmer"
)

var (
	// AllVoices contains all valid voices
	AllVoices = []Voice{
		VoiceAlloy,
		VoiceEcho,
		VoiceFable,
		VoiceOnyx,
		VoiceNova,
		VoiceShimmer,
	}

	// voiceMap maps string values to Voice
	voiceMap = map[string]Voice{
		string(VoiceAlloy):   VoiceAlloy,
		string(VoiceEcho):    VoiceEcho,
		string(VoiceFable):   VoiceFable,
		string(VoiceOnyx):    VoiceOnyx,
		string(VoiceNova):    VoiceNova,
		string(VoiceShimmer): VoiceShimmer,
	}
)

// ErrInvalidVoice is returned when parsing an unknown voice name.
var ErrInvalidVoice = fmt.Errorf("invalid voice")

// IsValid checks if the Voice is valid
func (v Voice) IsValid() bool {
	_, ok := voiceMap[string(v)]
	return ok
}

// String converts the enum to string
func (v Voice) String() string {
	return string(v)
}

// ParseVoice parses a string into a Voice
func ParseVoice(s string) (Voice, error) {
	if voice, ok := voiceMap[s]; ok {
		return voice, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidVoice, s)
}

// GetAllVoices returns all valid voices
func GetAllVoices() []Voice {
	return AllVoices
}

// Description returns a human-readable description of the voice
func (v Voice) Description() string {
	switch v {
	case VoiceAlloy:
		return "A versatile, neutral voice that maintains clarity and engagement"
	case VoiceEcho:
		return "A baritone voice with depth and warmth, good for narration"
	case VoiceFable:
		return "A youthful voice with a bright and optimistic tone"
	case VoiceOnyx:
		return "A deep and authoritative male voice with gravitas"
	case VoiceNova:
		return "A feminine voice with a professional and welcoming tone"
	case VoiceShimmer:
		return "A clear, energetic voice with a friendly character"
	default:
		return "Unknown voice"
	}
}
