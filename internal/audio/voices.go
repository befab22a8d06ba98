package audio

import (
	"github.com/neo/rapbattle_backend/internal/types"
)

// VoiceTable maps persona names to voices, with explicit defaults for
// personas not present in the table. No gender guessing from names: a
// persona either has a mapped voice or the caller states which default
// applies.
type VoiceTable struct {
	byPersona   map[string]types.Voice
	defaultMale types.Voice
	defaultFem  types.Voice
}

// NewVoiceTable builds a table from a persona→voice map. Invalid voice
// names in the map fall through to the defaults at lookup time.
func NewVoiceTable(mapping map[string]string, defaultMale, defaultFemale types.Voice) *VoiceTable {
	if !defaultMale.IsValid() {
		defaultMale = types.VoiceOnyx
	}
	if !defaultFemale.IsValid() {
		defaultFemale = types.VoiceNova
	}

	byPersona := make(map[string]types.Voice, len(mapping))
	for name, voiceStr := range mapping {
		if voice, err := types.ParseVoice(voiceStr); err == nil {
			byPersona[name] = voice
		}
	}

	return &VoiceTable{
		byPersona:   byPersona,
		defaultMale: defaultMale,
		defaultFem:  defaultFemale,
	}
}

// VoiceFor returns the configured voice for a persona, or the male
// default when unmapped. Personas wanting the female default must be
// listed in the table.
func (t *VoiceTable) VoiceFor(personaName string) types.Voice {
	if voice, ok := t.byPersona[personaName]; ok {
		return voice
	}
	return t.defaultMale
}

// DefaultMale returns the fallback voice for unmapped personas.
func (t *VoiceTable) DefaultMale() types.Voice { return t.defaultMale }

// DefaultFemale returns the configured female default voice.
func (t *VoiceTable) DefaultFemale() types.Voice { return t.defaultFem }
