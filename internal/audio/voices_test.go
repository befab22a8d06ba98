package audio

import (
	"context"
	"testing"

	"github.com/neo/rapbattle_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceTableMappedLookup(t *testing.T) {
	table := NewVoiceTable(map[string]string{
		"MC Nova":  "nova",
		"Big Byte": "echo",
	}, types.VoiceOnyx, types.VoiceNova)

	assert.Equal(t, types.VoiceNova, table.VoiceFor("MC Nova"))
	assert.Equal(t, types.VoiceEcho, table.VoiceFor("Big Byte"))
}

func TestVoiceTableUnmappedUsesMaleDefault(t *testing.T) {
	table := NewVoiceTable(nil, types.VoiceOnyx, types.VoiceShimmer)

	assert.Equal(t, types.VoiceOnyx, table.VoiceFor("Somebody"))
	assert.Equal(t, types.VoiceOnyx, table.DefaultMale())
	assert.Equal(t, types.VoiceShimmer, table.DefaultFemale())
}

func TestVoiceTableInvalidMappingFallsThrough(t *testing.T) {
	table := NewVoiceTable(map[string]string{
		"MC Nova": "robotvoice9000",
	}, types.VoiceOnyx, types.VoiceNova)

	assert.Equal(t, types.VoiceOnyx, table.VoiceFor("MC Nova"))
}

func TestVoiceTableInvalidDefaultsReplaced(t *testing.T) {
	table := NewVoiceTable(nil, types.Voice("nope"), types.Voice(""))

	assert.Equal(t, types.VoiceOnyx, table.DefaultMale())
	assert.Equal(t, types.VoiceNova, table.DefaultFemale())
}

func TestSynthesizeEmptyTextSkipsBackend(t *testing.T) {
	svc, err := NewTTSService("test-key")
	require.NoError(t, err)

	clip, err := svc.Synthesize(context.Background(), "   \n ", "onyx")
	assert.NoError(t, err)
	assert.Nil(t, clip)
}

func TestNewTTSServiceRequiresKey(t *testing.T) {
	_, err := NewTTSService("  ")
	assert.Error(t, err)
}
