package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Run("storable kinds", func(t *testing.T) {
		for kind, expected := range map[string]Type{
			"commit": TypeCommit,
			"tree":   TypeTree,
			"blob":   TypeBlob,
			"tag":    TypeTag,
		} {
			parsed, err := ParseType(kind)
			require.NoError(t, err, kind)
			assert.Equal(t, expected, parsed)
			assert.Equal(t, kind, string(parsed.Bytes()))
			assert.True(t, parsed.Storable())
		}
	})

	t.Run("everything else", func(t *testing.T) {
		for _, kind := range []string{"", "ref-delta", "commits", "BLOB"} {
			_, err := ParseType(kind)
			assert.ErrorIs(t, err, ErrUnknownType, kind)
		}
	})
}

func TestTypeStorable(t *testing.T) {
	assert.False(t, TypeInvalid.Storable())
	assert.False(t, TypeReserved.Storable())
	assert.False(t, TypeOfsDelta.Storable())
	assert.False(t, TypeRefDelta.Storable())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "OBJ_REF_DELTA", TypeRefDelta.String())
	assert.Equal(t, "object.Type(9)", Type(9).String())
}
