package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPacks(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		out, err := FormatPacks(PackLine("hello\n"))
		require.NoError(t, err)
		assert.Equal(t, "000ahello\n", string(out))
	})

	t.Run("flush between lines", func(t *testing.T) {
		out, err := FormatPacks(
			PackLine("want abc\n"),
			SpecialPack(FlushPacket),
			PackLine("done\n"),
			SpecialPack(FlushPacket),
		)
		require.NoError(t, err)
		assert.Equal(t, "000dwant abc\n00000009done\n0000", string(out))
	})

	t.Run("payload too large", func(t *testing.T) {
		_, err := FormatPacks(PackLine(strings.Repeat("x", MaxPktLineDataSize+1)))
		require.ErrorIs(t, err, ErrDataTooLarge)
	})
}

func TestParsePacket(t *testing.T) {
	t.Run("round-trips payloads", func(t *testing.T) {
		payloads := []string{
			"a",
			"hello world\n",
			strings.Repeat("y", 1000),
			strings.Repeat("z", MaxPktLineDataSize),
		}

		var packs []Pack
		for _, p := range payloads {
			packs = append(packs, PackLine(p))
		}
		encoded, err := FormatPacks(packs...)
		require.NoError(t, err)

		lines, remainder, err := ParsePacket(encoded)
		require.NoError(t, err)
		assert.Nil(t, remainder)
		require.Len(t, lines, len(payloads))
		for i, p := range payloads {
			assert.Equal(t, p, string(lines[i]))
		}
	})

	t.Run("drops flush packets", func(t *testing.T) {
		lines, _, err := ParsePacket([]byte("0009data\n00000009more\n0000"))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "data\n", string(lines[0]))
		assert.Equal(t, "more\n", string(lines[1]))
	})

	t.Run("malformed length", func(t *testing.T) {
		_, remainder, err := ParsePacket([]byte("zzzzdata"))
		require.ErrorIs(t, err, ErrMalformedPacket)
		assert.Equal(t, "zzzzdata", string(remainder))
	})

	t.Run("declared length beyond buffer", func(t *testing.T) {
		_, _, err := ParsePacket([]byte("00ffshort"))
		require.ErrorIs(t, err, ErrMalformedPacket)
	})

	t.Run("trailing bytes shorter than a length field", func(t *testing.T) {
		_, _, err := ParsePacket([]byte("0009data\nab"))
		require.ErrorIs(t, err, ErrMalformedPacket)
	})
}
