package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol/hash"
)

func TestFormatUploadPackRequest(t *testing.T) {
	want0 := hash.MustFromHex("d1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0")
	want1 := hash.MustFromHex("aaaabbbbccccddddeeeeffff0000111122223333")

	t.Run("single want", func(t *testing.T) {
		body, err := FormatUploadPackRequest("microgit/0", []hash.Hash{want0})
		require.NoError(t, err)

		first := fmt.Sprintf("want %s multi_ack_detailed side-band-64k thin-pack ofs-delta agent=microgit/0\n", want0)
		expected := fmt.Sprintf("%04x%s", len(first)+4, first) + "0000" + "0009done\n" + "0000"
		assert.Equal(t, expected, string(body))
	})

	t.Run("additional wants are bare", func(t *testing.T) {
		body, err := FormatUploadPackRequest("microgit/0", []hash.Hash{want0, want1})
		require.NoError(t, err)

		lines, _, err := ParsePacket(body)
		require.NoError(t, err)
		require.Len(t, lines, 3)
		assert.Contains(t, string(lines[0]), "want "+want0.String()+" ")
		assert.Equal(t, "want "+want1.String()+"\n", string(lines[1]))
		assert.Equal(t, "done\n", string(lines[2]))
	})

	t.Run("no wants", func(t *testing.T) {
		_, err := FormatUploadPackRequest("microgit/0", nil)
		require.ErrorIs(t, err, ErrNoWants)
	})
}
