package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

func TestCache(t *testing.T) {
	t.Run("write goes through to disk", func(t *testing.T) {
		s := newTestStore(t)
		c := NewCache(s)

		id, err := c.Write(object.TypeBlob, []byte("through"))
		require.NoError(t, err)

		assert.True(t, s.Has(id))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("read prefers memory", func(t *testing.T) {
		s := newTestStore(t)
		c := NewCache(s)

		id, err := c.Write(object.TypeBlob, []byte("cached"))
		require.NoError(t, err)

		// Remove the loose file; the overlay still serves the object.
		require.NoError(t, os.Remove(filepath.Join(s.Root(), id.String()[:2], id.String()[2:])))

		kind, payload, err := c.Read(id)
		require.NoError(t, err)
		assert.Equal(t, object.TypeBlob, kind)
		assert.Equal(t, "cached", string(payload))
	})

	t.Run("read falls back to disk", func(t *testing.T) {
		s := newTestStore(t)
		id, err := s.Write(object.TypeBlob, []byte("on disk"))
		require.NoError(t, err)

		c := NewCache(s)
		kind, payload, err := c.Read(id)
		require.NoError(t, err)
		assert.Equal(t, object.TypeBlob, kind)
		assert.Equal(t, "on disk", string(payload))
		assert.True(t, c.Has(id))
	})

	t.Run("missing everywhere", func(t *testing.T) {
		c := NewCache(newTestStore(t))
		_, _, err := c.Read(hash.MustFromHex("0000000000000000000000000000000000000000"))
		require.ErrorIs(t, err, ErrObjectNotFound)
	})
}
