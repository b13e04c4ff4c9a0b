package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

func newTestStore(t *testing.T) *LooseStore {
	t.Helper()
	return NewLooseStore(filepath.Join(t.TempDir(), "objects"))
}

func TestLooseStoreWrite(t *testing.T) {
	t.Run("round-trips every kind", func(t *testing.T) {
		s := newTestStore(t)

		for kind, payload := range map[object.Type][]byte{
			object.TypeBlob:   []byte("blob bytes"),
			object.TypeTree:   []byte("tree bytes"),
			object.TypeCommit: []byte("commit bytes"),
			object.TypeTag:    []byte("tag bytes"),
		} {
			id, err := s.Write(kind, payload)
			require.NoError(t, err)
			assert.True(t, id.Is(hash.Object(kind, payload)))

			gotKind, gotPayload, err := s.Read(id)
			require.NoError(t, err)
			assert.Equal(t, kind, gotKind)
			assert.Equal(t, payload, gotPayload)
		}
	})

	t.Run("known identity and on-disk layout", func(t *testing.T) {
		s := newTestStore(t)

		id, err := s.Write(object.TypeBlob, []byte("hello world\n"))
		require.NoError(t, err)
		assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", id.String())

		// Loose layout: first two hex chars are the fan-out directory.
		path := filepath.Join(s.Root(), "3b", "18e512dba79e4c8300dd08aeb37f8e728b8dad")
		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		// The file body is the zlib-deflated framed form.
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		require.NoError(t, err)
		framed, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, "blob 12\x00hello world\n", string(framed))
	})

	t.Run("write is idempotent", func(t *testing.T) {
		s := newTestStore(t)
		payload := []byte("same content")

		id1, err := s.Write(object.TypeBlob, payload)
		require.NoError(t, err)
		first, err := os.ReadFile(filepath.Join(s.Root(), id1.String()[:2], id1.String()[2:]))
		require.NoError(t, err)

		id2, err := s.Write(object.TypeBlob, payload)
		require.NoError(t, err)
		assert.True(t, id1.Is(id2))

		second, err := os.ReadFile(filepath.Join(s.Root(), id1.String()[:2], id1.String()[2:]))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects delta types", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Write(object.TypeRefDelta, []byte("delta"))
		require.Error(t, err)
	})
}

func TestLooseStoreRead(t *testing.T) {
	t.Run("missing object", func(t *testing.T) {
		s := newTestStore(t)

		_, _, err := s.Read(hash.MustFromHex("0000000000000000000000000000000000000000"))
		require.ErrorIs(t, err, ErrObjectNotFound)

		var notFound *ObjectNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "0000000000000000000000000000000000000000", notFound.ObjectID)
	})

	t.Run("not a zlib stream", func(t *testing.T) {
		s := newTestStore(t)
		id := corruptObject(t, s, []byte("plain bytes, no zlib"))

		_, _, err := s.Read(id)
		require.ErrorIs(t, err, ErrCorruptObject)
	})

	t.Run("header without terminator", func(t *testing.T) {
		s := newTestStore(t)
		id := corruptObject(t, s, deflateRaw(t, []byte("blob 4 no nul here")))

		_, _, err := s.Read(id)
		require.ErrorIs(t, err, ErrCorruptObject)
	})

	t.Run("unknown kind", func(t *testing.T) {
		s := newTestStore(t)
		id := corruptObject(t, s, deflateRaw(t, []byte("gadget 4\x00abcd")))

		_, _, err := s.Read(id)
		require.ErrorIs(t, err, ErrCorruptObject)
	})

	t.Run("length mismatch", func(t *testing.T) {
		s := newTestStore(t)
		id := corruptObject(t, s, deflateRaw(t, []byte("blob 3\x00abcd")))

		_, _, err := s.Read(id)
		require.ErrorIs(t, err, ErrCorruptObject)
	})
}

func TestLooseStoreHas(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Write(object.TypeBlob, []byte("present"))
	require.NoError(t, err)

	assert.True(t, s.Has(id))
	assert.False(t, s.Has(hash.MustFromHex("0000000000000000000000000000000000000000")))
}

// corruptObject plants raw bytes at an arbitrary identity's path.
func corruptObject(t *testing.T, s *LooseStore, raw []byte) hash.Hash {
	t.Helper()

	id := hash.MustFromHex("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	path := filepath.Join(s.Root(), "de", "adbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return id
}

func deflateRaw(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
