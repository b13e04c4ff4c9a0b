package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol/object"
)

func TestObject(t *testing.T) {
	t.Run("known blob identity", func(t *testing.T) {
		// git hash-object of a file containing "hello world\n".
		h := Object(object.TypeBlob, []byte("hello world\n"))
		assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", h.String())
	})

	t.Run("empty blob identity", func(t *testing.T) {
		h := Object(object.TypeBlob, nil)
		assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", h.String())
	})

	t.Run("empty tree identity", func(t *testing.T) {
		h := Object(object.TypeTree, nil)
		assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", h.String())
	})

	t.Run("type changes the identity", func(t *testing.T) {
		data := []byte("same payload")
		assert.False(t, Object(object.TypeBlob, data).Is(Object(object.TypeTag, data)))
	})
}

func TestNewHasher(t *testing.T) {
	h := NewHasher(object.TypeBlob, 12)
	_, err := h.Write([]byte("hello world\n"))
	require.NoError(t, err)

	var sum Hash = h.Sum(nil)
	assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", sum.String())
}
