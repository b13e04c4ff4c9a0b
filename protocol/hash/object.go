package hash

import (
	//nolint:gosec // Git object identities are defined over SHA-1.
	"crypto/sha1"
	"hash"
	"strconv"

	"github.com/grafana/microgit/protocol/object"
)

// Object computes the identity of a Git object. Objects are hashed with a
// header in front of the content: "<type> <size>\0". This ensures that
// objects of different types with the same content have different hashes,
// and that size and type are verified when the object is read back.
func Object(t object.Type, data []byte) Hash {
	h := NewHasher(t, int64(len(data)))
	h.Write(data)
	return h.Sum(nil)
}

// Hasher accumulates an object identity.
type Hasher struct {
	hash.Hash
}

// NewHasher returns a Hasher with the object header already written, so the
// caller only writes the object content.
func NewHasher(t object.Type, size int64) Hasher {
	h := Hasher{Hash: sha1.New()}

	chunks := [][]byte{
		t.Bytes(),
		[]byte(" "),
		[]byte(strconv.FormatInt(size, 10)),
		{0},
	}
	for _, chunk := range chunks {
		// sha1's Write never fails.
		_, _ = h.Hash.Write(chunk)
	}

	return h
}
