package microgit

import (
	"bytes"
	//nolint:gosec
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

// Test fixtures for the pack pipeline: helpers that assemble well-formed
// pack streams the way a remote would.

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func packObjectHeader(t object.Type, size int) []byte {
	b := []byte{byte(t)<<4 | byte(size&0xf)}
	size >>= 4
	for size > 0 {
		b[len(b)-1] |= 0x80
		b = append(b, byte(size&0x7f))
		size >>= 7
	}
	return b
}

func packEntry(t *testing.T, typ object.Type, payload []byte) []byte {
	t.Helper()
	return append(packObjectHeader(typ, len(payload)), deflate(t, payload)...)
}

func refDeltaEntry(t *testing.T, base hash.Hash, delta []byte) []byte {
	t.Helper()
	entry := packObjectHeader(object.TypeRefDelta, len(delta))
	entry = append(entry, base...)
	return append(entry, deflate(t, delta)...)
}

func ofsDeltaEntry(t *testing.T, offset byte, delta []byte) []byte {
	t.Helper()
	entry := packObjectHeader(object.TypeOfsDelta, len(delta))
	entry = append(entry, offset) // single-byte negative offset
	return append(entry, deflate(t, delta)...)
}

func buildPack(t *testing.T, entries ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("PACK")
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(2)))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(entries))))
	for _, e := range entries {
		buf.Write(e)
	}
	//nolint:gosec
	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes()
}

// insertDelta encodes target as an insert-only delta over base.
func insertDelta(base, target []byte) []byte {
	size := func(n uint64) []byte {
		var out []byte
		for {
			b := byte(n & 0x7f)
			n >>= 7
			if n > 0 {
				b |= 0x80
			}
			out = append(out, b)
			if n == 0 {
				return out
			}
		}
	}

	delta := size(uint64(len(base)))
	delta = append(delta, size(uint64(len(target)))...)
	for len(target) > 0 {
		chunk := min(len(target), 0x7f)
		delta = append(delta, byte(chunk))
		delta = append(delta, target[:chunk]...)
		target = target[chunk:]
	}
	return delta
}

// fixtureCommit builds a commit payload over the given tree.
func fixtureCommit(tree hash.Hash) []byte {
	return fmt.Appendf(nil,
		"tree %s\nauthor A U Thor <author@example.com> 1700000000 +0000\ncommitter A U Thor <author@example.com> 1700000000 +0000\n\ninitial\n",
		tree)
}

// fixtureTree builds a tree payload from (mode, name, id) triples already
// in name order.
func fixtureTree(t *testing.T, entries ...fixtureTreeEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%o %s\x00", e.mode, e.name)
		buf.Write(e.id)
	}
	return buf.Bytes()
}

type fixtureTreeEntry struct {
	mode uint32
	name string
	id   hash.Hash
}
