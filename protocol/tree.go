package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grafana/microgit/protocol/hash"
)

// Tree entry modes as they appear on the wire. Modes are short ASCII octal
// numerals without leading zeros; the directory mode is written "40000".
const (
	ModeDir     uint32 = 0o040000
	ModeFile    uint32 = 0o100644
	ModeExec    uint32 = 0o100755
	ModeSymlink uint32 = 0o120000
)

var (
	// ErrInvalidTree is returned when a tree payload cannot be decoded.
	ErrInvalidTree = errors.New("invalid tree payload")

	// ErrInvalidTreeEntry is returned when an entry cannot be encoded,
	// for example a name containing a slash or NUL byte.
	ErrInvalidTreeEntry = errors.New("invalid tree entry")
)

// TreeEntry is one (mode, name, identity) triple of a tree object.
//
// The wire form is the ASCII octal mode, a space, the name, a NUL byte and
// the 20 raw identity bytes, entries concatenated back to back:
//
//	<mode> <name>\0<20 raw bytes>...
type TreeEntry struct {
	Mode uint32
	Name string
	Hash hash.Hash
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode&ModeDir == ModeDir && e.Mode&0o100000 == 0
}

// ModeString renders the mode the way it appears on the wire.
func (e TreeEntry) ModeString() string {
	return strconv.FormatUint(uint64(e.Mode), 8)
}

// ParseTree decodes a tree payload into its ordered entries.
func ParseTree(payload []byte) ([]TreeEntry, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))

	var entries []TreeEntry
	for {
		modeStr, err := reader.ReadString(' ')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// The last entry was already consumed.
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidTree, err)
		}
		modeStr = modeStr[:len(modeStr)-1] // ReadString includes delim
		mode, err := strconv.ParseUint(modeStr, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: mode %q: %v", ErrInvalidTree, modeStr, err)
		}

		name, err := reader.ReadString(0)
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated name", ErrInvalidTree)
		}
		name = name[:len(name)-1]

		var raw [hash.Size]byte
		if _, err := io.ReadFull(reader, raw[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated identity for %q", ErrInvalidTree, name)
		}
		id, err := hash.FromBytes(raw[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTree, err)
		}

		entries = append(entries, TreeEntry{
			Mode: uint32(mode),
			Name: name,
			Hash: id,
		})
	}

	return entries, nil
}

// FormatTree encodes entries as a tree payload. Entries are ordered by name
// bytewise; the input order does not matter. Names must be non-empty and
// free of slashes and NUL bytes, and every identity must be present.
func FormatTree(entries []TreeEntry) ([]byte, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("%w: bad name %q", ErrInvalidTreeEntry, e.Name)
		}
		if len(e.Hash) != hash.Size {
			return nil, fmt.Errorf("%w: %q has no identity", ErrInvalidTreeEntry, e.Name)
		}

		buf.WriteString(e.ModeString())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash)
	}

	return buf.Bytes(), nil
}
