// Package storage implements the on-disk loose object store: one
// content-addressed, zlib-deflated file per object under .git/objects.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zlib"

	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

// LooseStore reads and writes loose objects. An object with identity
// abcdef... lives at <root>/ab/cdef..., its body the zlib-deflated framed
// form "<kind> <len>\0<payload>".
//
// Writes are idempotent and content-addressed, so no cross-object locking
// is needed; concurrent writers of the same identity produce the same
// bytes.
type LooseStore struct {
	root string
}

// NewLooseStore returns a store rooted at the given objects directory,
// usually <repo>/.git/objects.
func NewLooseStore(root string) *LooseStore {
	return &LooseStore{root: root}
}

// Root returns the objects directory the store operates on.
func (s *LooseStore) Root() string {
	return s.root
}

// Write stores a payload under its computed identity and returns it.
// Writing an identity that already exists is a no-op: the content is
// already correct by construction. The file becomes visible only once
// complete, via a temp-file rename.
func (s *LooseStore) Write(t object.Type, payload []byte) (hash.Hash, error) {
	if !t.Storable() {
		return hash.Zero, fmt.Errorf("cannot store %s objects", t)
	}

	id := hash.Object(t, payload)
	path := s.objectPath(id)

	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return hash.Zero, fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp_obj_*")
	if err != nil {
		return hash.Zero, fmt.Errorf("create temp object file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := zlib.NewWriter(tmp)
	if err := writeFramed(zw, t, payload); err != nil {
		_ = tmp.Close()
		return hash.Zero, fmt.Errorf("deflate object %s: %w", id, err)
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return hash.Zero, fmt.Errorf("deflate object %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return hash.Zero, fmt.Errorf("close temp object file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return hash.Zero, fmt.Errorf("link object %s into place: %w", id, err)
	}

	return id, nil
}

// Read returns the kind and payload of the object with the given identity.
// A missing file yields ObjectNotFoundError; an undecodable one yields
// CorruptObjectError.
func (s *LooseStore) Read(id hash.Hash) (object.Type, []byte, error) {
	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return object.TypeInvalid, nil, NewObjectNotFoundError(id.String())
		}
		return object.TypeInvalid, nil, fmt.Errorf("open object %s: %w", id, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), "not a zlib stream")
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), "inflate failed")
	}

	return parseFramed(id, raw)
}

// Has reports whether the identity is present in the store.
func (s *LooseStore) Has(id hash.Hash) bool {
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

func (s *LooseStore) objectPath(id hash.Hash) string {
	hex := id.String()
	return filepath.Join(s.root, hex[:2], hex[2:])
}

// writeFramed writes "<kind> <len>\0<payload>".
func writeFramed(w io.Writer, t object.Type, payload []byte) error {
	if _, err := fmt.Fprintf(w, "%s %d\x00", t.Bytes(), len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// parseFramed splits "<kind> <len>\0<payload>" and validates both fields.
func parseFramed(id hash.Hash, raw []byte) (object.Type, []byte, error) {
	header, payload, found := bytes.Cut(raw, []byte{0})
	if !found {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), "no header terminator")
	}

	kind, lenStr, found := bytes.Cut(header, []byte(" "))
	if !found {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), "malformed header")
	}

	t, err := object.ParseType(string(kind))
	if err != nil {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), fmt.Sprintf("unknown kind %q", kind))
	}

	declared, err := strconv.Atoi(string(lenStr))
	if err != nil || declared < 0 {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(), fmt.Sprintf("bad length %q", lenStr))
	}
	if declared != len(payload) {
		return object.TypeInvalid, nil, NewCorruptObjectError(id.String(),
			fmt.Sprintf("declared %d bytes, have %d", declared, len(payload)))
	}

	return t, payload, nil
}
