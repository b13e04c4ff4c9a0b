// Package object defines the kinds of objects a Git repository stores. The
// tree and commit payload codecs live in package protocol.
//
// Git stores all content as typed objects in its object database:
//
//   - Commit: repository snapshot metadata plus references to a tree and
//     zero or more parent commits.
//   - Tree: a directory listing referencing blobs and other trees.
//   - Blob: a file's contents.
//   - Tag: an annotated reference to another object.
//
// Two additional types appear only inside pack files:
//   - OfsDelta: a delta whose base is located by pack offset.
//   - RefDelta: a delta whose base is named by identity.
//
// See https://git-scm.com/docs/pack-format#_object_types
package object

import (
	"errors"
	"fmt"
)

// Type is a Git object type. The values match Git's pack representation,
// where the type is a 3-bit field. Type 5 is reserved and 0 is invalid.
type Type uint8

const (
	TypeInvalid  Type = 0 // 0b000
	TypeCommit   Type = 1 // 0b001
	TypeTree     Type = 2 // 0b010
	TypeBlob     Type = 3 // 0b011
	TypeTag      Type = 4 // 0b100
	TypeReserved Type = 5 // 0b101
	TypeOfsDelta Type = 6 // 0b110
	TypeRefDelta Type = 7 // 0b111
)

// ErrUnknownType is returned when a kind string does not name a storable type.
var ErrUnknownType = errors.New("unknown object type")

// String returns the pack-style name of the type, for diagnostics.
func (t Type) String() string {
	switch t {
	case TypeInvalid:
		return "OBJ_INVALID"
	case TypeCommit:
		return "OBJ_COMMIT"
	case TypeTree:
		return "OBJ_TREE"
	case TypeBlob:
		return "OBJ_BLOB"
	case TypeTag:
		return "OBJ_TAG"
	case TypeReserved:
		return "OBJ_RESERVED"
	case TypeOfsDelta:
		return "OBJ_OFS_DELTA"
	case TypeRefDelta:
		return "OBJ_REF_DELTA"
	default:
		return fmt.Sprintf("object.Type(%d)", uint8(t))
	}
}

// Bytes returns the kind string used in the object header, e.g. "commit".
// Delta types have no header form and return "unknown".
func (t Type) Bytes() []byte {
	switch t {
	case TypeCommit:
		return []byte("commit")
	case TypeTree:
		return []byte("tree")
	case TypeBlob:
		return []byte("blob")
	case TypeTag:
		return []byte("tag")
	default:
		return []byte("unknown")
	}
}

// ParseType maps a kind string from an object header to its Type.
// Only the four storable kinds have a header form.
func ParseType(kind string) (Type, error) {
	switch kind {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
}

// Storable reports whether the type may be written to the object store.
// Delta types must be resolved to their base type first.
func (t Type) Storable() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}
