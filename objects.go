package microgit

import (
	"fmt"

	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

// HashObject computes the identity of a payload and, when store is true,
// writes it to the object store.
func (r *Repository) HashObject(t object.Type, payload []byte, store bool) (hash.Hash, error) {
	if !store {
		if !t.Storable() {
			return hash.Zero, fmt.Errorf("cannot hash %s objects", t)
		}
		return hash.Object(t, payload), nil
	}
	return r.objects.Write(t, payload)
}

// ReadObject returns the kind and payload of a stored object.
func (r *Repository) ReadObject(id hash.Hash) (object.Type, []byte, error) {
	return r.objects.Read(id)
}

// LsTree returns the ordered entries of a tree object.
func (r *Repository) LsTree(id hash.Hash) ([]protocol.TreeEntry, error) {
	kind, payload, err := r.objects.Read(id)
	if err != nil {
		return nil, err
	}
	if kind != object.TypeTree {
		return nil, fmt.Errorf("object %s is a %s, not a tree", id, kind)
	}
	return protocol.ParseTree(payload)
}

// GetCommit reads and decodes a commit object.
func (r *Repository) GetCommit(id hash.Hash) (*protocol.Commit, error) {
	kind, payload, err := r.objects.Read(id)
	if err != nil {
		return nil, err
	}
	if kind != object.TypeCommit {
		return nil, fmt.Errorf("object %s is a %s, not a commit", id, kind)
	}
	return protocol.ParseCommit(payload)
}
