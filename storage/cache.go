package storage

import (
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

// cached is one kind/payload pair held in memory.
type cached struct {
	kind    object.Type
	payload []byte
}

// Cache is an in-memory overlay over a LooseStore, used while unpacking:
// every object written during the pack decode stays available without
// re-opening and re-inflating its loose file, which is what delta base
// resolution would otherwise do for nearly every delta.
type Cache struct {
	store   *LooseStore
	objects map[string]cached
}

// NewCache returns an empty overlay over the given store.
func NewCache(store *LooseStore) *Cache {
	return &Cache{
		store:   store,
		objects: make(map[string]cached),
	}
}

// Write stores the object in the underlying store and keeps the payload in
// memory.
func (c *Cache) Write(t object.Type, payload []byte) (hash.Hash, error) {
	id, err := c.store.Write(t, payload)
	if err != nil {
		return hash.Zero, err
	}
	c.objects[id.String()] = cached{kind: t, payload: payload}
	return id, nil
}

// Read returns the object from memory when present, falling back to the
// underlying store.
func (c *Cache) Read(id hash.Hash) (object.Type, []byte, error) {
	if obj, ok := c.objects[id.String()]; ok {
		return obj.kind, obj.payload, nil
	}
	return c.store.Read(id)
}

// Has reports whether the identity is present in memory or on disk.
func (c *Cache) Has(id hash.Hash) bool {
	if _, ok := c.objects[id.String()]; ok {
		return true
	}
	return c.store.Has(id)
}

// Len returns the number of objects held in memory.
func (c *Cache) Len() int {
	return len(c.objects)
}
