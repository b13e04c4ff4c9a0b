package microgit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
	"github.com/grafana/microgit/storage"
)

// objectStore is what unpacking needs from a store: base lookups for delta
// resolution, and writes for everything decoded.
type objectStore interface {
	Write(t object.Type, payload []byte) (hash.Hash, error)
	Read(id hash.Hash) (object.Type, []byte, error)
}

// UnpackResult summarizes one pack decode.
type UnpackResult struct {
	// Written maps every newly stored identity to its kind.
	Written map[string]object.Type
	// Skipped counts objects dropped by the per-object failure policy:
	// corrupt bodies, unresolvable deltas, and pack-offset deltas.
	Skipped int
}

// unpackInto drains a pack stream into the store.
//
// Per-object failures are diagnostics, not fatal: a corrupt body, a delta
// whose base is absent, or an unsupported pack-offset delta is logged and
// skipped, and decoding continues, because a best-effort object set is more
// useful than none. Stream-level problems (no signature, an unknown object
// type, truncation inside an object) end the decode.
//
// The whole-stream checksum is verified after the drain; a mismatch is
// logged as a warning to match the lenient behavior of real remotes.
func unpackInto(ctx context.Context, store objectStore, pack []byte) (*UnpackResult, error) {
	logger := log.FromContext(ctx)

	reader, err := protocol.ParsePackfile(ctx, pack)
	if err != nil {
		return nil, err
	}

	result := &UnpackResult{Written: make(map[string]object.Type)}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		obj, err := reader.ReadObject()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, protocol.ErrInflatedDataIncorrectSize) {
				logger.Warn("skipping corrupt pack object", "error", err)
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("decoding packfile: %w", err)
		}

		switch obj.Type {
		case object.TypeCommit, object.TypeTree, object.TypeBlob, object.TypeTag:
			id, err := store.Write(obj.Type, obj.Data)
			if err != nil {
				return result, fmt.Errorf("storing %s: %w", obj.Type, err)
			}
			result.Written[id.String()] = obj.Type

		case object.TypeRefDelta:
			id, kind, err := resolveRefDelta(store, obj)
			if err != nil {
				logger.Warn("skipping unresolvable delta", "base", obj.BaseID.String(), "error", err)
				result.Skipped++
				continue
			}
			result.Written[id.String()] = kind

		case object.TypeOfsDelta:
			// The base is named by pack offset, which this decoder does
			// not index. The compressed bytes are already consumed.
			logger.Warn("skipping pack-offset delta",
				"relative_offset", obj.RelativeOffset,
				"error", protocol.ErrUnsupportedObjectType)
			result.Skipped++
		}
	}

	if remaining := reader.Remaining(); remaining > 0 {
		logger.Warn("packfile ended early",
			"declared_objects", reader.Count(),
			"missing_objects", remaining)
	}

	if err := reader.VerifyChecksum(); err != nil {
		logger.Warn("packfile checksum mismatch", "error", err)
	}

	logger.Debug("unpacked objects",
		"pack_version", reader.Version(),
		"written", len(result.Written),
		"skipped", result.Skipped,
		"pack_checksum", reader.Checksum().String())

	return result, nil
}

// resolveRefDelta rebuilds a ref-delta against its base and stores the
// result, which inherits the base's kind.
func resolveRefDelta(store objectStore, obj *protocol.PackfileObject) (hash.Hash, object.Type, error) {
	kind, base, err := store.Read(obj.BaseID)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return hash.Zero, object.TypeInvalid, NewBaseMissingError(obj.BaseID.String())
		}
		return hash.Zero, object.TypeInvalid, err
	}

	payload, err := protocol.ApplyDelta(base, obj.Data)
	if err != nil {
		return hash.Zero, object.TypeInvalid, err
	}

	id, err := store.Write(kind, payload)
	if err != nil {
		return hash.Zero, object.TypeInvalid, err
	}
	return id, kind, nil
}
