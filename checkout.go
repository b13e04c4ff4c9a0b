package microgit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
	"github.com/grafana/microgit/storage"
)

// checkoutConcurrency bounds how many blobs are written at once.
const checkoutConcurrency = 4

// Checkout materializes the tree of the given commit under dir.
//
// Directories are created on the walking goroutine; blob writes fan out
// through a bounded errgroup. An entry whose object is missing from the
// store is logged and skipped so that a partial object set still yields a
// partial working tree. A chmod failure is logged, not fatal.
func (r *Repository) Checkout(ctx context.Context, commitID hash.Hash, dir string) error {
	logger := log.FromContext(ctx)

	kind, payload, err := r.objects.Read(commitID)
	if err != nil {
		return fmt.Errorf("reading commit %s: %w", commitID, err)
	}
	if kind != object.TypeCommit {
		return fmt.Errorf("checkout of %s: object is a %s, not a commit", commitID, kind)
	}

	commit, err := protocol.ParseCommit(payload)
	if err != nil {
		return fmt.Errorf("decoding commit %s: %w", commitID, err)
	}

	logger.Debug("starting checkout",
		"commit", commitID.String(),
		"tree", commit.Tree.String(),
		"dir", dir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkoutConcurrency)

	if err := r.checkoutTree(gctx, g, commit.Tree, dir); err != nil {
		_ = g.Wait()
		return err
	}

	return g.Wait()
}

// checkoutTree expands one tree object into dir and recurses into subtrees.
func (r *Repository) checkoutTree(ctx context.Context, g *errgroup.Group, treeID hash.Hash, dir string) error {
	logger := log.FromContext(ctx)

	kind, payload, err := r.objects.Read(treeID)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warn("skipping missing tree", "tree", treeID.String(), "dir", dir)
			return nil
		}
		return fmt.Errorf("reading tree %s: %w", treeID, err)
	}
	if kind != object.TypeTree {
		logger.Warn("skipping non-tree object in tree position", "object", treeID.String(), "kind", kind.String())
		return nil
	}

	entries, err := protocol.ParseTree(payload)
	if err != nil {
		return fmt.Errorf("decoding tree %s: %w", treeID, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name)
		switch entry.Mode {
		case protocol.ModeDir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", path, err)
			}
			if err := r.checkoutTree(ctx, g, entry.Hash, path); err != nil {
				return err
			}

		case protocol.ModeFile:
			r.checkoutBlob(ctx, g, entry.Hash, path, 0o644)

		case protocol.ModeExec:
			r.checkoutBlob(ctx, g, entry.Hash, path, 0o755)

		case protocol.ModeSymlink:
			// Materialized as a plain file holding the link target, to
			// stay portable across platforms.
			r.checkoutBlob(ctx, g, entry.Hash, path, 0o644)

		default:
			logger.Warn("skipping entry with unknown mode",
				"name", entry.Name,
				"mode", entry.ModeString())
		}
	}

	return nil
}

// checkoutBlob schedules one blob write.
func (r *Repository) checkoutBlob(ctx context.Context, g *errgroup.Group, blobID hash.Hash, path string, perm fs.FileMode) {
	logger := log.FromContext(ctx)

	g.Go(func() error {
		kind, payload, err := r.objects.Read(blobID)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				logger.Warn("skipping missing blob", "blob", blobID.String(), "path", path)
				return nil
			}
			return fmt.Errorf("reading blob %s: %w", blobID, err)
		}
		if kind != object.TypeBlob {
			logger.Warn("skipping non-blob object in file position", "object", blobID.String(), "kind", kind.String())
			return nil
		}

		if err := os.WriteFile(path, payload, perm); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		// WriteFile's perm only applies to newly created files; make the
		// mode explicit either way.
		if err := os.Chmod(path, perm); err != nil {
			logger.Warn("chmod failed", "path", path, "perm", perm.String(), "error", err)
		}

		logger.Debug("wrote file", "path", path, "size", len(payload))
		return nil
	})
}
