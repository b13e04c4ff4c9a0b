package microgit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

// WriteTree snapshots the working directory as tree objects, bottom-up, and
// returns the root tree identity. The .git directory is skipped; empty
// directories produce no entry, as in Git. Files become blobs with mode
// 100644, or 100755 when owner-executable; symlinks become blobs of the
// link target with mode 120000.
func (r *Repository) WriteTree() (hash.Hash, error) {
	id, err := r.writeTreeDir(r.dir)
	if err != nil {
		return hash.Zero, err
	}
	if id.IsZero() {
		// An empty working directory still has a (well-known) root tree.
		return r.objects.Write(object.TypeTree, nil)
	}
	return id, nil
}

func (r *Repository) writeTreeDir(dir string) (hash.Hash, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return hash.Zero, fmt.Errorf("reading %s: %w", dir, err)
	}

	var entries []protocol.TreeEntry
	for _, de := range dirEntries {
		name := de.Name()
		if name == gitDirName {
			continue
		}
		path := filepath.Join(dir, name)

		switch {
		case de.IsDir():
			subID, err := r.writeTreeDir(path)
			if err != nil {
				return hash.Zero, err
			}
			if subID.IsZero() {
				// Empty directory, nothing to record.
				continue
			}
			entries = append(entries, protocol.TreeEntry{Mode: protocol.ModeDir, Name: name, Hash: subID})

		case de.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return hash.Zero, fmt.Errorf("reading symlink %s: %w", path, err)
			}
			blobID, err := r.objects.Write(object.TypeBlob, []byte(target))
			if err != nil {
				return hash.Zero, err
			}
			entries = append(entries, protocol.TreeEntry{Mode: protocol.ModeSymlink, Name: name, Hash: blobID})

		case de.Type().IsRegular():
			payload, err := os.ReadFile(path)
			if err != nil {
				return hash.Zero, fmt.Errorf("reading %s: %w", path, err)
			}
			blobID, err := r.objects.Write(object.TypeBlob, payload)
			if err != nil {
				return hash.Zero, err
			}

			mode := protocol.ModeFile
			if info, err := de.Info(); err == nil && info.Mode()&0o100 != 0 {
				mode = protocol.ModeExec
			}
			entries = append(entries, protocol.TreeEntry{Mode: mode, Name: name, Hash: blobID})
		}
	}

	if len(entries) == 0 {
		return hash.Zero, nil
	}

	payload, err := protocol.FormatTree(entries)
	if err != nil {
		return hash.Zero, err
	}
	return r.objects.Write(object.TypeTree, payload)
}

// CommitTree writes a commit object for the given tree. The author signs as
// committer too. A message without a trailing newline gets one.
func (r *Repository) CommitTree(tree hash.Hash, parents []hash.Hash, message string, author protocol.Signature) (hash.Hash, error) {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	payload, err := protocol.FormatCommit(&protocol.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    author,
		Committer: author,
		Message:   message,
	})
	if err != nil {
		return hash.Zero, err
	}

	return r.objects.Write(object.TypeCommit, payload)
}
