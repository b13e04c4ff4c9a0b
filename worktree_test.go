package microgit

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

func TestWriteTree(t *testing.T) {
	t.Run("entries are ordered by name, not creation order", func(t *testing.T) {
		r := testRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "b"), []byte("second\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "a"), []byte("first\n"), 0o644))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		entries, err := r.LsTree(treeID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Name)
		assert.Equal(t, "b", entries[1].Name)
	})

	t.Run("nested directories become subtrees", func(t *testing.T) {
		r := testRepo(t)
		require.NoError(t, os.MkdirAll(filepath.Join(r.Dir(), "docs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "docs", "guide.md"), []byte("# guide\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "README"), []byte("hi\n"), 0o644))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		entries, err := r.LsTree(treeID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "README", entries[0].Name)
		assert.Equal(t, protocol.ModeFile, entries[0].Mode)
		assert.Equal(t, "docs", entries[1].Name)
		assert.Equal(t, protocol.ModeDir, entries[1].Mode)

		sub, err := r.LsTree(entries[1].Hash)
		require.NoError(t, err)
		require.Len(t, sub, 1)
		assert.Equal(t, "guide.md", sub[0].Name)
	})

	t.Run("the .git directory is not recorded", func(t *testing.T) {
		r := testRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "only"), []byte("x"), 0o644))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		entries, err := r.LsTree(treeID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "only", entries[0].Name)
	})

	t.Run("empty directories produce no entry", func(t *testing.T) {
		r := testRepo(t)
		require.NoError(t, os.MkdirAll(filepath.Join(r.Dir(), "empty"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "f"), []byte("x"), 0o644))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		entries, err := r.LsTree(treeID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "f", entries[0].Name)
	})

	t.Run("executable files keep mode 100755", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no executable bit on windows")
		}

		r := testRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "run.sh"), []byte("#!/bin/sh\n"), 0o755))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		entries, err := r.LsTree(treeID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, protocol.ModeExec, entries[0].Mode)
	})

	t.Run("an empty worktree is the empty tree", func(t *testing.T) {
		r := testRepo(t)

		treeID, err := r.WriteTree()
		require.NoError(t, err)
		assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", treeID.String())
	})
}

func TestCommitTree(t *testing.T) {
	t.Run("writes a decodable commit", func(t *testing.T) {
		r := testRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "f"), []byte("x"), 0o644))

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		author := protocol.Signature{Name: "A U Thor", Email: "author@example.com"}
		commitID, err := r.CommitTree(treeID, nil, "initial", author)
		require.NoError(t, err)

		commit, err := r.GetCommit(commitID)
		require.NoError(t, err)
		assert.True(t, commit.Tree.Is(treeID))
		assert.Empty(t, commit.Parents)
		assert.Equal(t, "A U Thor", commit.Author.Name)
		assert.Equal(t, "initial\n", commit.Message)
	})

	t.Run("records parents in order", func(t *testing.T) {
		r := testRepo(t)

		treeID, err := r.WriteTree()
		require.NoError(t, err)

		p1 := hash.MustFromHex("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
		p2 := hash.MustFromHex("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

		author := protocol.Signature{Name: "A", Email: "a@b"}
		commitID, err := r.CommitTree(treeID, []hash.Hash{p1, p2}, "merge\n", author)
		require.NoError(t, err)

		commit, err := r.GetCommit(commitID)
		require.NoError(t, err)
		require.Len(t, commit.Parents, 2)
		assert.True(t, commit.Parents[0].Is(p1))
		assert.True(t, commit.Parents[1].Is(p2))
	})
}

func TestHashObject(t *testing.T) {
	t.Run("hash without storing", func(t *testing.T) {
		r := testRepo(t)

		id, err := r.HashObject(object.TypeBlob, []byte("hello world\n"), false)
		require.NoError(t, err)
		assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", id.String())
		assert.False(t, r.Objects().Has(id))
	})

	t.Run("hash and store", func(t *testing.T) {
		r := testRepo(t)

		id, err := r.HashObject(object.TypeBlob, []byte("hello world\n"), true)
		require.NoError(t, err)
		assert.True(t, r.Objects().Has(id))
	})
}
