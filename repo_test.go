package microgit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("creates the layout", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "repo")

		r, err := Init(dir)
		require.NoError(t, err)

		for _, sub := range []string{".git", ".git/objects", ".git/refs"} {
			info, err := os.Stat(filepath.Join(dir, sub))
			require.NoError(t, err, sub)
			assert.True(t, info.IsDir(), sub)
		}

		head, err := os.ReadFile(filepath.Join(dir, ".git", "HEAD"))
		require.NoError(t, err)
		assert.Equal(t, "ref: refs/heads/main\n", string(head))

		assert.Equal(t, dir, r.Dir())
		assert.Equal(t, filepath.Join(dir, ".git"), r.GitDir())
	})

	t.Run("refuses to reinitialize", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "repo")
		_, err := Init(dir)
		require.NoError(t, err)

		_, err = Init(dir)
		require.ErrorIs(t, err, ErrTargetExists)
	})
}

func TestOpen(t *testing.T) {
	t.Run("opens an initialized repository", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "repo")
		_, err := Init(dir)
		require.NoError(t, err)

		r, err := Open(dir)
		require.NoError(t, err)
		assert.NotNil(t, r.Objects())
	})

	t.Run("rejects a bare directory", func(t *testing.T) {
		_, err := Open(t.TempDir())
		require.ErrorIs(t, err, ErrNotARepository)
	})
}
