package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	herrors "github.com/avierra/hangar/internal/errors"
)

// setupSourceRepo creates a local git repository holding a small plugin tree.
func setupSourceRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize git repo")

	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	err = w.AddGlob(".")
	require.NoError(t, err, "failed to add files to git")

	_, err = w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to create initial commit")

	return dir
}

func TestFetch_LocalRepo_ChecksOutTreeWithoutGitDir(t *testing.T) {
	src := setupSourceRepo(t, map[string]string{
		"plugin.xpl":     "payload",
		"data/sound.wav": "wav bytes",
	})

	f := NewFetcher(t.TempDir())
	dest, err := f.Fetch(context.Background(), src, "")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "plugin.xpl"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))

	_, statErr := os.Stat(filepath.Join(dest, ".git"))
	require.True(t, os.IsNotExist(statErr), ".git should be stripped")
}

func TestFetch_MissingRepo_ReturnsGitError(t *testing.T) {
	f := NewFetcher(t.TempDir())

	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "no-such-repo"), "")

	require.Error(t, err)
	require.True(t, herrors.IsCategory(err, herrors.CategoryGit))
}

func TestNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://github.com/team/TerrainRadar.git": "TerrainRadar",
		"https://github.com/team/TerrainRadar":     "TerrainRadar",
		"git@github.com:team/TerrainRadar.git":     "TerrainRadar",
		"/srv/repos/TerrainRadar.git/":             "TerrainRadar",
		"TerrainRadar":                             "TerrainRadar",
		"":                                         "plugin",
	}
	for url, want := range cases {
		require.Equal(t, want, NameFromURL(url), "url %q", url)
	}
}
