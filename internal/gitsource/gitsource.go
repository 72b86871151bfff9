// Package gitsource fetches plugin trees from git repositories into a
// staging directory so they can be installed like any local directory.
package gitsource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/logfields"
)

// Fetcher clones repositories into a staging directory.
type Fetcher struct {
	stagingDir string
}

// NewFetcher creates a fetcher that clones under stagingDir.
func NewFetcher(stagingDir string) *Fetcher {
	return &Fetcher{stagingDir: stagingDir}
}

// Fetch shallow-clones url (optionally a specific branch) and returns the
// path of the checked-out tree. The .git directory is stripped so the result
// installs as a plain plugin tree.
func (f *Fetcher) Fetch(ctx context.Context, url, branch string) (string, error) {
	dest := filepath.Join(f.stagingDir, NameFromURL(url))

	slog.Debug("Cloning plugin source", logfields.URL(url), slog.String("branch", branch), logfields.Path(dest))
	if err := os.RemoveAll(dest); err != nil {
		return "", herrors.IO(err, "clearing %s", dest)
	}

	cloneOptions := &git.CloneOptions{URL: url, Depth: 1}
	if branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		cloneOptions.SingleBranch = true
	}

	repository, err := git.PlainCloneContext(ctx, dest, false, cloneOptions)
	if err != nil {
		return "", classifyCloneError(url, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Plugin source cloned", logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]), logfields.Path(dest))
	} else {
		slog.Info("Plugin source cloned", logfields.URL(url), logfields.Path(dest))
	}

	if err := os.RemoveAll(filepath.Join(dest, ".git")); err != nil {
		return "", herrors.IO(err, "stripping .git from %s", dest)
	}

	return dest, nil
}

// classifyCloneError maps common go-git failures onto clearer messages.
func classifyCloneError(url string, err error) error {
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "invalid username or password"):
		return herrors.Git(err, "authentication failed for %s", url)
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return herrors.Git(err, "repository not found: %s", url)
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout"):
		return herrors.Git(err, "network timeout cloning %s", url)
	default:
		return herrors.Git(err, "cloning %s", url)
	}
}

// NameFromURL derives the plugin name from a repository URL:
// "https://host/team/TerrainRadar.git" becomes "TerrainRadar". Works for
// scp-style addresses and local paths too.
func NameFromURL(url string) string {
	name := strings.TrimRight(url, "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "plugin"
	}
	return name
}
