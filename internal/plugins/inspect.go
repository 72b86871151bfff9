package plugins

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/avierra/hangar/internal/archive"
	herrors "github.com/avierra/hangar/internal/errors"
)

// BackupKind tells archive entries and folder entries apart.
type BackupKind string

const (
	KindArchive BackupKind = "archive"
	KindFolder  BackupKind = "folder"
)

// BackupEntry is one entry under the backup root.
type BackupEntry struct {
	// Name is the entry as stored, e.g. "TerrainRadar_2.zip".
	Name string
	Kind BackupKind
	// Plugin is the plugin the entry belongs to (archive stem or folder name).
	Plugin string
}

// TreeEntry is one node of a plugin's directory tree in depth-first order.
type TreeEntry struct {
	// Depth is 0 for the plugin directory itself.
	Depth int
	Dir   bool
	Name  string
}

// List returns the names of all installed plugins, case-insensitively
// sorted. A missing plugin directory is an empty installation, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.pluginRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, herrors.IO(err, "reading plugin folder %s", s.pluginRoot)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sortFold(names)

	s.recorder.SetInstalledPlugins(len(names))
	return names, nil
}

// Backups returns the entries under the backup root, case-insensitively
// sorted by name. Regular files without a .zip suffix are ignored.
func (s *Store) Backups() ([]BackupEntry, error) {
	entries, err := os.ReadDir(s.backupRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, herrors.IO(err, "reading backup folder %s", s.backupRoot)
	}

	backups := make([]BackupEntry, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.IsDir():
			backups = append(backups, BackupEntry{Name: e.Name(), Kind: KindFolder, Plugin: e.Name()})
		case isZipName(e.Name()):
			backups = append(backups, BackupEntry{Name: e.Name(), Kind: KindArchive, Plugin: stem(e.Name())})
		}
	}

	c := collate.New(language.Und, collate.IgnoreCase)
	sort.Slice(backups, func(i, j int) bool {
		return c.CompareString(backups[i].Name, backups[j].Name) < 0
	})
	return backups, nil
}

// Tree walks an installed plugin's directory and returns every node in
// depth-first lexical order, the plugin directory itself first at depth 0.
func (s *Store) Tree(name string) ([]TreeEntry, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	root := filepath.Join(s.pluginRoot, name)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.NotFoundf("plugin %q is not installed", name)
		}
		return nil, herrors.IO(err, "checking %s", root)
	}

	var tree []TreeEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		depth := 0
		if path != root {
			rel, rerr := filepath.Rel(root, path)
			if rerr != nil {
				return rerr
			}
			depth = strings.Count(rel, string(os.PathSeparator)) + 1
		}
		tree = append(tree, TreeEntry{Depth: depth, Dir: d.IsDir(), Name: d.Name()})
		return nil
	})
	if err != nil {
		return nil, herrors.IO(err, "walking %s", root)
	}
	return tree, nil
}

// ArchiveEntries lists the member paths of a backup archive in stored order.
func (s *Store) ArchiveEntries(entry string) ([]string, error) {
	if err := validateName(entry); err != nil {
		return nil, err
	}
	return archive.List(filepath.Join(s.backupRoot, entry))
}

// sortFold sorts names case-insensitively, the order users expect from a
// plugin listing ("autoGate" next to "AutoBrake", not after "Zink").
func sortFold(names []string) {
	c := collate.New(language.Und, collate.IgnoreCase)
	c.SortStrings(names)
}
