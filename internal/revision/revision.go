// Package revision tracks the build version counter that advances with
// every mutating plugin operation.
package revision

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	herrors "github.com/avierra/hangar/internal/errors"
)

// InitialVersion seeds the counter on first use.
const InitialVersion = "0.002"

const fileName = "build-version"

const step = 0.001

// Counter is a file-backed decimal version counter. Safe for concurrent use.
type Counter struct {
	mu      sync.Mutex
	path    string
	current string
}

// New loads the counter from <dataDir>/build-version, seeding and persisting
// the initial version when the file does not exist.
func New(dataDir string) (*Counter, error) {
	c := &Counter{path: filepath.Join(dataDir, fileName)}

	data, err := os.ReadFile(c.path)
	switch {
	case err == nil:
		c.current = strings.TrimSpace(string(data))
		if c.current == "" {
			c.current = InitialVersion
		}
	case os.IsNotExist(err):
		c.current = InitialVersion
		if err := c.persist(); err != nil {
			return nil, err
		}
	default:
		return nil, herrors.IO(err, "reading version file %s", c.path)
	}
	return c, nil
}

// Current returns the version without changing it.
func (c *Counter) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Increment advances the version by 0.001 and persists the new value.
// A value that does not parse as a decimal is left untouched and returned
// as-is; nothing is written in that case.
func (c *Counter) Increment() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := strconv.ParseFloat(c.current, 64)
	if err != nil {
		return c.current
	}

	c.current = fmt.Sprintf("%.3f", v+step)
	// Persistence failure is not fatal for the operation that triggered the
	// increment; the in-memory value still advances.
	_ = c.persist()
	return c.current
}

func (c *Counter) persist() error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".version-*")
	if err != nil {
		return herrors.IO(err, "creating temp version file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(c.current + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return herrors.IO(err, "writing temp version file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return herrors.IO(err, "closing temp version file")
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return herrors.IO(err, "replacing version file %s", c.path)
	}
	return nil
}
