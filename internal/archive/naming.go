package archive

import (
	"fmt"
	"os"
	"path/filepath"

	herrors "github.com/avierra/hangar/internal/errors"
)

// maxNameAttempts bounds the collision scan. The directory would need ten
// thousand same-named archives before this triggers.
const maxNameAttempts = 10000

// UniqueName returns the first free archive name for base inside dir:
// "<base>.zip", then "<base>_1.zip", "<base>_2.zip" and so on. The check is
// a plain stat; a concurrent writer can still race the returned name.
func UniqueName(dir, base string) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := base + ".zip"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.zip", base, i)
		}

		_, err := os.Stat(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", herrors.IO(err, "checking %s", filepath.Join(dir, name))
		}
	}
	return "", herrors.Conflictf("no free archive name for %q in %s after %d attempts", base, dir, maxNameAttempts)
}
