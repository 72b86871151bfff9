// Package archive packs plugin directories into zip archives and extracts
// them again. Archives are file-only: directory structure is implied by
// entry paths, matching what the manager has always produced.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	herrors "github.com/avierra/hangar/internal/errors"
)

// PackResult describes a completed Pack.
type PackResult struct {
	Archive           string
	Files             int
	UncompressedBytes int64
	CompressedBytes   int64
	// Ratio is the space saving in percent: (1 - compressed/uncompressed)*100.
	Ratio float64
}

// UnpackResult describes a completed Unpack.
type UnpackResult struct {
	// Extracted holds the file entry names in archive order (slash paths).
	Extracted []string
}

// Pack compresses srcDir into destZip. The source is sized first: a tree
// whose regular files total zero bytes yields an empty_source error and no
// archive file. A failure mid-write leaves the partial archive in place for
// the caller to report; nothing is rolled back.
func Pack(srcDir, destZip string) (*PackResult, error) {
	type entry struct {
		path string
		rel  string
		info fs.FileInfo
	}

	var files []entry
	var total int64
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		files = append(files, entry{path: path, rel: filepath.ToSlash(rel), info: info})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, herrors.IO(err, "scanning %s", srcDir)
	}

	if total == 0 {
		return nil, herrors.EmptySourcef("%s contains no data, nothing to archive", srcDir)
	}

	out, err := os.Create(destZip)
	if err != nil {
		return nil, herrors.IO(err, "creating archive %s", destZip)
	}

	zw := zip.NewWriter(out)
	for _, f := range files {
		fh := &zip.FileHeader{Name: f.rel, Method: zip.Deflate}
		fh.Modified = f.info.ModTime()
		fh.SetMode(f.info.Mode())

		w, err := zw.CreateHeader(fh)
		if err != nil {
			zw.Close()
			out.Close()
			return nil, herrors.IO(err, "adding %s to archive (partial archive left at %s)", f.rel, destZip)
		}

		src, err := os.Open(f.path)
		if err != nil {
			zw.Close()
			out.Close()
			return nil, herrors.IO(err, "reading %s (partial archive left at %s)", f.path, destZip)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			zw.Close()
			out.Close()
			return nil, herrors.IO(err, "compressing %s (partial archive left at %s)", f.rel, destZip)
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return nil, herrors.IO(err, "finalizing archive %s", destZip)
	}
	if err := out.Close(); err != nil {
		return nil, herrors.IO(err, "closing archive %s", destZip)
	}

	info, err := os.Stat(destZip)
	if err != nil {
		return nil, herrors.IO(err, "sizing archive %s", destZip)
	}

	res := &PackResult{
		Archive:           destZip,
		Files:             len(files),
		UncompressedBytes: total,
		CompressedBytes:   info.Size(),
	}
	if total > 0 {
		res.Ratio = (1 - float64(info.Size())/float64(total)) * 100
	}
	return res, nil
}

// Unpack extracts srcZip into destDir, creating it if needed. Entries that
// would escape destDir are rejected as corrupt. A failure mid-extraction
// leaves already-written files in place.
func Unpack(srcZip, destDir string) (*UnpackResult, error) {
	r, err := zip.OpenReader(srcZip)
	if err != nil {
		return nil, herrors.Corrupt(err, "opening archive %s", srcZip)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, herrors.IO(err, "creating %s", destDir)
	}

	cleanDest := filepath.Clean(destDir)
	res := &UnpackResult{}
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return nil, herrors.Corrupt(nil, "archive entry %q escapes %s", f.Name, destDir)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, herrors.IO(err, "creating %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, herrors.IO(err, "creating %s", filepath.Dir(target))
		}

		rc, err := f.Open()
		if err != nil {
			return nil, herrors.Corrupt(err, "opening entry %q in %s", f.Name, srcZip)
		}

		mode := f.Mode()
		if mode == 0 {
			mode = 0o644
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			rc.Close()
			return nil, herrors.IO(err, "creating %s", target)
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, herrors.IO(err, "writing %s", target)
		}

		res.Extracted = append(res.Extracted, f.Name)
	}

	return res, nil
}

// List returns the entry names of an archive in stored order.
func List(zipPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, herrors.Corrupt(err, "opening archive %s", zipPath)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
