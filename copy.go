package rass

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const defaultCopyWorkers = 4

// CopyOption configures extraction to disk.
type CopyOption func(*copyConfig)

type copyConfig struct {
	overwrite bool
	workers   int
	progress  ProgressFunc
}

// CopyWithOverwrite controls whether existing destination files are
// replaced. The default is to skip them.
func CopyWithOverwrite(enabled bool) CopyOption {
	return func(c *copyConfig) {
		c.overwrite = enabled
	}
}

// CopyWithWorkers sets the number of concurrent extraction workers.
func CopyWithWorkers(n int) CopyOption {
	return func(c *copyConfig) {
		c.workers = n
	}
}

// CopyWithProgress sets a callback receiving progress updates during
// extraction. The callback must be safe for concurrent calls.
func CopyWithProgress(fn ProgressFunc) CopyOption {
	return func(c *copyConfig) {
		c.progress = fn
	}
}

// CopyStats summarizes one extraction.
type CopyStats struct {
	// FileCount is the number of files written.
	FileCount int

	// TotalBytes is the number of payload bytes written.
	TotalBytes uint64

	// Skipped is the number of files left untouched because they already
	// existed at the destination.
	Skipped int
}

// CopyDir extracts all files under prefix to destDir, preserving their
// archive-relative paths. A prefix of "" or "." extracts the whole
// archive. Files are written atomically via temp file and rename, and
// parent directories are created as needed.
func (a *Archive) CopyDir(destDir, prefix string, opts ...CopyOption) (CopyStats, error) {
	cfg := copyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	prefix = NormalizePath(prefix)
	if prefix != "." && !fs.ValidPath(prefix) {
		return CopyStats{}, &fs.PathError{Op: "copy", Path: prefix, Err: fs.ErrInvalid}
	}

	var paths []string
	if prefix == "." {
		paths = a.List()
	} else {
		dirPrefix := prefix + "/"
		for i := sort.SearchStrings(a.paths, dirPrefix); i < len(a.paths); i++ {
			if !strings.HasPrefix(a.paths[i], dirPrefix) {
				break
			}
			paths = append(paths, a.paths[i])
		}
		// The prefix may also name a single file exactly.
		if _, ok := a.index[prefix]; ok {
			paths = append(paths, prefix)
		}
	}
	return a.copyPaths(destDir, paths, &cfg)
}

// CopyFile extracts a single file to destPath, allowing it to be renamed
// on the way out. The destination's parent directory must exist. Unlike
// CopyDir, an existing destination is an error (fs.ErrExist) rather than a
// silent skip, unless CopyWithOverwrite is set.
func (a *Archive) CopyFile(srcPath, destPath string, opts ...CopyOption) error {
	cfg := copyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	srcPath = NormalizePath(srcPath)
	e, err := a.lookup("copyfile", srcPath)
	if err != nil {
		return err
	}

	if !cfg.overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return &fs.PathError{Op: "copyfile", Path: destPath, Err: fs.ErrExist}
		}
	}
	return a.extractEntry(e, destPath)
}

// copyPaths extracts the given archive paths concurrently.
func (a *Archive) copyPaths(destDir string, paths []string, cfg *copyConfig) (CopyStats, error) {
	for _, p := range paths {
		if !fs.ValidPath(p) {
			return CopyStats{}, &fs.PathError{Op: "copy", Path: p, Err: fs.ErrInvalid}
		}
	}

	workers := cfg.workers
	if workers <= 0 {
		workers = defaultCopyWorkers
	}

	var total uint64
	for _, p := range paths {
		total += a.index[p].Size
	}

	var filesDone atomic.Int64
	var bytesDone, skipped atomic.Uint64

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, p := range paths {
		g.Go(func() error {
			e := a.index[p]
			dest := filepath.Join(destDir, filepath.FromSlash(p))

			if !cfg.overwrite {
				if _, err := os.Stat(dest); err == nil {
					skipped.Add(1)
					return nil
				}
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
				return fmt.Errorf("create directory for %s: %w", p, err)
			}
			if err := a.extractEntry(e, dest); err != nil {
				return err
			}

			done := filesDone.Add(1)
			bytes := bytesDone.Add(e.Size)
			if cfg.progress != nil {
				cfg.progress(ProgressEvent{
					Stage:      StageExtracting,
					Path:       p,
					BytesDone:  bytes,
					BytesTotal: total,
					FilesDone:  int(done),
					FilesTotal: len(paths),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CopyStats{}, err
	}

	return CopyStats{
		FileCount:  int(filesDone.Load()),
		TotalBytes: bytesDone.Load(),
		Skipped:    int(skipped.Load()),
	}, nil
}

// extractEntry streams one entry to destPath atomically via a temp file in
// the destination directory.
func (a *Archive) extractEntry(e Entry, destPath string) error {
	sec, err := a.section(e)
	if err != nil {
		return &fs.PathError{Op: "copy", Path: e.Path, Err: err}
	}

	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, ".rass-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", e.Path, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, sec)
	if err != nil {
		return fmt.Errorf("extract %s: %w", e.Path, err)
	}
	if uint64(n) != e.Size {
		return &fs.PathError{Op: "copy", Path: e.Path, Err: ErrTruncated}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("extract %s: %w", e.Path, err)
	}

	// Refuse to replace a directory with a file; rename would fail with a
	// less helpful error.
	if info, statErr := os.Stat(destPath); statErr == nil && info.IsDir() {
		return &fs.PathError{Op: "copy", Path: destPath, Err: errors.New("is a directory")}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("extract %s: %w", e.Path, err)
	}
	success = true
	return nil
}
