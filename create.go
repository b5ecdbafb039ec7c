package rass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LeviLovie/rass/internal/format"
)

// DefaultMaxFiles is the default limit used when no CreateWithMaxFiles
// option is set.
const DefaultMaxFiles = 200_000

// CreateOption configures archive creation.
type CreateOption func(*createConfig)

type createConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	maxFiles int
}

// CreateWithLogger sets a logger for build diagnostics. Without it the
// builder is silent.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(c *createConfig) {
		c.logger = logger
	}
}

// CreateWithProgress sets a callback receiving progress updates during
// enumeration and packing.
func CreateWithProgress(fn ProgressFunc) CreateOption {
	return func(c *createConfig) {
		c.progress = fn
	}
}

// CreateWithMaxFiles sets the maximum number of files allowed in one
// archive. Zero means DefaultMaxFiles; negative disables the limit.
func CreateWithMaxFiles(n int) CreateOption {
	return func(c *createConfig) {
		c.maxFiles = n
	}
}

func (c *createConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *createConfig) report(ev ProgressEvent) {
	if c.progress != nil {
		c.progress(ev)
	}
}

// Create builds an archive from the contents of dir and writes it to dest.
//
// Create walks dir recursively in lexical order, including all regular
// files. Directories produce no entries and empty directories are not
// preserved; symbolic links and other non-regular files are skipped. Each
// entry's logical path is relative to dir with forward-slash separators.
//
// The destination's parent directory is created if absent. The archive is
// written to a temporary file and renamed into place, so a pre-existing
// archive at dest is replaced only when the build succeeds; a failed build
// leaves the previous archive (or nothing), never a partial one.
//
// Building twice from unchanged source bytes produces byte-identical
// archives.
func Create(ctx context.Context, dir, dest string, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", dir, ErrSourceNotFound)
		}
		return fmt.Errorf("stat source %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory: %w", dir, ErrSourceNotFound)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("open source %s: %w", dir, err)
	}
	defer root.Close()

	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w: %w", ErrDestinationUnwritable, err)
	}

	tmp, err := os.CreateTemp(destDir, ".rass-*")
	if err != nil {
		return fmt.Errorf("create destination: %w: %w", ErrDestinationUnwritable, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := writeArchive(ctx, &cfg, root.FS(), tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close destination: %w: %w", ErrDestinationUnwritable, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("replace destination: %w: %w", ErrDestinationUnwritable, err)
	}
	success = true

	cfg.log().Info("archive created", "source", dir, "dest", dest)
	return nil
}

// CreateFS builds an archive from an arbitrary file system and writes it
// to w. This is the core of Create with the OS specifics stripped away;
// it performs no atomic-replace handling, so callers own the fate of w on
// failure.
func CreateFS(ctx context.Context, fsys fs.FS, w io.Writer, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return writeArchive(ctx, &cfg, fsys, w)
}

// writeArchive enumerates fsys, emits the header and table of contents,
// then streams file contents verbatim in enumeration order.
func writeArchive(ctx context.Context, cfg *createConfig, fsys fs.FS, w io.Writer) error {
	maxFiles := cfg.maxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	cfg.report(ProgressEvent{Stage: StageEnumerating})

	f := format.New()
	seen := make(map[string]struct{})
	var offset uint64

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("enumerate %s: %w: %w", path, ErrSourceRead, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			cfg.log().Debug("skipped non-regular file", "path", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w: %w", path, ErrSourceRead, err)
		}
		if info.Size() < 0 {
			return fmt.Errorf("stat %s: negative size: %w", path, ErrSourceRead)
		}
		if _, dup := seen[path]; dup {
			return fmt.Errorf("%s: %w", path, ErrDuplicatePath)
		}
		seen[path] = struct{}{}

		if maxFiles > 0 && len(f.Entries) >= maxFiles {
			return fmt.Errorf("limit %d: %w", maxFiles, ErrTooManyFiles)
		}

		size := uint64(info.Size())
		f.AddEntry(format.Entry{Path: path, Offset: offset, Size: size})
		offset += size
		cfg.report(ProgressEvent{Stage: StageEnumerating, Path: path, FilesDone: len(f.Entries)})
		return nil
	})
	if err != nil {
		return err
	}

	total := f.PayloadSize()
	cfg.log().Info("packing archive", "file_count", len(f.Entries), "payload_size", total)

	tw := &trackingWriter{w: w}
	if err := f.Serialize(tw); err != nil {
		return fmt.Errorf("write table of contents: %w: %w", ErrDestinationUnwritable, err)
	}

	buf := make([]byte, 32*1024)
	var done uint64
	for i := range f.Entries {
		e := &f.Entries[i]
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := packEntry(fsys, tw, e, buf); err != nil {
			return err
		}
		done += e.Size
		cfg.report(ProgressEvent{
			Stage:      StagePacking,
			Path:       e.Path,
			BytesDone:  done,
			BytesTotal: total,
			FilesDone:  i + 1,
			FilesTotal: len(f.Entries),
		})
	}
	return nil
}

// packEntry streams one file's content to the payload region, verifying
// that exactly the enumerated byte count is written. A file that shrank or
// grew since enumeration would desynchronize every following offset, so
// any size change aborts the build.
func packEntry(fsys fs.FS, tw *trackingWriter, e *format.Entry, buf []byte) error {
	src, err := fsys.Open(e.Path)
	if err != nil {
		return fmt.Errorf("open source %s: %w: %w", e.Path, ErrSourceRead, err)
	}
	defer src.Close()

	size := int64(e.Size)
	n, err := io.CopyBuffer(tw, io.LimitReader(src, size), buf)
	if err != nil {
		if tw.err != nil {
			return fmt.Errorf("write payload: %w: %w", ErrDestinationUnwritable, tw.err)
		}
		return fmt.Errorf("read source %s: %w: %w", e.Path, ErrSourceRead, err)
	}
	if n != size {
		return fmt.Errorf("source %s shrank during build (%d of %d bytes): %w", e.Path, n, size, ErrSourceRead)
	}

	var probe [1]byte
	if extra, _ := src.Read(probe[:]); extra > 0 {
		return fmt.Errorf("source %s grew during build: %w", e.Path, ErrSourceRead)
	}
	return nil
}

// trackingWriter records the first write error so payload failures can be
// attributed to the destination rather than the source.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
