package rass

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"github.com/LeviLovie/rass/internal/format"
)

// Entry describes one archived file: its logical path, its byte offset
// into the payload region, and its content length.
type Entry struct {
	Path   string
	Offset uint64
	Size   uint64
}

// Archive provides random access to the files packed in one archive.
//
// The index built by Load is immutable, and every read derives its file
// position independently, so an Archive may be shared across goroutines
// without locking.
type Archive struct {
	path         string
	f            *os.File
	size         int64
	payloadStart int64
	index        map[string]Entry
	paths        []string // sorted
	header       format.Header
	logger       *slog.Logger
	closed       atomic.Bool
}

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// LoadOption configures archive loading.
type LoadOption func(*loadConfig)

type loadConfig struct {
	logger *slog.Logger
}

// LoadWithLogger sets a logger for load diagnostics.
func LoadWithLogger(logger *slog.Logger) LoadOption {
	return func(c *loadConfig) {
		c.logger = logger
	}
}

// Load opens the archive at path, parses and validates its header and
// table of contents, and returns a handle serving random-access reads.
//
// Load fails with ErrArchiveNotFound if the file does not exist,
// ErrMalformed if the bytes cannot be parsed, and ErrIdentity or
// ErrVersion if the archive was produced by a different implementation or
// format version. On failure no handle is returned and no state is
// retained.
func Load(path string, opts ...LoadOption) (*Archive, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrArchiveNotFound)
		}
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	// The counting reader measures exactly the bytes the parser consumed,
	// which is where the payload region begins.
	cr := &countingReader{r: bufio.NewReaderSize(f, 64*1024)}
	fm, err := format.Deserialize(cr)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}
	if err := fm.Check(); err != nil {
		f.Close()
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}

	a := &Archive{
		path:         path,
		f:            f,
		size:         info.Size(),
		payloadStart: cr.n,
		index:        make(map[string]Entry, len(fm.Entries)),
		paths:        make([]string, 0, len(fm.Entries)),
		header:       fm.Header,
		logger:       cfg.logger,
	}
	for _, e := range fm.Entries {
		a.index[e.Path] = Entry{Path: e.Path, Offset: e.Offset, Size: e.Size}
		a.paths = append(a.paths, e.Path)
	}
	sort.Strings(a.paths)

	a.log().Debug("archive loaded",
		"path", path,
		"file_count", len(a.paths),
		"payload_start", a.payloadStart,
		"payload_size", a.size-a.payloadStart)
	return a, nil
}

func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Close releases the underlying file handle. Reads issued after Close fail
// with ErrClosed.
func (a *Archive) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	return a.f.Close()
}

// Path returns the file system path the archive was loaded from.
func (a *Archive) Path() string {
	return a.path
}

// Version returns the format version triple recorded in the archive header.
func (a *Archive) Version() (major, minor, patch uint8) {
	return a.header.VersionMajor, a.header.VersionMinor, a.header.VersionPatch
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.paths)
}

// List returns the logical paths of all archived files in sorted order.
func (a *Archive) List() []string {
	out := make([]string, len(a.paths))
	copy(out, a.paths)
	return out
}

// Entry returns the index record for the given path.
func (a *Archive) Entry(path string) (Entry, bool) {
	e, ok := a.index[path]
	return e, ok
}

// ReadFile returns the exact stored bytes of the named file. No decoding
// is applied, making this the only safe accessor for binary payloads.
//
// Unknown paths fail with an fs.PathError wrapping fs.ErrNotExist. An
// entry whose payload range extends past the end of the archive file fails
// with ErrTruncated rather than returning short data.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, err := a.lookup("readfile", name)
	if err != nil {
		return nil, err
	}

	sec, err := a.section(e)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	buf := make([]byte, e.Size)
	if _, err := io.ReadFull(sec, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncated
		}
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return buf, nil
}

// ReadText returns the named file's content decoded as UTF-8 text. It
// fails with ErrInvalidEncoding if the stored bytes are not valid UTF-8.
func (a *Archive) ReadText(name string) (string, error) {
	raw, err := a.ReadFile(name)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", &fs.PathError{Op: "readtext", Path: name, Err: ErrInvalidEncoding}
	}
	return string(raw), nil
}

// lookup resolves name against the index, failing fast on closed archives
// and invalid or unknown paths.
func (a *Archive) lookup(op, name string) (Entry, error) {
	if a.closed.Load() {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: ErrClosed}
	}
	if !fs.ValidPath(name) {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	e, ok := a.index[name]
	if !ok {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return e, nil
}

// section returns an independently-positioned reader over the entry's
// payload range, verifying the range lies within the archive file.
func (a *Archive) section(e Entry) (*io.SectionReader, error) {
	if e.Size > math.MaxInt64 || e.Offset > math.MaxInt64-e.Size {
		return nil, ErrTruncated
	}
	end := int64(e.Offset) + int64(e.Size)
	if end > math.MaxInt64-a.payloadStart || a.payloadStart+end > a.size {
		return nil, ErrTruncated
	}
	return io.NewSectionReader(a.f, a.payloadStart+int64(e.Offset), int64(e.Size)), nil
}

// countingReader counts the bytes delivered to its consumer.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
