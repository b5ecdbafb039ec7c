package rass

import (
	"errors"

	"github.com/LeviLovie/rass/internal/binio"
	"github.com/LeviLovie/rass/internal/format"
)

// Errors re-exported from internal packages.
var (
	// ErrMalformed is returned when archive bytes cannot be parsed.
	// The error message names the field that failed.
	ErrMalformed = format.ErrMalformed

	// ErrIdentity is returned when an archive carries the wrong magic tag
	// or producer identifier.
	ErrIdentity = format.ErrIdentity

	// ErrVersion is returned when an archive parsed cleanly but was
	// written by a different format version.
	ErrVersion = format.ErrVersion

	// ErrInvalidEncoding is returned when bytes requested as text are not
	// valid UTF-8.
	ErrInvalidEncoding = binio.ErrInvalidEncoding
)

// Errors specific to the rass package.
var (
	// ErrSourceNotFound is returned when the build source directory does
	// not exist.
	ErrSourceNotFound = errors.New("rass: source directory not found")

	// ErrSourceRead is returned when a source file cannot be read during
	// a build. Any unreadable file aborts the whole build.
	ErrSourceRead = errors.New("rass: source read failed")

	// ErrDestinationUnwritable is returned when the archive destination
	// cannot be created or replaced.
	ErrDestinationUnwritable = errors.New("rass: destination unwritable")

	// ErrDuplicatePath is returned when two source files resolve to the
	// same logical path.
	ErrDuplicatePath = errors.New("rass: duplicate path")

	// ErrTooManyFiles is returned when the source tree exceeds the
	// configured file count limit.
	ErrTooManyFiles = errors.New("rass: too many files")

	// ErrArchiveNotFound is returned by Load when the archive file does
	// not exist.
	ErrArchiveNotFound = errors.New("rass: archive not found")

	// ErrTruncated is returned when an entry's declared payload range
	// extends past the end of the archive file.
	ErrTruncated = errors.New("rass: truncated archive")

	// ErrClosed is returned when reading from a closed archive.
	ErrClosed = errors.New("rass: archive closed")
)
