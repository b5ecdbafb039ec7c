// Package format defines the on-disk schema of a RASS archive: a fixed
// identity header followed by a table of contents describing each packed
// file's logical path, payload offset, and size.
//
// Parsing and semantic validation are deliberately separate steps. Deserialize
// only mirrors the wire layout; Check then compares the parsed identity and
// version against this implementation's compiled-in constants. This lets
// callers distinguish "not a RASS archive at all" from "a RASS archive from
// the wrong producer or version".
package format

import (
	"errors"
	"fmt"
	"io"

	"github.com/LeviLovie/rass/internal/binio"
)

// Identity constants written into every archive header. A reader accepts an
// archive only when all of them match exactly.
const (
	Magic    = "RASS"
	Producer = "github.com/LeviLovie/rass"
)

// Format version. All three components must match between writer and reader;
// there is no forward or backward compatibility.
const (
	VersionMajor uint8 = 1
	VersionMinor uint8 = 0
	VersionPatch uint8 = 0
)

// Sentinel errors for format failures.
var (
	// ErrMalformed is returned when the wire bytes cannot be parsed.
	// Wrapped errors name the field that failed.
	ErrMalformed = errors.New("format: malformed archive")

	// ErrIdentity is returned when the magic tag or producer identifier
	// does not match this implementation's constants.
	ErrIdentity = errors.New("format: identity mismatch")

	// ErrVersion is returned when the header parsed cleanly but its
	// version triple differs from the running implementation.
	ErrVersion = errors.New("format: version mismatch")
)

// Header is the fixed identity record at the start of every archive.
type Header struct {
	Magic        string
	Producer     string
	VersionMajor uint8
	VersionMinor uint8
	VersionPatch uint8
}

// NewHeader returns a header carrying this implementation's identity and
// version constants.
func NewHeader() Header {
	return Header{
		Magic:        Magic,
		Producer:     Producer,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		VersionPatch: VersionPatch,
	}
}

// Entry describes one packed file: its logical slash-separated path, its
// byte offset into the payload region, and its content length.
type Entry struct {
	Path   string
	Offset uint64
	Size   uint64
}

// Format is one complete header + table of contents unit. Entries appear in
// the same order as their contents in the payload region.
type Format struct {
	Header  Header
	Entries []Entry
}

// New returns an empty Format with the current header.
func New() *Format {
	return &Format{Header: NewHeader()}
}

// AddEntry appends an entry to the table of contents.
func (f *Format) AddEntry(e Entry) {
	f.Entries = append(f.Entries, e)
}

// PayloadSize returns the total length of the payload region described by
// the table of contents.
func (f *Format) PayloadSize() uint64 {
	var total uint64
	for _, e := range f.Entries {
		total += e.Size
	}
	return total
}

// Serialize writes the header and table of contents in wire order: magic,
// a zero separator byte, producer, three version bytes, u32 entry count,
// then per entry offset, size, and length-prefixed path.
func (f *Format) Serialize(w io.Writer) error {
	if err := binio.WriteStringRaw(w, f.Header.Magic); err != nil {
		return err
	}
	if err := binio.WriteU8(w, 0); err != nil {
		return err
	}
	if err := binio.WriteStringRaw(w, f.Header.Producer); err != nil {
		return err
	}
	if err := binio.WriteU8(w, f.Header.VersionMajor); err != nil {
		return err
	}
	if err := binio.WriteU8(w, f.Header.VersionMinor); err != nil {
		return err
	}
	if err := binio.WriteU8(w, f.Header.VersionPatch); err != nil {
		return err
	}

	if err := binio.WriteU32(w, uint32(len(f.Entries))); err != nil {
		return err
	}
	for i := range f.Entries {
		e := &f.Entries[i]
		if err := binio.WriteU64(w, e.Offset); err != nil {
			return err
		}
		if err := binio.WriteU64(w, e.Size); err != nil {
			return err
		}
		if err := binio.WriteString(w, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize mirrors Serialize's field order exactly. The first field that
// fails aborts the parse, wrapping ErrMalformed with the field's name.
// Deserialize performs no semantic validation; callers must run Check before
// trusting the result.
func Deserialize(r io.Reader) (*Format, error) {
	var h Header
	var err error

	if h.Magic, err = binio.ReadStringRaw(r, uint32(len(Magic))); err != nil {
		return nil, malformed("magic", err)
	}
	if _, err = binio.ReadU8(r); err != nil {
		return nil, malformed("separator", err)
	}
	if h.Producer, err = binio.ReadStringRaw(r, uint32(len(Producer))); err != nil {
		return nil, malformed("producer", err)
	}
	if h.VersionMajor, err = binio.ReadU8(r); err != nil {
		return nil, malformed("major version", err)
	}
	if h.VersionMinor, err = binio.ReadU8(r); err != nil {
		return nil, malformed("minor version", err)
	}
	if h.VersionPatch, err = binio.ReadU8(r); err != nil {
		return nil, malformed("patch version", err)
	}

	count, err := binio.ReadU32(r)
	if err != nil {
		return nil, malformed("entry count", err)
	}

	f := &Format{Header: h}
	for i := uint32(0); i < count; i++ {
		var e Entry
		if e.Offset, err = binio.ReadU64(r); err != nil {
			return nil, malformed(fmt.Sprintf("entry %d offset", i), err)
		}
		if e.Size, err = binio.ReadU64(r); err != nil {
			return nil, malformed(fmt.Sprintf("entry %d size", i), err)
		}
		if e.Path, err = binio.ReadString(r); err != nil {
			return nil, malformed(fmt.Sprintf("entry %d path", i), err)
		}
		f.Entries = append(f.Entries, e)
	}
	return f, nil
}

// Check validates the parsed header against this implementation's identity
// and version constants.
func (f *Format) Check() error {
	if f.Header.Magic != Magic {
		return fmt.Errorf("magic %q, expected %q: %w", f.Header.Magic, Magic, ErrIdentity)
	}
	if f.Header.Producer != Producer {
		return fmt.Errorf("producer %q, expected %q: %w", f.Header.Producer, Producer, ErrIdentity)
	}
	if f.Header.VersionMajor != VersionMajor ||
		f.Header.VersionMinor != VersionMinor ||
		f.Header.VersionPatch != VersionPatch {
		return fmt.Errorf("archive version %d.%d.%d, supported %d.%d.%d: %w",
			f.Header.VersionMajor, f.Header.VersionMinor, f.Header.VersionPatch,
			VersionMajor, VersionMinor, VersionPatch, ErrVersion)
	}
	return nil
}

func malformed(field string, err error) error {
	return fmt.Errorf("%s: %w: %w", field, ErrMalformed, err)
}
