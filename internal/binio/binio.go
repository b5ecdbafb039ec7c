// Package binio provides the primitive encode/decode operations for the
// archive wire format: fixed-width little-endian integers, length-prefixed
// byte arrays, and UTF-8 strings in both length-prefixed and fixed-length
// form.
//
// Every decode is the exact inverse of its encode. Fixed-width reads never
// return partial data: short input surfaces as ErrUnexpectedEOF.
package binio

import (
	"errors"
	"io"
)

// Sentinel errors for decode failures.
var (
	// ErrUnexpectedEOF is returned when the stream ends before a complete
	// value could be read.
	ErrUnexpectedEOF = errors.New("binio: unexpected end of input")

	// ErrInvalidEncoding is returned when string bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("binio: invalid UTF-8 encoding")
)

// ReadFull fills buf completely or fails with ErrUnexpectedEOF.
// It never reports a partial read as success.
func ReadFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Skip advances r by up to n bytes without materializing them and returns
// the number of bytes actually skipped. Hitting EOF early is not an error;
// callers that require the full distance must check the returned count.
func Skip(r io.Reader, n uint64) (uint64, error) {
	var skipped uint64
	buf := make([]byte, 4096)
	for skipped < n {
		chunk := n - skipped
		if chunk > uint64(len(buf)) {
			chunk = uint64(len(buf))
		}
		read, err := r.Read(buf[:chunk])
		skipped += uint64(read)
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		if read == 0 {
			return skipped, nil
		}
	}
	return skipped, nil
}
