package binio

import (
	"encoding/binary"
	"io"
)

// WriteU8 encodes a single unsigned byte.
func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// WriteU32 encodes a little-endian unsigned 32-bit integer.
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteU64 encodes a little-endian unsigned 64-bit integer.
func WriteU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteString encodes a u32 byte-length prefix followed by the string's
// UTF-8 bytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteStringRaw encodes the string's bytes with no length prefix.
func WriteStringRaw(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// WriteBytes encodes a u32 length prefix followed by the raw bytes.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
