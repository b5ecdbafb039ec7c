package binio

import (
	"encoding/binary"
	"io"
	"unicode/utf8"
)

// ReadU8 decodes a single unsigned byte.
func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU32 decodes a little-endian unsigned 32-bit integer.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadU64 decodes a little-endian unsigned 64-bit integer.
func ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadString decodes a u32 length prefix followed by that many bytes of
// UTF-8 text.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	return ReadStringRaw(r, n)
}

// ReadStringRaw decodes exactly n bytes of UTF-8 text with no length
// prefix. The expected length must be known to the caller out-of-band,
// which is the case for fixed format constants like the magic tag.
func ReadStringRaw(r io.Reader, n uint32) (string, error) {
	buf := make([]byte, n)
	if err := ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidEncoding
	}
	return string(buf), nil
}

// ReadBytes decodes a u32 length prefix followed by that many raw bytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
