package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Format {
	f := New()
	f.AddEntry(Entry{Path: "a.txt", Offset: 0, Size: 5})
	f.AddEntry(Entry{Path: "img/b.bin", Offset: 5, Size: 3})
	return f
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sample().Serialize(&buf))

	got, err := Deserialize(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Check())

	assert.Equal(t, NewHeader(), got.Header)
	assert.Equal(t, sample().Entries, got.Entries)
	assert.Equal(t, uint64(8), got.PayloadSize())
	assert.Zero(t, buf.Len(), "deserialize must consume exactly the serialized bytes")
}

func TestEmptyTOC(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, New().Serialize(&buf))

	got, err := Deserialize(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Check())
	assert.Empty(t, got.Entries)
	assert.Zero(t, got.PayloadSize())
}

func TestWireLayout(t *testing.T) {
	t.Parallel()

	f := New()
	f.AddEntry(Entry{Path: "a", Offset: 1, Size: 2})

	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	wire := buf.Bytes()

	assert.Equal(t, []byte(Magic), wire[:4])
	assert.Equal(t, byte(0), wire[4])
	assert.Equal(t, []byte(Producer), wire[5:5+len(Producer)])

	p := 5 + len(Producer)
	assert.Equal(t, []byte{VersionMajor, VersionMinor, VersionPatch}, wire[p:p+3])
	p += 3
	assert.Equal(t, []byte{1, 0, 0, 0}, wire[p:p+4], "entry count")
	p += 4
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, wire[p:p+8], "offset")
	p += 8
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, wire[p:p+8], "size")
	p += 8
	assert.Equal(t, []byte{1, 0, 0, 0, 'a'}, wire[p:], "length-prefixed path")
}

func TestDeserializeNamesFailedField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sample().Serialize(&buf))
	wire := buf.Bytes()

	headerLen := len(Magic) + 1 + len(Producer) + 3

	tests := []struct {
		name  string
		data  []byte
		field string
	}{
		{"empty input", nil, "magic"},
		{"cut inside magic", wire[:2], "magic"},
		{"cut before separator", wire[:4], "separator"},
		{"cut inside producer", wire[:8], "producer"},
		{"cut before major", wire[:headerLen-3], "major version"},
		{"cut before minor", wire[:headerLen-2], "minor version"},
		{"cut before patch", wire[:headerLen-1], "patch version"},
		{"cut before count", wire[:headerLen], "entry count"},
		{"cut inside entry offset", wire[:headerLen+4+3], "entry 0 offset"},
		{"cut inside entry size", wire[:headerLen+4+8+2], "entry 0 size"},
		{"cut inside entry path", wire[:headerLen+4+8+8+4+2], "entry 0 path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Deserialize(bytes.NewReader(tt.data))
			require.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestDeserializeInvalidPathEncoding(t *testing.T) {
	t.Parallel()

	f := New()
	f.AddEntry(Entry{Path: "ok", Offset: 0, Size: 0})

	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	wire := buf.Bytes()

	// Corrupt the path bytes at the tail into invalid UTF-8.
	wire[len(wire)-1] = 0xFF
	wire[len(wire)-2] = 0xFE

	_, err := Deserialize(bytes.NewReader(wire))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "entry 0 path")
}

func TestCheckIdentity(t *testing.T) {
	t.Parallel()

	t.Run("wrong magic", func(t *testing.T) {
		t.Parallel()

		f := sample()
		f.Header.Magic = "SSAR"
		err := f.Check()
		require.ErrorIs(t, err, ErrIdentity)
		assert.NotErrorIs(t, err, ErrVersion)
	})

	t.Run("wrong producer", func(t *testing.T) {
		t.Parallel()

		f := sample()
		f.Header.Producer = strings.Repeat("x", len(Producer))
		assert.ErrorIs(t, f.Check(), ErrIdentity)
	})
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	bump := []func(*Header){
		func(h *Header) { h.VersionMajor++ },
		func(h *Header) { h.VersionMinor++ },
		func(h *Header) { h.VersionPatch++ },
	}
	for _, mutate := range bump {
		f := sample()
		mutate(&f.Header)

		// The archive parses but is rejected by the semantic check: a
		// version mismatch, not a malformed archive.
		var buf bytes.Buffer
		require.NoError(t, f.Serialize(&buf))
		got, err := Deserialize(&buf)
		require.NoError(t, err)

		err = got.Check()
		require.ErrorIs(t, err, ErrVersion)
		assert.NotErrorIs(t, err, ErrMalformed)
		assert.NotErrorIs(t, err, ErrIdentity)
	}
}
