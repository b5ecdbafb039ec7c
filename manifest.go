package rass

import (
	"fmt"

	"github.com/opencontainers/go-digest"
)

// ManifestEntry describes one archived file together with the digest of
// its stored content.
type ManifestEntry struct {
	// Path is the file's logical path.
	Path string

	// Offset is the file's byte offset into the payload region.
	Offset uint64

	// Size is the stored content length in bytes.
	Size uint64

	// Digest is the canonical digest of the stored content.
	Digest digest.Digest
}

// Manifest returns one entry per archived file, in sorted path order, with
// the content digest computed by streaming each payload range. It is
// intended for auditing and change detection; computing it reads the whole
// payload region once.
func (a *Archive) Manifest() ([]ManifestEntry, error) {
	out := make([]ManifestEntry, 0, len(a.paths))
	for _, p := range a.paths {
		e := a.index[p]
		sec, err := a.section(e)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", p, err)
		}
		d, err := digest.FromReader(sec)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", p, err)
		}
		out = append(out, ManifestEntry{
			Path:   p,
			Offset: e.Offset,
			Size:   e.Size,
			Digest: d,
		})
	}
	return out, nil
}
