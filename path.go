package rass

import "strings"

// NormalizePath converts a user-provided path to the slash-separated
// relative form used for archive lookups.
//
// Leading and trailing slashes are stripped, consecutive slashes collapse,
// and the empty string becomes ".". Dot and dot-dot elements are preserved
// so that fs.ValidPath can reject them at the call site.
func NormalizePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}

	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, "/")
}
