// Package rass packs a directory tree of asset files into a single binary
// archive at build time and serves byte-exact random-access reads from it at
// run time.
//
// An archive is a self-describing container: a fixed identity header (magic
// tag, producer identifier, exact-match version triple), a table of contents
// mapping each logical path to an (offset, size) pair, and a payload region
// holding the file contents concatenated back to back. The loader parses the
// header and table of contents once, then reads individual files by seeking
// directly to their payload range; the archive is never loaded into memory
// as a whole.
//
// # Building
//
// Create walks a source directory and writes the archive atomically:
//
//	err := rass.Create(ctx, "./assets", "assets.rass")
//
// Builds are deterministic: unchanged source bytes produce a byte-identical
// archive. A failed build leaves the previous archive (or nothing) at the
// destination, never a partial one.
//
// # Reading
//
// Load parses the archive and returns a handle safe for concurrent reads:
//
//	a, err := rass.Load("assets.rass")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	raw, err := a.ReadFile("img/player.png")
//	text, err := a.ReadText("config/settings.toml")
//
// Archive implements fs.FS, fs.ReadFileFS, fs.StatFS, and fs.ReadDirFS, so
// a loaded archive composes with any io/fs consumer.
package rass
