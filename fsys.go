package rass

import (
	"errors"
	"io"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// Open implements fs.FS.
//
// Open returns an fs.File for the named file, backed by its own section of
// the archive so concurrent opens never interfere. Directory names yield a
// synthetic directory handle; the archive stores no directory entries, so
// directories are derived from file paths.
func (a *Archive) Open(name string) (fs.File, error) {
	if a.closed.Load() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrClosed}
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.index[name]; ok {
		sec, err := a.section(e)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &archiveFile{
			SectionReader: sec,
			info:          fileInfo{name: pathBase(name), size: int64(e.Size)},
		}, nil
	}

	if a.isDir(name) {
		return &archiveDir{a: a, name: name}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS without reading file content.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if a.closed.Load() {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: ErrClosed}
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.index[name]; ok {
		return fileInfo{name: pathBase(name), size: int64(e.Size)}, nil
	}
	if a.isDir(name) {
		return dirInfo{name: pathBase(name)}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name and
// subdirectories are synthesized from nested file paths.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if a.closed.Load() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: ErrClosed}
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	if _, isFile := a.index[name]; isFile {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}
	if name != "." && !a.isDir(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return a.children(name), nil
}

// isDir reports whether name has at least one entry beneath it.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	prefix := name + "/"
	i := sort.SearchStrings(a.paths, prefix)
	return i < len(a.paths) && strings.HasPrefix(a.paths[i], prefix)
}

// children returns the immediate children of a directory, files and
// synthetic subdirectories alike, sorted by name.
func (a *Archive) children(dir string) []fs.DirEntry {
	prefix := ""
	if dir != "." {
		prefix = dir + "/"
	}

	entries := make([]fs.DirEntry, 0)
	seen := make(map[string]struct{})
	for i := sort.SearchStrings(a.paths, prefix); i < len(a.paths); i++ {
		path := a.paths[i]
		if !strings.HasPrefix(path, prefix) {
			break
		}
		rel := path[len(prefix):]

		if slash := strings.Index(rel, "/"); slash >= 0 {
			child := rel[:slash]
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			entries = append(entries, fs.FileInfoToDirEntry(dirInfo{name: child}))
			continue
		}

		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		e := a.index[path]
		entries = append(entries, fs.FileInfoToDirEntry(fileInfo{name: rel, size: int64(e.Size)}))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

// pathBase returns the last element of a slash-separated path.
func pathBase(path string) string {
	if path == "" || path == "." {
		return "."
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// archiveFile is an opened archive file. The embedded section reader keeps
// the read position private to this handle.
type archiveFile struct {
	*io.SectionReader
	info fileInfo
}

func (f *archiveFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *archiveFile) Close() error               { return nil }

// archiveDir is an opened synthetic directory.
type archiveDir struct {
	a       *Archive
	name    string
	entries []fs.DirEntry
	listed  bool
	pos     int
}

func (d *archiveDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *archiveDir) Stat() (fs.FileInfo, error) {
	return dirInfo{name: pathBase(d.name)}, nil
}

func (d *archiveDir) Close() error { return nil }

func (d *archiveDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.listed {
		d.entries = d.a.children(d.name)
		d.listed = true
	}

	if n <= 0 {
		out := d.entries[d.pos:]
		d.pos = len(d.entries)
		return out, nil
	}

	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.pos + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}

// fileInfo is the fs.FileInfo for an archived file. Archives store neither
// modes nor times, so stable placeholders are reported.
type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

// dirInfo is the fs.FileInfo for a synthetic directory.
type dirInfo struct {
	name string
}

func (di dirInfo) Name() string       { return di.name }
func (di dirInfo) Size() int64        { return 0 }
func (di dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di dirInfo) ModTime() time.Time { return time.Time{} }
func (di dirInfo) IsDir() bool        { return true }
func (di dirInfo) Sys() any           { return nil }
