package rass

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeviLovie/rass/internal/format"
)

func TestCopyDirAll(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.txt":       []byte("alpha"),
		"img/b.bin":   {0xFF, 0x00, 0x10},
		"img/sub/c":   []byte("deep"),
		"empty.file":  {},
		"doc/read.md": []byte("# hi\n"),
	}
	dest := buildArchive(t, files)
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	stats, err := a.CopyDir(out, "")
	require.NoError(t, err)
	assert.Equal(t, len(files), stats.FileCount)
	assert.Equal(t, uint64(5+3+4+0+5), stats.TotalBytes)
	assert.Zero(t, stats.Skipped)

	for path, want := range files {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(path)))
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestCopyDirPrefix(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{
		"img/b.bin":  {0xFF},
		"img/sub/c":  []byte("c"),
		"other.txt":  []byte("o"),
		"imgx/d.txt": []byte("d"),
	})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	stats, err := a.CopyDir(out, "img")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)

	assert.FileExists(t, filepath.Join(out, "img", "b.bin"))
	assert.FileExists(t, filepath.Join(out, "img", "sub", "c"))
	assert.NoFileExists(t, filepath.Join(out, "other.txt"))
	assert.NoFileExists(t, filepath.Join(out, "imgx", "d.txt"),
		"prefix match is per path element, not per byte")
}

func TestCopyDirPrefixNamesFile(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{
		"a.txt": []byte("alpha"),
		"b.txt": []byte("beta"),
	})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	stats, err := a.CopyDir(out, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.FileExists(t, filepath.Join(out, "a.txt"))
	assert.NoFileExists(t, filepath.Join(out, "b.txt"))
}

func TestCopyDirSkipsExisting(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{
		"a.txt": []byte("new content"),
		"b.txt": []byte("bbb"),
	})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	stats, err := a.CopyDir(out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, 1, stats.Skipped)

	got, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got, "existing file untouched by default")
}

func TestCopyDirOverwrite(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{"a.txt": []byte("new content")})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	stats, err := a.CopyDir(out, "", CopyWithOverwrite(true))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Zero(t, stats.Skipped)

	got, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new content"), got)
}

func TestCopyDirWorkers(t *testing.T) {
	t.Parallel()

	files := make(map[string][]byte, 40)
	for i := range 40 {
		files[filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26)), "f"+string(rune('0'+i/10))+string(rune('0'+i%10))))] = []byte{byte(i)}
	}
	dest := buildArchive(t, files)
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := t.TempDir()
	stats, err := a.CopyDir(out, "", CopyWithWorkers(8))
	require.NoError(t, err)
	assert.Equal(t, len(files), stats.FileCount)

	for path, want := range files {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(path)))
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestCopyDirProgress(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.txt": []byte("aaaa"),
		"b.txt": []byte("bb"),
	}
	dest := buildArchive(t, files)
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	var mu sync.Mutex
	var events []ProgressEvent
	_, err = a.CopyDir(t.TempDir(), "",
		CopyWithWorkers(1),
		CopyWithProgress(func(ev ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}))
	require.NoError(t, err)

	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, StageExtracting, ev.Stage)
		assert.Equal(t, 2, ev.FilesTotal)
		assert.Equal(t, uint64(6), ev.BytesTotal)
	}
	last := events[len(events)-1]
	assert.Equal(t, 2, last.FilesDone)
	assert.Equal(t, uint64(6), last.BytesDone)
}

func TestCopyDirRejectsUnsafePaths(t *testing.T) {
	t.Parallel()

	// Hand-assemble an archive whose table of contents carries a
	// traversal path. The loader indexes it, but extraction must refuse
	// to write outside the destination.
	f := format.New()
	f.AddEntry(format.Entry{Path: "../evil", Offset: 0, Size: 4})
	path := filepath.Join(t.TempDir(), "hostile.rass")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Serialize(out))
	_, err = out.Write([]byte("evil"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	a, err := Load(path)
	require.NoError(t, err)
	defer a.Close()

	destDir := t.TempDir()
	_, err = a.CopyDir(destDir, "")
	require.ErrorIs(t, err, fs.ErrInvalid)

	parent := filepath.Dir(destDir)
	assert.NoFileExists(t, filepath.Join(parent, "evil"))
}

func TestCopyDirInvalidPrefix(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{"a.txt": []byte("x")})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.CopyDir(t.TempDir(), "../elsewhere")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{"img/b.bin": {0xFF, 0x00}})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := filepath.Join(t.TempDir(), "renamed.bin")
	require.NoError(t, a.CopyFile("img/b.bin", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00}, got)
}

func TestCopyFileExisting(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{"a.txt": []byte("new")})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	out := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	err = a.CopyFile("a.txt", out)
	require.ErrorIs(t, err, fs.ErrExist)

	require.NoError(t, a.CopyFile("a.txt", out, CopyWithOverwrite(true)))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestCopyFileMissing(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{"a.txt": []byte("x")})
	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	err = a.CopyFile("gone.txt", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCopyTruncatedPayload(t *testing.T) {
	t.Parallel()

	dest := buildArchive(t, map[string][]byte{
		"a.txt": []byte("aaaa"),
		"b.txt": []byte("bbbb"),
	})
	info, err := os.Stat(dest)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(dest, info.Size()-2))

	a, err := Load(dest)
	require.NoError(t, err)
	defer a.Close()

	err = a.CopyFile("b.txt", filepath.Join(t.TempDir(), "b.txt"))
	assert.ErrorIs(t, err, ErrTruncated)
}
