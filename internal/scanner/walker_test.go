package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftscan/driftscan/internal/scan"
)

// buildFixture creates the reference tree:
//
//	root/
//	  a.txt   (10 bytes)
//	  sub/
//	    b.txt (20 bytes)
func buildFixture(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a.txt"), make([]byte, 10), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "sub", "b.txt"), make([]byte, 20), 0644))
	return tmp
}

func runWalk(t *testing.T, root string, cfg Config) ([]scan.FileEntry, *Counters, error) {
	t.Helper()
	counters := NewCounters(0)
	w := NewWalker(root, cfg, counters, nil)
	entries, err := w.Run(context.Background())
	return entries, counters, err
}

func TestWalkReferenceTree(t *testing.T) {
	root := buildFixture(t)
	entries, counters, err := runWalk(t, root, Config{})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, 1, entries[0].Depth)
	assert.True(t, entries[0].IsFile)
	assert.Equal(t, int64(10), entries[0].Size)
	assert.Equal(t, "txt", entries[0].Extension)

	assert.Equal(t, "sub", entries[1].Name)
	assert.Equal(t, 1, entries[1].Depth)
	assert.True(t, entries[1].IsDirectory)
	assert.Equal(t, int64(0), entries[1].Size)
	require.NotNil(t, entries[1].ChildrenCount)
	assert.Equal(t, int64(1), *entries[1].ChildrenCount)

	assert.Equal(t, "b.txt", entries[2].Name)
	assert.Equal(t, 2, entries[2].Depth)
	assert.Equal(t, int64(20), entries[2].Size)

	assert.Equal(t, int64(2), counters.Files())
	assert.Equal(t, int64(1), counters.Dirs())
	assert.Equal(t, int64(30), counters.Bytes())
	assert.Equal(t, int64(0), counters.Skipped())
}

func TestWalkEntryFieldsPopulated(t *testing.T) {
	root := buildFixture(t)
	entries, _, err := runWalk(t, root, Config{})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, seen[e.ID], "entry IDs must be unique")
		seen[e.ID] = true
		assert.True(t, filepath.IsAbs(e.Path))
		assert.NotEmpty(t, e.Modified)
		assert.NotEmpty(t, e.SizeFormatted)
		// Opaque IDs: the identifier must not be derived from the path.
		assert.NotContains(t, e.ID, e.Name)
	}
}

// Byte ordering is case-sensitive: uppercase sorts before lowercase, and the
// sequence is stable across runs and concurrency levels.
func TestWalkDeterministicOrdering(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"zeta", "Alpha", "beta", "B", "a"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmp, name), []byte("x"), 0644))
	}
	for _, d := range []string{"dir2", "Dir1", "dir10"} {
		require.NoError(t, os.Mkdir(filepath.Join(tmp, d), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tmp, d, "inner.txt"), []byte("y"), 0644))
	}

	var sequences [][]string
	for _, conc := range []int{1, 8} {
		for run := 0; run < 2; run++ {
			entries, _, err := runWalk(t, tmp, Config{Concurrency: conc})
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Path)
			}
			sequences = append(sequences, names)
		}
	}

	want := []string{
		filepath.Join(tmp, "Alpha"),
		filepath.Join(tmp, "B"),
		filepath.Join(tmp, "Dir1"),
		filepath.Join(tmp, "Dir1", "inner.txt"),
		filepath.Join(tmp, "a"),
		filepath.Join(tmp, "beta"),
		filepath.Join(tmp, "dir10"),
		filepath.Join(tmp, "dir10", "inner.txt"),
		filepath.Join(tmp, "dir2"),
		filepath.Join(tmp, "dir2", "inner.txt"),
		filepath.Join(tmp, "zeta"),
	}
	for _, seq := range sequences {
		assert.Equal(t, want, seq)
	}
}

func TestWalkHiddenExcluded(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".hidden"), []byte("h"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "visible.txt"), []byte("v"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, ".hiddendir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".hiddendir", "inside.txt"), []byte("i"), 0644))

	entries, counters, err := runWalk(t, tmp, Config{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible.txt", entries[0].Name)
	assert.Equal(t, int64(1), counters.Files())
	assert.Equal(t, int64(0), counters.Dirs())
}

func TestWalkHiddenIncluded(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".hidden"), []byte("h"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "visible.txt"), []byte("v"), 0644))

	entries, _, err := runWalk(t, tmp, Config{IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".hidden", entries[0].Name)
	assert.Equal(t, "visible.txt", entries[1].Name)
}

func TestWalkMaxDepth(t *testing.T) {
	root := buildFixture(t)
	entries, counters, err := runWalk(t, root, Config{MaxDepth: 1})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "sub", entries[1].Name)
	// The depth-limited directory is recorded but not descended, and its
	// child count is unknown.
	assert.Nil(t, entries[1].ChildrenCount)
	assert.Equal(t, int64(1), counters.Files())
	assert.Equal(t, int64(1), counters.Dirs())
}

func TestWalkSymlinkNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "target"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "target", "file.txt"), []byte("data"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "target"), filepath.Join(tmp, "link")))

	entries, counters, err := runWalk(t, tmp, Config{})
	require.NoError(t, err)

	byName := map[string]scan.FileEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	link, ok := byName["link"]
	require.True(t, ok)
	assert.True(t, link.IsSymlink)
	assert.False(t, link.IsDirectory)
	assert.False(t, link.IsFile)
	assert.Equal(t, int64(0), link.Size)

	// Not traversed into: only target/file.txt exists under a directory.
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), counters.Files())
}

func TestWalkSymlinkFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "target"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "target", "file.txt"), []byte("data"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "target"), filepath.Join(tmp, "link")))

	entries, counters, err := runWalk(t, tmp, Config{FollowSymlinks: true})
	require.NoError(t, err)

	// link counts as a directory and is traversed; file.txt is seen twice
	// via two distinct branches.
	var linkEntry *scan.FileEntry
	files := 0
	for i := range entries {
		if entries[i].Name == "link" {
			linkEntry = &entries[i]
		}
		if entries[i].IsFile {
			files++
		}
	}
	require.NotNil(t, linkEntry)
	assert.True(t, linkEntry.IsSymlink)
	assert.True(t, linkEntry.IsDirectory)
	assert.Equal(t, 2, files)
	assert.Equal(t, int64(2), counters.Files())
	assert.Equal(t, int64(2), counters.Dirs())
}

func TestWalkSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	tmp := t.TempDir()
	sub := filepath.Join(tmp, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "file.txt"), []byte("data"), 0644))
	// sub/loop points back at the root: a true cycle.
	require.NoError(t, os.Symlink(tmp, filepath.Join(sub, "loop")))

	entries, counters, err := runWalk(t, tmp, Config{FollowSymlinks: true})
	require.NoError(t, err)

	// The cycle branch is dropped, everything else survives.
	require.Len(t, entries, 2)
	assert.Equal(t, "sub", entries[0].Name)
	assert.Equal(t, "file.txt", entries[1].Name)
	assert.Equal(t, int64(1), counters.Skipped())
}

func TestWalkBrokenSymlinkFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "ok.txt"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "gone"), filepath.Join(tmp, "dangling")))

	entries, counters, err := runWalk(t, tmp, Config{FollowSymlinks: true})
	require.NoError(t, err)

	// The broken link is a per-entry error: skipped, counted, and the
	// walk continues with its sibling.
	require.Len(t, entries, 1)
	assert.Equal(t, "ok.txt", entries[0].Name)
	assert.Equal(t, int64(1), counters.Skipped())
}

func TestWalkCancelledBeforeStart(t *testing.T) {
	root := buildFixture(t)
	counters := NewCounters(0)
	w := NewWalker(root, Config{}, counters, func() bool { return true })
	entries, err := w.Run(context.Background())
	require.ErrorIs(t, err, scan.ErrCancelled)
	assert.Empty(t, entries)
}

func TestWalkContextCancelled(t *testing.T) {
	root := buildFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	counters := NewCounters(0)
	w := NewWalker(root, Config{}, counters, nil)
	_, err := w.Run(ctx)
	require.ErrorIs(t, err, scan.ErrCancelled)
}

func TestWalkMissingRoot(t *testing.T) {
	counters := NewCounters(0)
	w := NewWalker(filepath.Join(t.TempDir(), "gone"), Config{}, counters, nil)
	_, err := w.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, scan.ErrCancelled)
}

func TestWalkEmptyDirectory(t *testing.T) {
	entries, counters, err := runWalk(t, t.TempDir(), Config{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int64(0), counters.Entries())
}

func TestWalkWideTreeBoundedConcurrency(t *testing.T) {
	tmp := t.TempDir()
	for i := 0; i < 40; i++ {
		d := filepath.Join(tmp, string(rune('a'+i%26))+string(rune('a'+i/26)))
		require.NoError(t, os.MkdirAll(d, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(d, "f"), []byte("z"), 0644))
	}

	entries, counters, err := runWalk(t, tmp, Config{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(40), counters.Dirs())
	assert.Equal(t, int64(40), counters.Files())
	assert.Len(t, entries, 80)
}
