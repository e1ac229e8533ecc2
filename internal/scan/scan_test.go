package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanIndexing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.docx"))
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "Sub", "c.pdf"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)

	got := map[string]string{}
	for _, it := range items {
		got[it.Name] = it.Index
	}

	// Sibling ordering is by case-insensitive name; the directory counter is
	// independent of the file counter at the same level.
	require.Equal(t, "1", got["a.pdf"])
	require.Equal(t, "2", got["b.docx"])
	require.Equal(t, "1", got["Sub"])
	require.Equal(t, "1.1", got["c.pdf"])
}

func TestScanEmissionOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.docx"))
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "Sub", "c.pdf"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)
	require.Len(t, items, 4)

	// Files first at each level, then each directory followed by its subtree.
	require.Equal(t, "a.pdf", items[0].Name)
	require.Equal(t, "b.docx", items[1].Name)
	require.Equal(t, "Sub", items[2].Name)
	require.Equal(t, KindDir, items[2].Kind)
	require.Equal(t, "c.pdf", items[3].Name)
}

func TestScanIndicesUniqueAndAnchored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x.pdf"))
	writeFile(t, filepath.Join(root, "one", "a.pdf"))
	writeFile(t, filepath.Join(root, "one", "b.pdf"))
	writeFile(t, filepath.Join(root, "one", "deep", "c.docx"))
	writeFile(t, filepath.Join(root, "two", "d.pdf"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)

	seen := map[string]Kind{}
	for _, it := range items {
		_, dup := seen[string(it.Kind)+":"+it.Index]
		require.False(t, dup, "duplicate index %s", it.Index)
		seen[string(it.Kind)+":"+it.Index] = it.Kind
	}

	// Every non-root index's parent prefix identifies exactly one directory item.
	dirs := map[string]bool{}
	for _, it := range items {
		if it.Kind == KindDir {
			dirs[it.Index] = true
		}
	}
	for _, it := range items {
		if i := strings.LastIndex(it.Index, "."); i >= 0 {
			parent := it.Index[:i]
			require.True(t, dirs[parent], "index %s has no ancestor directory %s", it.Index, parent)
		}
	}
}

func TestScanCaseInsensitiveOrdering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Beta.pdf"))
	writeFile(t, filepath.Join(root, "alpha.pdf"))
	writeFile(t, filepath.Join(root, "GAMMA.docx"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "alpha.pdf", items[0].Name)
	require.Equal(t, "Beta.pdf", items[1].Name)
	require.Equal(t, "GAMMA.docx", items[2].Name)
}

func TestScanExclusions(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "output")
	final := filepath.Join(root, "final_output.pdf")
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, final)
	writeFile(t, filepath.Join(out, "cover_1.pdf"))
	writeFile(t, filepath.Join(out, "nested", "junk.pdf"))

	items, err := Scan(root, Options{
		ExcludeDirs:  []string{out},
		ExcludeFiles: []string{final},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "a.pdf", items[0].Name)
}

func TestScanIgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "image.png"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, SourcePDF, items[0].Source)
}

func TestScanUnreadableDirIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "a.pdf"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := Scan(root, Options{})
	require.Error(t, err)
}

func TestFilesHelper(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "Sub", "b.docx"))

	items, err := Scan(root, Options{})
	require.NoError(t, err)

	files := Files(items)
	require.Len(t, files, 2)
	for _, f := range files {
		require.True(t, f.IsFile())
	}
}

func TestDepth(t *testing.T) {
	require.Equal(t, 0, Depth("1"))
	require.Equal(t, 1, Depth("2.1"))
	require.Equal(t, 2, Depth("2.1.3"))
}
