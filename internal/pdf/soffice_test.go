package pdf

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubConverter mimics the soffice CLI contract: it resolves --outdir and the
// trailing source path, then writes <outdir>/<basename>.pdf with the source
// content. The sleep widens the window between conversion and pickup.
const stubConverter = `#!/bin/sh
outdir=""
src=""
while [ $# -gt 0 ]; do
	case "$1" in
	--outdir) outdir="$2"; shift 2 ;;
	--*|pdf) shift ;;
	*) src="$1"; shift ;;
	esac
done
sleep 0.05
base=$(basename "$src")
cp "$src" "$outdir/${base%.*}.pdf"
`

func writeStubConverter(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub converter is a shell script")
	}
	bin := filepath.Join(dir, "soffice-stub")
	require.NoError(t, os.WriteFile(bin, []byte(stubConverter), 0o755))
	return bin
}

func TestSofficeRendererMovesOutputAndCleansScratch(t *testing.T) {
	dir := t.TempDir()
	bin := writeStubConverter(t, dir)

	src := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(src, []byte("body"), 0o644))

	work := filepath.Join(dir, "work")
	dst := filepath.Join(work, "file_1.pdf")
	r := NewSofficeRenderer(bin, 30*time.Second)
	require.NoError(t, r.Render(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "body", string(data))

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "render-"),
			"scratch directory %s left behind", e.Name())
	}
}

// Two sources with the same basename in different folders must render
// concurrently without one conversion picking up or displacing the other's
// output.
func TestSofficeRendererConcurrentSameBasename(t *testing.T) {
	dir := t.TempDir()
	bin := writeStubConverter(t, dir)

	srcA := filepath.Join(dir, "one", "a.docx")
	srcB := filepath.Join(dir, "two", "a.docx")
	require.NoError(t, os.MkdirAll(filepath.Dir(srcA), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Dir(srcB), 0o750))
	require.NoError(t, os.WriteFile(srcA, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(srcB, []byte("beta"), 0o644))

	work := filepath.Join(dir, "work")
	r := NewSofficeRenderer(bin, 30*time.Second)

	for i := 0; i < 10; i++ {
		dstA := filepath.Join(work, "file_1.pdf")
		dstB := filepath.Join(work, "file_2.pdf")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); errs[0] = r.Render(context.Background(), srcA, dstA) }()
		go func() { defer wg.Done(); errs[1] = r.Render(context.Background(), srcB, dstB) }()
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		a, err := os.ReadFile(dstA)
		require.NoError(t, err)
		b, err := os.ReadFile(dstB)
		require.NoError(t, err)
		require.Equal(t, "alpha", string(a))
		require.Equal(t, "beta", string(b))

		require.NoError(t, os.Remove(dstA))
		require.NoError(t, os.Remove(dstB))
	}
}

func TestSofficeRendererMissingSource(t *testing.T) {
	dir := t.TempDir()
	bin := writeStubConverter(t, dir)

	r := NewSofficeRenderer(bin, time.Second)
	err := r.Render(context.Background(), filepath.Join(dir, "absent.docx"), filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
}
