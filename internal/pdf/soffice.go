package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
)

// SofficeRenderer renders DOCX and HTML sources to PDF via a headless
// LibreOffice invocation. There is no Go-native DOCX layout engine; the
// original tool shelled out to Microsoft Word for the same reason.
type SofficeRenderer struct {
	// Binary is the soffice executable, e.g. "soffice" or an absolute path.
	Binary  string
	Timeout time.Duration
}

// NewSofficeRenderer returns a renderer using the given binary and timeout.
func NewSofficeRenderer(binary string, timeout time.Duration) *SofficeRenderer {
	if binary == "" {
		binary = "soffice"
	}
	return &SofficeRenderer{Binary: binary, Timeout: timeout}
}

// Render converts src to PDF and moves the result to dst.
func (r *SofficeRenderer) Render(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return berrors.RenderFailed(src, err)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return berrors.RenderFailed(src, err)
	}
	// soffice names its output after the source basename, so concurrent
	// conversions of same-named sources sharing an outdir would collide.
	// Each call converts into its own scratch directory.
	outDir, err := os.MkdirTemp(filepath.Dir(dst), "render-")
	if err != nil {
		return berrors.RenderFailed(src, err)
	}
	defer os.RemoveAll(outDir)

	slog.Debug("Rendering document", logfields.Path(src), slog.String("dst", dst))
	cmd := exec.CommandContext(ctx, r.Binary, "--headless", "--norestore", "--convert-to", "pdf", "--outdir", outDir, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return berrors.RenderFailed(src, fmt.Errorf("%s: %w (%s)", r.Binary, err, strings.TrimSpace(string(out))))
	}

	// The backend exits 0 on some conversion failures; verify the artifact.
	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return berrors.RenderFailed(src, fmt.Errorf("renderer produced no output: %w", err))
	}
	if err := os.Rename(produced, dst); err != nil {
		return berrors.RenderFailed(src, fmt.Errorf("move rendered output: %w", err))
	}
	return nil
}
