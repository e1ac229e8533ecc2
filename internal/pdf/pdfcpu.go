package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
)

// CpuCounter counts pages with pdfcpu.
type CpuCounter struct{}

// PageCount returns the page count of path, or 0 when the file is missing or
// unreadable. A 0 result is a warning condition, never an error: downstream
// stages skip 0-page units during merge.
func (CpuCounter) PageCount(path string) int {
	n, err := api.PageCountFile(path)
	if err != nil {
		slog.Warn("Unable to count pages", logfields.Path(path), logfields.Error(err))
		return 0
	}
	return n
}

// CpuMerger concatenates PDFs with pdfcpu, skipping unusable inputs.
type CpuMerger struct {
	Counter PageCounter
}

// Merge concatenates inputs into out, preserving order. Missing or 0-page
// inputs are skipped with a warning; the merge fails only when no input
// survives filtering or the write itself fails. The output is written to a
// temp file and atomically moved into place.
func (m CpuMerger) Merge(ctx context.Context, inputs []string, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	valid, skipped := mergeableInputs(inputs, m.Counter)
	for _, serr := range skipped {
		slog.Warn("Merge input skipped", logfields.Error(serr))
	}
	if len(valid) == 0 {
		return berrors.MergeFailed(fmt.Errorf("no mergeable inputs out of %d", len(inputs)))
	}

	tmp := out + ".tmp"
	if err := api.MergeCreateFile(valid, tmp, false, nil); err != nil {
		_ = os.Remove(tmp)
		return berrors.MergeFailed(err)
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return berrors.OutputWriteFailed(out, err)
	}
	slog.Info("Merged page stream", logfields.Path(out), logfields.Count(len(valid)))
	return nil
}

// mergeableInputs filters the ordered input list down to files that exist
// and contribute at least one page, preserving order. Each skip is reported
// as a warning-severity error: a degraded merge is preferred over no output.
func mergeableInputs(inputs []string, counter PageCounter) (valid []string, skipped []error) {
	valid = make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			skipped = append(skipped, berrors.MergeInputMissing(in))
			continue
		}
		if pages := counter.PageCount(in); pages == 0 {
			skipped = append(skipped, berrors.MergeInputMissing(in).WithContext("reason", "0 pages"))
			continue
		}
		valid = append(valid, in)
	}
	return valid, skipped
}

// CpuAnnotator stamps sequential numbers and writes the outline via pdfcpu.
type CpuAnnotator struct {
	Counter PageCounter
}

// StampSequential draws a zero-padded 3-digit label with a light backing box
// in the lower right corner of every page, numbering sequentially from start.
func (a CpuAnnotator) StampSequential(path string, start, fontSize int) error {
	pages := a.Counter.PageCount(path)
	if pages == 0 {
		return berrors.AnnotateFailed("stamp", fmt.Errorf("no pages in %s", path))
	}

	stamps := make(map[int]*model.Watermark, pages)
	for i := 0; i < pages; i++ {
		desc := fmt.Sprintf("fontname:Helvetica, points:%d, scale:1 abs, pos:br, off:-45 25, rot:0, fillc:#000000, bgcol:#e6e6e6", fontSize)
		wm, err := api.TextWatermark(fmt.Sprintf("%03d", start+i), desc, true, false, types.POINTS)
		if err != nil {
			return berrors.AnnotateFailed("stamp", err)
		}
		stamps[i+1] = wm
	}

	tmp := path + ".tmp"
	if err := api.AddWatermarksMapFile(path, tmp, stamps, nil); err != nil {
		_ = os.Remove(tmp)
		return berrors.AnnotateFailed("stamp", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return berrors.OutputWriteFailed(path, err)
	}
	slog.Info("Applied sequential numbering", logfields.Path(path), logfields.Pages(pages), logfields.Bates(start))
	return nil
}

// SetOutline replaces the document outline with flat level-1 bookmarks.
func (a CpuAnnotator) SetOutline(path string, entries []OutlineEntry) error {
	bms := make([]pdfcpu.Bookmark, 0, len(entries))
	for _, e := range entries {
		bms = append(bms, pdfcpu.Bookmark{Title: e.Title, PageFrom: e.Page})
	}

	tmp := path + ".tmp"
	if err := api.AddBookmarksFile(path, tmp, bms, true, nil); err != nil {
		_ = os.Remove(tmp)
		return berrors.AnnotateFailed("outline", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return berrors.OutputWriteFailed(path, err)
	}
	slog.Info("Outline written", logfields.Path(path), logfields.Count(len(entries)))
	return nil
}
