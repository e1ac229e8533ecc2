package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
	"git.home.luguber.info/inful/pdfbinder/internal/scan"
)

// Stage is a discrete unit of work in the bind run.
type Stage func(ctx context.Context, bs *BindState) error

// StageDef pairs a stage with its name for the runner.
type StageDef struct {
	Name string
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// Stage names, in pipeline order.
const (
	StageScan           = "scan"
	StagePrepare        = "prepare"
	StageRenderUnits    = "render_units"
	StageDryContents    = "dry_contents"
	StageResolve        = "resolve"
	StageCommitContents = "commit_contents"
	StageMerge          = "merge"
	StageStamp          = "stamp"
	StageOutline        = "outline"
	StageLinks          = "links"
	StageRecord         = "record"
	StageCleanup        = "cleanup"
)

func (e *Engine) stages() []StageDef {
	return []StageDef{
		{StageScan, e.stageScan},
		{StagePrepare, e.stagePrepare},
		{StageRenderUnits, e.stageRenderUnits},
		{StageDryContents, e.stageDryContents},
		{StageResolve, e.stageResolve},
		{StageCommitContents, e.stageCommitContents},
		{StageMerge, e.stageMerge},
		{StageStamp, e.stageStamp},
		{StageOutline, e.stageOutline},
		{StageLinks, e.stageLinks},
		{StageRecord, e.stageRecord},
		{StageCleanup, e.stageCleanup},
	}
}

func (e *Engine) stageScan(_ context.Context, bs *BindState) error {
	items, err := scan.Scan(bs.Cfg.Root, scan.Options{
		ExcludeDirs:  []string{bs.Cfg.OutputDir},
		ExcludeFiles: []string{bs.Cfg.FinalPDF},
	})
	if err != nil {
		return newFatalStageError(StageScan, err)
	}
	bs.Items = items
	bs.Files = scan.Files(items)
	if len(bs.Files) == 0 {
		return newFatalStageError(StageScan, berrors.ValidationFailed("root", "no bindable documents found"))
	}
	slog.Info("Scan complete", logfields.Count(len(bs.Items)), slog.Int("files", len(bs.Files)))
	return nil
}

func (e *Engine) stagePrepare(_ context.Context, bs *BindState) error {
	if err := os.MkdirAll(bs.WorkDir, 0o750); err != nil {
		return newFatalStageError(StagePrepare, berrors.OutputWriteFailed(bs.WorkDir, err))
	}
	slog.Debug("Workspace ready", logfields.Path(bs.WorkDir), logfields.RunID(bs.RunID))
	return nil
}

// stageRenderUnits renders every file item's cover and content units with a
// bounded worker pool. Items are independent; results land in per-index
// slots under a mutex before the sequencer ever reads them. Any render
// failure is fatal: downstream numbering is undefined without the full set
// of page counts.
func (e *Engine) stageRenderUnits(ctx context.Context, bs *BindState) error {
	concurrency := bs.Cfg.Render.Concurrency
	if concurrency > len(bs.Files) {
		concurrency = len(bs.Files)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	tasks := make(chan scan.Item)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	worker := func() {
		defer wg.Done()
		for it := range tasks {
			select {
			case <-ctx.Done():
				return
			default:
			}
			units, err := e.renderItem(ctx, bs, it)
			mu.Lock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				bs.Units[it.Index] = units
			}
			mu.Unlock()
		}
	}

	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for _, it := range bs.Files {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return newCanceledStageError(StageRenderUnits, ctx.Err())
		case tasks <- it:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return newCanceledStageError(StageRenderUnits, err)
	}
	if firstErr != nil {
		return newFatalStageError(StageRenderUnits, firstErr)
	}
	for _, it := range bs.Files {
		if bs.Units[it.Index].ContentPages == 0 {
			bs.warnf(fmt.Sprintf("item %s has 0 content pages and will be skipped at merge", it.Index))
			slog.Warn("Unit has 0 pages", logfields.Index(it.Index), logfields.File(it.Name), logfields.Unit("content"))
		}
	}
	slog.Info("Units rendered", logfields.Count(len(bs.Units)))
	return nil
}

// renderItem produces the cover and content units for one file item.
func (e *Engine) renderItem(ctx context.Context, bs *BindState, it scan.Item) (Units, error) {
	coverSrc, err := e.collab.Formatter.CoverPage(it.Index, it.Name)
	if err != nil {
		return Units{}, err
	}
	coverPDF := filepath.Join(bs.WorkDir, "cover_"+it.Index+".pdf")
	if err := e.collab.Renderer.Render(ctx, coverSrc, coverPDF); err != nil {
		return Units{}, err
	}

	contentPDF := it.Path
	if it.Source == scan.SourceDocx {
		contentPDF = filepath.Join(bs.WorkDir, "file_"+it.Index+".pdf")
		if err := e.collab.Renderer.Render(ctx, it.Path, contentPDF); err != nil {
			return Units{}, err
		}
	}

	u := Units{
		CoverPDF:     coverPDF,
		CoverPages:   e.collab.Counter.PageCount(coverPDF),
		ContentPDF:   contentPDF,
		ContentPages: e.collab.Counter.PageCount(contentPDF),
	}
	slog.Debug("Item processed", logfields.Index(it.Index),
		slog.Int("cover_pages", u.CoverPages), slog.Int("content_pages", u.ContentPages))
	return u, nil
}

// stageDryContents renders the contents page with blank page-number slots
// and measures it. The measured count (C0) becomes the fixed offset for the
// whole Bates map; this is the first half of the two-pass fixed point.
func (e *Engine) stageDryContents(ctx context.Context, bs *BindState) error {
	src, _, err := e.collab.Formatter.ContentsPage(bs.Items, map[string]int{})
	if err != nil {
		return newFatalStageError(StageDryContents, err)
	}
	dst := filepath.Join(bs.WorkDir, "contents_dummy.pdf")
	if err := e.collab.Renderer.Render(ctx, src, dst); err != nil {
		return newFatalStageError(StageDryContents, err)
	}
	bs.ContentsPages = e.collab.Counter.PageCount(dst)
	if bs.ContentsPages == 0 {
		return newFatalStageError(StageDryContents, berrors.RenderFailed(src, errors.New("dry contents render has 0 pages")))
	}
	slog.Debug("Dry contents measured", logfields.Unit("contents"), logfields.Pages(bs.ContentsPages))
	return nil
}

func (e *Engine) stageResolve(_ context.Context, bs *BindState) error {
	bs.Bates = Resolve(bs.Files, bs.Units, bs.ContentsPages, bs.Cfg.Bates.Start)
	for _, it := range bs.Files {
		slog.Debug("Bates assigned", logfields.Index(it.Index), logfields.Bates(bs.Bates[it.Index]))
	}
	return nil
}

// stageCommitContents renders the contents page a second time with the
// resolved numbers filled in and uses that artifact in the final assembly
// without re-measuring into the Bates map. If filling in the numbers changed
// the page count, the committed numbers are stale by the delta: the run
// flags the drift and continues rather than iterating.
func (e *Engine) stageCommitContents(ctx context.Context, bs *BindState) error {
	src, lines, err := e.collab.Formatter.ContentsPage(bs.Items, bs.Bates)
	if err != nil {
		return newFatalStageError(StageCommitContents, err)
	}
	dst := filepath.Join(bs.WorkDir, "contents.pdf")
	if err := e.collab.Renderer.Render(ctx, src, dst); err != nil {
		return newFatalStageError(StageCommitContents, err)
	}
	bs.ContentsPDF = dst
	bs.Lines = lines
	bs.CommitContentsPages = e.collab.Counter.PageCount(dst)

	if drift := bs.Drift(); drift != 0 {
		bs.warnf(fmt.Sprintf("contents page count drifted by %+d pages between dry and commit renders; Bates numbers are offset accordingly", drift))
		return newWarnStageError(StageCommitContents,
			fmt.Errorf("contents drift: dry=%d commit=%d", bs.ContentsPages, bs.CommitContentsPages))
	}
	return nil
}

func (e *Engine) stageMerge(ctx context.Context, bs *BindState) error {
	bs.Order = Sequence(bs.Files, bs.Units, bs.ContentsPDF)
	if err := e.collab.Merger.Merge(ctx, bs.Order, bs.Cfg.FinalPDF); err != nil {
		return newFatalStageError(StageMerge, err)
	}
	return nil
}

func (e *Engine) stageStamp(_ context.Context, bs *BindState) error {
	if err := e.collab.Annotator.StampSequential(bs.Cfg.FinalPDF, bs.Cfg.Bates.Start, bs.Cfg.Bates.FontSize); err != nil {
		return newFatalStageError(StageStamp, err)
	}
	return nil
}

func (e *Engine) stageOutline(_ context.Context, bs *BindState) error {
	entries := Outline(bs.Files, bs.Bates, bs.Cfg.Bates.Start)
	if err := e.collab.Annotator.SetOutline(bs.Cfg.FinalPDF, entries); err != nil {
		return newFatalStageError(StageOutline, err)
	}
	return nil
}

// stageLinks adds a hyperlink on the contents page(s) for every file item.
// Missing targets are skipped with a warning; an unreadable merged artifact
// is fatal because the core document is unusable.
func (e *Engine) stageLinks(_ context.Context, bs *BindState) error {
	missing := 0
	for _, it := range bs.Files {
		target := PageFor(bs.Bates[it.Index], bs.Cfg.Bates.Start)
		matched := 0
		for page := 1; page <= bs.CommitContentsPages; page++ {
			n, err := e.collab.Annotator.InsertLink(bs.Cfg.FinalPDF, page, bs.Lines[it.Index], target)
			if err != nil {
				return newFatalStageError(StageLinks, err)
			}
			matched += n
		}
		if matched == 0 {
			missing++
			bs.warnf(fmt.Sprintf("no contents link target found for item %s", it.Index))
		}
	}
	if missing > 0 {
		return newWarnStageError(StageLinks, fmt.Errorf("%d of %d contents links not found", missing, len(bs.Files)))
	}
	return nil
}

func (e *Engine) stageRecord(ctx context.Context, bs *BindState) error {
	m := bs.buildManifest("success")
	data, err := m.ToJSON()
	if err != nil {
		return newWarnStageError(StageRecord, err)
	}
	path := filepath.Join(bs.Cfg.OutputDir, "manifest-"+bs.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newWarnStageError(StageRecord, err)
	}
	if e.collab.Recorder != nil {
		if err := e.collab.Recorder.Record(ctx, m); err != nil {
			return newWarnStageError(StageRecord, fmt.Errorf("catalog record: %w", err))
		}
	}
	return nil
}

// stageCleanup removes the run's intermediate artifacts. It only runs after
// a fully successful assembly; failed runs keep their workspace for
// inspection.
func (e *Engine) stageCleanup(_ context.Context, bs *BindState) error {
	if err := os.RemoveAll(bs.WorkDir); err != nil {
		return newWarnStageError(StageCleanup, err)
	}
	slog.Debug("Workspace removed", logfields.Path(bs.WorkDir))
	return nil
}
