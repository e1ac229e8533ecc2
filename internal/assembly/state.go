package assembly

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pdfbinder/internal/config"
	"git.home.luguber.info/inful/pdfbinder/internal/manifest"
	"git.home.luguber.info/inful/pdfbinder/internal/pdf"
	"git.home.luguber.info/inful/pdfbinder/internal/scan"
)

// Formatter produces the binder's synthetic source documents.
type Formatter interface {
	// CoverPage writes the cover source for one file item.
	CoverPage(index, displayName string) (path string, err error)
	// ContentsPage writes the contents source. An empty bates map renders
	// blank page-number placeholders (the dry pass). lines carries the exact
	// per-file row text used as hyperlink search targets.
	ContentsPage(items []scan.Item, bates map[string]int) (path string, lines map[string]string, err error)
}

// RunRecorder persists a finished run (the sqlite catalog in production).
type RunRecorder interface {
	Record(ctx context.Context, m *manifest.RunManifest) error
}

// Collaborators bundles the external services the engine drives. All fields
// except Recorder are required.
type Collaborators struct {
	Renderer  pdf.Renderer
	Counter   pdf.PageCounter
	Merger    pdf.Merger
	Annotator pdf.Annotator
	Formatter Formatter
	Recorder  RunRecorder // optional; nil disables the catalog
}

// BindState carries mutable state across stages. The Bates map and the unit
// order are each written by exactly one stage and only read afterward.
type BindState struct {
	Cfg     *config.Config
	RunID   string
	WorkDir string

	Items []scan.Item      // full scan result, index order
	Files []scan.Item      // file items only, scan order
	Units map[string]Units // per file index, filled by the render stage

	ContentsPages       int    // C0, the dry-pass contents page count
	CommitContentsPages int    // page count of the committed contents render
	ContentsPDF         string // committed contents artifact, first merge input
	Lines               map[string]string

	Bates BatesMap
	Order []string

	Timings  map[string]time.Duration
	Warnings []string
	start    time.Time
}

func newBindState(cfg *config.Config, runID string) *BindState {
	return &BindState{
		Cfg:     cfg,
		RunID:   runID,
		WorkDir: cfg.WorkDir(runID),
		Units:   make(map[string]Units),
		Timings: make(map[string]time.Duration),
		start:   time.Now(),
	}
}

// Drift is the page-count delta between the commit and dry contents renders.
// Non-zero means the committed numbers are stale by that many pages.
func (bs *BindState) Drift() int {
	return bs.CommitContentsPages - bs.ContentsPages
}

func (bs *BindState) warnf(msg string) {
	bs.Warnings = append(bs.Warnings, msg)
}

// buildManifest snapshots the run into its manifest record.
func (bs *BindState) buildManifest(status string) *manifest.RunManifest {
	m := &manifest.RunManifest{
		RunID:         bs.RunID,
		StartedAt:     bs.start,
		Root:          bs.Cfg.Root,
		Output:        bs.Cfg.FinalPDF,
		BatesStart:    bs.Cfg.Bates.Start,
		ContentsPages: bs.ContentsPages,
		ContentsDrift: bs.Drift(),
		Duration:      time.Since(bs.start),
		Status:        status,
	}
	for _, it := range bs.Items {
		rec := manifest.ItemRecord{
			Index: it.Index,
			Name:  it.Name,
			Path:  it.Path,
			Kind:  string(it.Kind),
		}
		if it.IsFile() {
			u := bs.Units[it.Index]
			rec.CoverPages = u.CoverPages
			rec.ContentPages = u.ContentPages
			rec.Bates = bs.Bates[it.Index]
		}
		m.Items = append(m.Items, rec)
	}
	return m
}
