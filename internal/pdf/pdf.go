// Package pdf defines the external collaborator interfaces the binder engine
// drives (rendering, page counting, merging, annotation) together with their
// production implementations. The engine never touches PDF internals itself;
// it only sequences these collaborators and verifies their outputs.
package pdf

import "context"

// Renderer converts a source document (DOCX or HTML) into page form.
type Renderer interface {
	// Render converts src and writes the resulting PDF to dst. It fails if
	// src is missing, the backend errors, or dst was not produced.
	Render(ctx context.Context, src, dst string) error
}

// PageCounter reports the page count of a page-form document.
type PageCounter interface {
	// PageCount returns the number of pages in path, or 0 if the file is
	// missing or unreadable (logged, not an error).
	PageCount(path string) int
}

// Merger concatenates page-form documents in the exact order given.
type Merger interface {
	// Merge writes the concatenation of inputs to out. Missing or 0-page
	// inputs are skipped with a warning; Merge fails only if nothing could
	// be merged or the output could not be written.
	Merge(ctx context.Context, inputs []string, out string) error
}

// OutlineEntry is one flat bookmark in the final document.
type OutlineEntry struct {
	Title string
	Page  int // 1-based absolute page number
}

// Annotator stamps, bookmarks and hyperlinks an already-merged document.
type Annotator interface {
	// StampSequential draws a zero-padded 3-digit sequential label on every
	// page, starting at start.
	StampSequential(path string, start, fontSize int) error
	// SetOutline replaces the document outline with the given entries.
	SetOutline(path string, entries []OutlineEntry) error
	// InsertLink searches page pageNr (1-based) for lines matching text and
	// links every match to targetPage. It returns the number of regions
	// linked; 0 matches is not an error.
	InsertLink(path string, pageNr int, text string, targetPage int) (int, error)
}
