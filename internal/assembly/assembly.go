// Package assembly implements the binder's pagination core: the two-pass
// resolution of the contents-page circularity, the fixed unit ordering fed
// to the merge collaborator, and the outline derived from the resolved
// numbers. All three are pure functions; the staged engine drives them.
package assembly

import (
	"fmt"

	"git.home.luguber.info/inful/pdfbinder/internal/pdf"
	"git.home.luguber.info/inful/pdfbinder/internal/scan"
)

// Units holds the rendered page-producing artifacts for one file item:
// the generated cover and the content document in page form.
type Units struct {
	CoverPDF     string
	CoverPages   int
	ContentPDF   string
	ContentPages int
}

// Pages is the total page contribution of the item's block.
func (u Units) Pages() int { return u.CoverPages + u.ContentPages }

// BatesMap maps a file item's index to the absolute Bates number of the
// first page of its block (the cover page). Built exactly once per run,
// read-only afterward.
type BatesMap map[string]int

// Resolve computes the Bates map from known page counts. contentsPages is
// the dry-pass page count of the contents unit (C0); it fixes the offset of
// every subsequent block. Numbers increase by exactly the page count of each
// preceding unit, with no gaps and no reuse.
func Resolve(files []scan.Item, units map[string]Units, contentsPages, start int) BatesMap {
	m := make(BatesMap, len(files))
	current := start + contentsPages
	for _, it := range files {
		m[it.Index] = current
		current += units[it.Index].Pages()
	}
	return m
}

// PageFor converts a Bates number into the 1-based physical page index of
// the assembled document. The two coincide when numbering starts at 1.
func PageFor(bates, start int) int { return bates - start + 1 }

// Sequence fixes the linear merge order: the contents unit first, then for
// each file item in scan order its cover unit followed by its content unit.
// This order is the single source of truth for both the merge and the
// cumulative offsets in Resolve; the two must never diverge.
func Sequence(files []scan.Item, units map[string]Units, contentsPDF string) []string {
	order := make([]string, 0, 1+2*len(files))
	order = append(order, contentsPDF)
	for _, it := range files {
		u := units[it.Index]
		order = append(order, u.CoverPDF, u.ContentPDF)
	}
	return order
}

// Outline builds the flat level-1 bookmark list: one entry per file item,
// titled "{index} - {name}", targeting the item's first physical page.
func Outline(files []scan.Item, bates BatesMap, start int) []pdf.OutlineEntry {
	entries := make([]pdf.OutlineEntry, 0, len(files))
	for _, it := range files {
		entries = append(entries, pdf.OutlineEntry{
			Title: fmt.Sprintf("%s - %s", it.Index, it.Name),
			Page:  PageFor(bates[it.Index], start),
		})
	}
	return entries
}
