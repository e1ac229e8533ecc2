// Package scan discovers bindable documents in a directory tree and assigns
// each file and subdirectory a dotted hierarchical index ("1", "2.1", ...).
// The index order is the single source of truth for every downstream stage:
// cover generation, Bates resolution, and the final merge all follow it.
package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
)

// Kind distinguishes files from directories in the item listing.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// Source identifies whether a file needs a rendering step before merging.
type Source string

const (
	SourceDocx Source = "docx" // needs conversion to PDF
	SourcePDF  Source = "pdf"  // already page-form
)

// Item is a discovered file or directory with its assigned index.
// Items are created once by Scan and read-only afterward.
type Item struct {
	Index  string // dotted hierarchical numbering, unique within the tree
	Path   string // absolute filesystem location
	Name   string // base name, used for display and ordering
	Kind   Kind
	Source Source // set for files only
}

// IsFile reports whether the item contributes page content.
func (it Item) IsFile() bool { return it.Kind == KindFile }

// Depth returns the hierarchical depth of an index ("1" → 0, "2.1.3" → 2).
func Depth(index string) int { return strings.Count(index, ".") }

// Options controls traversal exclusions.
type Options struct {
	// ExcludeDirs are skipped by identity or ancestry at every level
	// (typically the output/work directory).
	ExcludeDirs []string
	// ExcludeFiles are skipped by identity (typically the final output PDF).
	ExcludeFiles []string
}

type scanner struct {
	collator     *collate.Collator
	excludeDirs  []string
	excludeFiles map[string]struct{}
	items        []Item
}

// Scan walks root depth-first and returns all items in index order.
// At each level files and subdirectories are sorted case-insensitively and
// numbered independently from 1; a directory item is emitted after its
// sibling files and before its own children. An unreadable directory aborts
// the scan: downstream numbering is unstable if any level is skipped.
func Scan(root string, opts Options) ([]Item, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, berrors.ScanFailed(root, err)
	}

	s := &scanner{
		collator:     collate.New(language.Und, collate.IgnoreCase),
		excludeFiles: make(map[string]struct{}, len(opts.ExcludeFiles)),
	}
	for _, d := range opts.ExcludeDirs {
		if abs, err := filepath.Abs(d); err == nil {
			s.excludeDirs = append(s.excludeDirs, abs)
		}
	}
	for _, f := range opts.ExcludeFiles {
		if abs, err := filepath.Abs(f); err == nil {
			s.excludeFiles[abs] = struct{}{}
		}
	}

	if err := s.walk(absRoot, ""); err != nil {
		return nil, err
	}
	return s.items, nil
}

// Files returns the File items of a scan result, preserving order.
func Files(items []Item) []Item {
	files := make([]Item, 0, len(items))
	for _, it := range items {
		if it.IsFile() {
			files = append(files, it)
		}
	}
	return files
}

func (s *scanner) walk(dir, prefix string) error {
	if s.excludedDir(dir) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return berrors.ScanFailed(dir, err)
	}

	var files, subdirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e)
			continue
		}
		if _, ok := sourceFor(e.Name()); !ok {
			continue
		}
		abs := filepath.Join(dir, e.Name())
		if _, excluded := s.excludeFiles[abs]; excluded {
			continue
		}
		files = append(files, e)
	}

	s.sortByName(files)
	s.sortByName(subdirs)

	for i, f := range files {
		src, _ := sourceFor(f.Name())
		s.items = append(s.items, Item{
			Index:  prefix + strconv.Itoa(i+1),
			Path:   filepath.Join(dir, f.Name()),
			Name:   f.Name(),
			Kind:   KindFile,
			Source: src,
		})
	}

	j := 0
	for _, d := range subdirs {
		sub := filepath.Join(dir, d.Name())
		if s.excludedDir(sub) {
			continue
		}
		j++
		subPrefix := prefix + strconv.Itoa(j)
		s.items = append(s.items, Item{
			Index: subPrefix,
			Path:  sub,
			Name:  d.Name(),
			Kind:  KindDir,
		})
		if err := s.walk(sub, subPrefix+"."); err != nil {
			return err
		}
	}
	return nil
}

func (s *scanner) sortByName(entries []os.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return s.collator.CompareString(entries[i].Name(), entries[j].Name()) < 0
	})
}

func (s *scanner) excludedDir(dir string) bool {
	for _, ex := range s.excludeDirs {
		if dir == ex || strings.HasPrefix(dir, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func sourceFor(name string) (Source, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return SourceDocx, true
	case ".pdf":
		return SourcePDF, true
	default:
		return "", false
	}
}

