// Package format generates the binder's synthetic source documents: one
// cover page per file and the table of contents. Pages are composed as
// Markdown, rendered to HTML with Goldmark and wrapped in a US-Letter print
// template; the external renderer turns them into page form.
package format

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
	"git.home.luguber.info/inful/pdfbinder/internal/scan"
)

// indentUnit is the per-depth indentation of a contents row. The same text,
// with literal spaces, is returned as the row's hyperlink search line.
const indentUnit = "    "

// Formatter writes cover and contents source documents into a work directory.
type Formatter struct {
	workDir string
	md      goldmark.Markdown
	now     func() time.Time
}

// New returns a Formatter writing artifacts into workDir.
func New(workDir string) *Formatter {
	return &Formatter{
		workDir: workDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
		now: time.Now,
	}
}

// CoverPage writes the cover source document for one file item and returns
// its path. The layout follows the original binder: a small header, the
// hierarchical number, the filename, and a divider footer.
func (f *Formatter) CoverPage(index, displayName string) (string, error) {
	var b strings.Builder
	b.WriteString("<div class=\"header\">DOCUMENT INDEX</div>\n\n")
	b.WriteString("&nbsp;\n\n&nbsp;\n\n&nbsp;\n\n")
	fmt.Fprintf(&b, "<div class=\"number\">%s</div>\n\n", template.HTMLEscapeString(index))
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(displayName))
	fmt.Fprintf(&b, "<div class=\"divider\">%s</div>\n", strings.Repeat("⎯", 20))

	path := filepath.Join(f.workDir, "cover_"+index+".html")
	if err := f.writePage(path, "cover", b.String()); err != nil {
		return "", err
	}
	return path, nil
}

// ContentsPage writes the table of contents source document. bates maps file
// indices to resolved page numbers; pass an empty map for the dry pass, which
// renders a blank placeholder in every page cell. The returned lines map
// holds, per file index, the exact row text used later as the hyperlink
// search target.
func (f *Formatter) ContentsPage(items []scan.Item, bates map[string]int) (string, map[string]string, error) {
	lines := make(map[string]string)

	var b strings.Builder
	b.WriteString("# TABLE OF CONTENTS\n\n")
	fmt.Fprintf(&b, "<div class=\"date\">%s</div>\n\n", f.now().Format("January 02, 2006"))
	fmt.Fprintf(&b, "<div class=\"divider\">%s</div>\n\n", strings.Repeat("⎯", 30))

	b.WriteString("| Document | Page |\n")
	b.WriteString("| :--- | ---: |\n")
	for _, it := range items {
		indent := strings.Repeat(indentUnit, scan.Depth(it.Index))
		line := it.Index + " - " + it.Name

		cell := strings.Repeat("&nbsp;", len(indent)) + escapeMarkdown(line)
		if it.Kind == scan.KindDir {
			cell = "**" + cell + "**"
		}

		page := ""
		if n, ok := bates[it.Index]; ok && it.IsFile() {
			page = fmt.Sprintf("%03d", n)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", cell, page)

		if it.IsFile() {
			lines[it.Index] = indent + line
		}
	}

	name := "contents.html"
	if len(bates) == 0 {
		name = "contents_dummy.html"
	}
	path := filepath.Join(f.workDir, name)
	if err := f.writePage(path, "contents", b.String()); err != nil {
		return "", nil, err
	}
	return path, lines, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
@page { size: letter; margin: 1in; }
body { font-family: Arial, Helvetica, sans-serif; font-size: 11pt; line-height: 1.15; }
body.cover { text-align: center; }
body.cover .header { color: #646464; font-size: 12pt; font-weight: bold; }
body.cover .number { font-size: 18pt; font-weight: bold; }
body.cover h1 { font-size: 24pt; }
.divider { color: #b4b4b4; text-align: center; }
body.contents h1 { font-size: 16pt; text-align: center; }
body.contents .date { font-size: 12pt; font-style: italic; text-align: center; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 5pt 0; border: none; }
th:first-child, td:first-child { text-align: left; width: 86%; }
th:last-child, td:last-child { text-align: right; }
</style>
</head>
<body class="{{.Class}}">
{{.Body}}
</body>
</html>
`))

// writePage renders markdown to HTML and writes the wrapped page to path.
func (f *Formatter) writePage(path, class, markdown string) error {
	var body bytes.Buffer
	if err := f.md.Convert([]byte(markdown), &body); err != nil {
		return berrors.FormatFailed(path, err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Class string
		Body  template.HTML
	}{Class: class, Body: template.HTML(body.String())})
	if err != nil {
		return berrors.FormatFailed(path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return berrors.FormatFailed(path, err)
	}
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return berrors.FormatFailed(path, err)
	}
	return nil
}

// escapeMarkdown neutralizes characters that would change table or emphasis
// structure when a filename contains them.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`")
	return r.Replace(s)
}
