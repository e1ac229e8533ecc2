package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pdfbinder/internal/scan"
)

func testItems() []scan.Item {
	return []scan.Item{
		{Index: "1", Name: "a.pdf", Kind: scan.KindFile, Source: scan.SourcePDF},
		{Index: "2", Name: "b.docx", Kind: scan.KindFile, Source: scan.SourceDocx},
		{Index: "1", Name: "Sub", Kind: scan.KindDir},
		{Index: "1.1", Name: "c.pdf", Kind: scan.KindFile, Source: scan.SourcePDF},
	}
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
}

func parseHTML(t *testing.T, path string) *html.Node {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := html.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestCoverPage(t *testing.T) {
	f := New(t.TempDir())
	f.now = fixedClock

	path, err := f.CoverPage("2.1", "report.docx")
	require.NoError(t, err)
	require.Equal(t, "cover_2.1.html", filepath.Base(path))

	doc := parseHTML(t, path)
	h1s := findAll(doc, "h1")
	require.Len(t, h1s, 1)
	require.Equal(t, "report.docx", textOf(h1s[0]))

	full := textOf(doc)
	require.Contains(t, full, "DOCUMENT INDEX")
	require.Contains(t, full, "2.1")
}

func TestContentsPageDryPass(t *testing.T) {
	f := New(t.TempDir())
	f.now = fixedClock

	path, lines, err := f.ContentsPage(testItems(), map[string]int{})
	require.NoError(t, err)
	require.Equal(t, "contents_dummy.html", filepath.Base(path))

	// One search line per file item, none for directories.
	require.Len(t, lines, 3)
	require.Equal(t, "1 - a.pdf", lines["1"])
	require.Equal(t, "2 - b.docx", lines["2"])
	require.Equal(t, "    1.1 - c.pdf", lines["1.1"])

	doc := parseHTML(t, path)
	rows := findAll(doc, "tr")
	require.Len(t, rows, 5) // header + 4 items

	// The dry pass leaves every page cell blank.
	for _, row := range rows[1:] {
		cells := findAll(row, "td")
		require.Len(t, cells, 2)
		require.Empty(t, strings.TrimSpace(textOf(cells[1])))
	}
}

func TestContentsPageCommitPass(t *testing.T) {
	f := New(t.TempDir())
	f.now = fixedClock

	bates := map[string]int{"1": 3, "2": 6, "1.1": 12}
	path, _, err := f.ContentsPage(testItems(), bates)
	require.NoError(t, err)
	require.Equal(t, "contents.html", filepath.Base(path))

	doc := parseHTML(t, path)
	rows := findAll(doc, "tr")
	require.Len(t, rows, 5)

	pageCells := map[string]string{}
	for _, row := range rows[1:] {
		cells := findAll(row, "td")
		require.Len(t, cells, 2)
		pageCells[strings.TrimSpace(textOf(cells[0]))] = strings.TrimSpace(textOf(cells[1]))
	}

	require.Equal(t, "003", pageCells["1 - a.pdf"])
	require.Equal(t, "006", pageCells["2 - b.docx"])
	// Directory rows never receive a page number, even with a full map.
	require.Empty(t, pageCells["1 - Sub"])
}

func TestContentsPageDateHeader(t *testing.T) {
	f := New(t.TempDir())
	f.now = fixedClock

	path, _, err := f.ContentsPage(testItems(), map[string]int{})
	require.NoError(t, err)

	doc := parseHTML(t, path)
	require.Contains(t, textOf(doc), "March 05, 2026")
}

func TestEscapeMarkdown(t *testing.T) {
	require.Equal(t, "weird\\|name\\*", escapeMarkdown("weird|name*"))
}
