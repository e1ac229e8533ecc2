package pdf

import (
	"testing"

	ltpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"
)

func frag(s string, x, y, w float64) ltpdf.Text {
	return ltpdf.Text{S: s, X: x, Y: y, W: w, FontSize: 11}
}

func TestGroupLinesJoinsFragmentsInXOrder(t *testing.T) {
	frags := []ltpdf.Text{
		frag(" - a.pdf", 110, 700, 40),
		frag("1", 100, 700, 8),
	}
	lines := groupLines(frags)
	require.Len(t, lines, 1)
	require.Equal(t, "1 - a.pdf", lines[0].text)
	require.Equal(t, 100.0, lines[0].minX)
	require.Equal(t, 150.0, lines[0].maxX)
}

func TestGroupLinesSeparatesByY(t *testing.T) {
	frags := []ltpdf.Text{
		frag("2 - b.docx", 100, 680, 60),
		frag("1 - a.pdf", 100, 700, 50),
		frag("003", 500, 700, 20),
	}
	lines := groupLines(frags)
	require.Len(t, lines, 2)
	// Top of the page first.
	require.Equal(t, "1 - a.pdf003", lines[0].text)
	require.Equal(t, "2 - b.docx", lines[1].text)
}

func TestGroupLinesToleratesBaselineJitter(t *testing.T) {
	frags := []ltpdf.Text{
		frag("1 - a", 100, 700, 30),
		frag(".pdf", 131, 701.5, 20),
	}
	lines := groupLines(frags)
	require.Len(t, lines, 1)
	require.Equal(t, "1 - a.pdf", lines[0].text)
}

func TestGroupLinesSkipsEmptyFragments(t *testing.T) {
	frags := []ltpdf.Text{
		frag("", 100, 700, 0),
		frag("x", 100, 700, 5),
	}
	lines := groupLines(frags)
	require.Len(t, lines, 1)
	require.Equal(t, "x", lines[0].text)
}

func TestLinkAnnotationCoversMatchedLine(t *testing.T) {
	ln := textLine{text: "1 - a.pdf", minX: 100, minY: 698, maxX: 150, maxY: 711}
	ann := linkAnnotation(ln, 3)

	require.Equal(t, 98.0, ann.Rect.LL.X)
	require.Equal(t, 696.0, ann.Rect.LL.Y)
	require.Equal(t, 152.0, ann.Rect.UR.X)
	require.Equal(t, 713.0, ann.Rect.UR.Y)

	require.NotNil(t, ann.Dest)
	require.Equal(t, 3, ann.Dest.PageNr)
	require.Equal(t, model.DestFit, ann.Dest.Typ)
	require.Empty(t, ann.URI, "internal links carry a destination, never a URI")
}

func TestNormalizeSpace(t *testing.T) {
	require.Equal(t, "1 - a.pdf", normalizeSpace("    1 - a.pdf"))
	require.Equal(t, "2.1 - deep file.pdf", normalizeSpace("2.1  -  deep file.pdf "))
	require.Equal(t, "", normalizeSpace("   "))
}
