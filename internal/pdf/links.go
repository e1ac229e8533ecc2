package pdf

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	ltpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
)

// textLine is a reconstructed line of text on a page with its bounding box.
// Coordinates use the PDF convention (origin bottom-left, points).
type textLine struct {
	text                   string
	minX, minY, maxX, maxY float64
}

// lineYTolerance groups fragments whose baselines differ by less than this
// many points into the same visual line.
const lineYTolerance = 2.0

// linkPadding widens the clickable area around a matched line, in points.
const linkPadding = 2.0

// linkAnnotation builds the internal-link annotation covering one matched
// line, targeting targetPage with a fit-page destination and no visible
// border.
func linkAnnotation(ln textLine, targetPage int) model.LinkAnnotation {
	rect := types.NewRectangle(ln.minX-linkPadding, ln.minY-linkPadding, ln.maxX+linkPadding, ln.maxY+linkPadding)
	dest := &model.Destination{Typ: model.DestFit, PageNr: targetPage}
	return model.NewLinkAnnotation(*rect, 0, "", "", "", 0, nil, dest, "", nil, false, 0, model.BSSolid)
}

// InsertLink searches page pageNr for lines whose text matches text and adds
// an internal link annotation over every match. Multiple matches all get
// linked; the original tool behaved the same way and callers rely on it.
func (a CpuAnnotator) InsertLink(path string, pageNr int, text string, targetPage int) (int, error) {
	lines, err := pageLines(path, pageNr)
	if err != nil {
		return 0, berrors.AnnotateFailed("link", err)
	}

	want := normalizeSpace(text)
	matched := 0
	for _, ln := range lines {
		// Substring match over the reconstructed line, like a page-level text
		// search: TOC rows carry the page number column in the same line.
		if !strings.Contains(normalizeSpace(ln.text), want) {
			continue
		}
		ann := linkAnnotation(ln, targetPage)
		if err := api.AddAnnotationsFile(path, "", []string{strconv.Itoa(pageNr)}, ann, nil, false); err != nil {
			return matched, berrors.AnnotateFailed("link", err)
		}
		matched++
	}
	if matched == 0 {
		// Per-page misses are routine on multi-page contents sections; the
		// engine aggregates across pages before warning.
		slog.Debug("No link match on page",
			logfields.Error(berrors.LinkTargetNotFound(text, pageNr)))
	} else {
		slog.Debug("Inserted contents links",
			slog.String("text", text), logfields.Count(matched), logfields.Bates(targetPage))
	}
	return matched, nil
}

// pageLines extracts the text of page pageNr (1-based) grouped into lines.
func pageLines(path string, pageNr int) ([]textLine, error) {
	f, r, err := ltpdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if pageNr < 1 || pageNr > r.NumPage() {
		return nil, nil
	}
	page := r.Page(pageNr)
	if page.V.IsNull() {
		return nil, nil
	}
	return groupLines(page.Content().Text), nil
}

// groupLines clusters positioned text fragments into visual lines by Y
// coordinate and concatenates them in X order.
func groupLines(frags []ltpdf.Text) []textLine {
	sorted := make([]ltpdf.Text, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineYTolerance {
			return sorted[i].Y > sorted[j].Y // top of page first
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []textLine
	for _, fr := range sorted {
		if fr.S == "" {
			continue
		}
		top := fr.Y + fr.FontSize
		if n := len(lines); n > 0 && math.Abs(lines[n-1].minY-fr.Y) <= lineYTolerance {
			ln := &lines[n-1]
			ln.text += fr.S
			ln.minX = math.Min(ln.minX, fr.X)
			ln.maxX = math.Max(ln.maxX, fr.X+fr.W)
			ln.maxY = math.Max(ln.maxY, top)
			continue
		}
		lines = append(lines, textLine{
			text: fr.S,
			minX: fr.X,
			minY: fr.Y,
			maxX: fr.X + fr.W,
			maxY: top,
		})
	}
	return lines
}

// normalizeSpace collapses runs of whitespace so that text reflow and
// indentation differences between the formatter and the rendered page do not
// break matching.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
