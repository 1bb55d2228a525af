package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// yTolerance is the vertical distance within which glyphs belong to the
// same physical text line. spaceGap is the horizontal gap beyond which two
// adjacent glyphs get a separating space; the content stream positions
// glyphs but does not always carry explicit space characters.
const (
	yTolerance = 3.0
	spaceGap   = 1.5
)

// PDFExtractor reads per-page text and positioned glyphs from a PDF file.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// ExtractPages returns the content of every page in order. Pages that
// cannot be read yield empty content rather than failing the file; only
// opening the document itself can fail.
func (e *PDFExtractor) ExtractPages(ctx context.Context, path string) ([]PageContent, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("close pdf", "path", path, "error", cerr)
		}
	}()

	total := reader.NumPage()
	pages := make([]PageContent, 0, total)
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, PageContent{})
			continue
		}

		glyphs := pageGlyphs(page)
		pages = append(pages, PageContent{
			Text:   linesFromGlyphs(glyphs),
			Glyphs: glyphs,
		})
	}

	e.logger.Debug("extracted pdf", "path", path, "pages", total)
	return pages, nil
}

func pageGlyphs(page pdf.Page) []Glyph {
	content := page.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{Text: t.S, X: t.X, Y: t.Y, W: t.W})
	}
	return glyphs
}

// linesFromGlyphs regroups positioned glyphs into physical text lines:
// glyphs within yTolerance of each other share a line, lines run top to
// bottom, and glyphs within a line run left to right.
func linesFromGlyphs(glyphs []Glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	// PDF y grows upward: descending y is top of page first.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]Glyph
	current := []Glyph{sorted[0]}
	currentY := sorted[0].Y
	for _, g := range sorted[1:] {
		if currentY-g.Y <= yTolerance {
			current = append(current, g)
			continue
		}
		lines = append(lines, current)
		current = []Glyph{g}
		currentY = g.Y
	}
	lines = append(lines, current)

	var b strings.Builder
	for i, line := range lines {
		sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
		if i > 0 {
			b.WriteByte('\n')
		}
		prevEnd := -1.0
		for _, g := range line {
			if prevEnd >= 0 && g.X-prevEnd > spaceGap && !strings.HasPrefix(g.Text, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(g.Text)
			prevEnd = g.X + g.W
		}
	}
	return b.String()
}
