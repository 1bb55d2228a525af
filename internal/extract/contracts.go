package extract

import (
	"context"
)

// Glyph is one positioned text fragment from a page's content stream.
// Positions enable column-aware line regrouping when a page carries no
// row-oriented text.
type Glyph struct {
	Text string
	X    float64
	Y    float64
	W    float64
}

// PageContent is the extracted content of one page. Text may be empty for
// pages with no extractable text; that is a normal outcome, not an error.
type PageContent struct {
	Text   string
	Glyphs []Glyph
}

// TextExtractor turns a source file into per-page content.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]PageContent, error)
}
