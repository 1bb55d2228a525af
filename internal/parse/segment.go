package parse

import (
	"regexp"
	"strings"
)

// Span is the substring of a data line attributed to one person entry.
// Offset is the byte position within the line, kept for diagnostics only.
type Span struct {
	Text   string
	Offset int
}

// nameStart matches a run of name characters ending at a comma, the start
// of one person entry within a packed line.
var nameStart = regexp.MustCompile(`[\p{L}][\p{L} .'\-]*,`)

// SegmentLine splits a data line holding 1-3 concatenated person entries
// into per-person spans. Each candidate span runs from its name start to
// the start of the next candidate, or to the end of the line for the last
// one, so spans are contiguous, non-overlapping, and never empty. A line
// with no candidates yields zero spans; classification already filtered
// most noise, so this is a safety net rather than an error path.
func SegmentLine(line string) []Span {
	locs := nameStart.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}

	spans := make([]Span, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(line[start:end])
		if text == "" {
			continue
		}
		spans = append(spans, Span{Text: text, Offset: start})
	}
	return spans
}
