package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mnystrom/inkomstregister/constants"
)

// dataShape is the minimal shape of a line that can carry person records:
// a name token before a comma, a digit somewhere after it, and a standalone
// remark marker.
var dataShape = regexp.MustCompile(`\p{L}+.*,.*\d.*\b[NJ]\b`)

// IsDataLine reports whether a line carries at least one person record.
// The checks run in order and every failure rejects: false negatives are
// preferred, since a wrongly accepted noise line yields zero records
// downstream anyway.
func IsDataLine(line string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(line)) < constants.MinDataLineLength {
		return false
	}
	for _, marker := range constants.BoilerplateMarkers {
		if strings.Contains(line, marker) {
			return false
		}
	}
	return dataShape.MatchString(line)
}
