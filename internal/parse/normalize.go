package parse

import (
	"regexp"
	"strings"
)

// PageHeader carries the postal code and area name found on a register
// page. It is derived once per page; pages without a matching header line
// produce records with empty postal code and area.
type PageHeader struct {
	PostalCode string
	AreaName   string
}

// headerPattern matches the page header: three digits, a space, two digits,
// then the area name.
var headerPattern = regexp.MustCompile(`(\d{3} \d{2})\s+(\p{L}+)`)

// NormalizePage splits raw page text into an ordered line sequence and
// scans it for the postal code header. A page with no extractable text
// yields no lines and no header; that is not an error.
func NormalizePage(text string) ([]string, *PageHeader) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	var header *PageHeader
	for _, line := range lines {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			header = &PageHeader{PostalCode: m[1], AreaName: m[2]}
			break
		}
	}
	return lines, header
}
