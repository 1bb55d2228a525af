package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mnystrom/inkomstregister/constants"
)

// Fields holds the typed fields of one record span, with the amount tail
// still unresolved.
type Fields struct {
	Name    string
	Address string
	Age     int
	Year    int // 2-digit income year as printed
	Rank    int
	Remarks bool
	Amounts RawAmountSequence
}

var (
	errNoComma      = errors.New("no comma after name")
	errShortName    = errors.New("name too short")
	errGrammar      = errors.New("trailing grammar mismatch")
	errAgeRange     = errors.New("age out of range")
	errBadRank      = errors.New("rank not positive")
	errEmptyAddress = errors.New("empty address")
)

// spanGrammar is the fixed trailing grammar of a record span remainder:
// address, a 2-digit age and 2-digit year (adjacent or space-separated,
// always split positionally 2+2), the salary rank, the remark marker, and
// the raw amount tail.
var spanGrammar = regexp.MustCompile(`^(.*?)\s*(\d{2})\s?(\d{2})\s+(\d+)\s+([NJ])\s*(.*)$`)

// orphanDigits matches a stray 1-2 digit group glued after the house
// number, noise from an adjacent column.
var orphanDigits = regexp.MustCompile(`^(.*\d)\s+\d{1,2}$`)

// TokenizeSpan parses one record span into typed fields. It rejects spans
// whose remainder does not match the trailing grammar, whose age falls
// outside the valid range, or whose name or address come up empty.
func TokenizeSpan(span string) (Fields, error) {
	name, rest, ok := strings.Cut(span, ",")
	if !ok {
		return Fields{}, errNoComma
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return Fields{}, errShortName
	}

	m := spanGrammar.FindStringSubmatch(rest)
	if m == nil {
		return Fields{}, errGrammar
	}

	age, _ := strconv.Atoi(m[2])
	if age < constants.MinAge || age > constants.MaxAge {
		return Fields{}, errAgeRange
	}
	year, _ := strconv.Atoi(m[3])
	rank, err := strconv.Atoi(m[4])
	if err != nil || rank < 1 {
		return Fields{}, errBadRank
	}

	address := cleanAddress(m[1])
	if address == "" {
		return Fields{}, errEmptyAddress
	}

	return Fields{
		Name:    name,
		Address: address,
		Age:     age,
		Year:    year,
		Rank:    rank,
		Remarks: m[5] == constants.RemarkYes,
		Amounts: TokenizeAmounts(m[6]),
	}, nil
}

// cleanAddress trims the address and strips a trailing orphan digit group.
// A lone short digit group after the house number cannot belong to the
// address; a real house number like "114" is a single group and survives.
func cleanAddress(address string) string {
	address = strings.TrimSpace(address)
	if m := orphanDigits.FindStringSubmatch(address); m != nil {
		address = strings.TrimSpace(m[1])
	}
	return address
}
