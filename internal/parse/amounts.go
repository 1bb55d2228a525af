package parse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mnystrom/inkomstregister/constants"
)

// RawAmountSequence is the ordered numeral groups extracted from the tail
// of a record span, original group boundaries preserved. The boundaries
// are the entire ambiguity: "1 055 700" is one logical number written as
// three groups, and a tail holds two such numbers back to back.
type RawAmountSequence []string

// Amounts is the resolved (salary, capital) pair for one record tail.
// LowConfidence is set when no scored candidate survived and the fixed
// fallback split was used.
type Amounts struct {
	Salary        int64
	Capital       int64
	LowConfidence bool
}

// Candidate is one possible split of a single-run tail, scored by salary
// plausibility. Groups is the number of groups taken as salary.
type Candidate struct {
	Salary  int64
	Capital int64
	Groups  int
	Score   float64
}

var groupToken = regexp.MustCompile(`^[-+]?\d+$`)

// TokenizeAmounts splits an amount tail into numeral groups on whitespace,
// sign characters attached to the group they prefix. Scanning stops at the
// first token that is not a signed digit group; anything after it is
// trailing junk.
func TokenizeAmounts(tail string) RawAmountSequence {
	var groups RawAmountSequence
	for _, tok := range strings.Fields(tail) {
		if !groupToken.MatchString(tok) {
			break
		}
		groups = append(groups, tok)
	}
	return groups
}

// Disambiguate resolves a raw amount sequence into exactly two signed
// integers. It is a pure function: identical input always yields identical
// output.
func Disambiguate(seq RawAmountSequence) Amounts {
	var out Amounts

	runs := splitRuns(seq)
	switch {
	case len(runs) == 0:
		// no amounts at all

	case len(runs) >= 2:
		// A sign marks where the second number begins: both sides parse
		// independently.
		out.Salary = joinGroups(runs[0])
		out.Capital = joinGroups(runs[1])

	default:
		groups := runs[0]
		switch {
		case len(groups) == 1:
			out.Salary = joinGroups(groups)
		case groups[0] == "0":
			// Explicit zero salary; the remaining groups form the capital.
			out.Capital = joinGroups(groups[1:])
		default:
			if cands := RankCandidates(groups); len(cands) > 0 {
				out.Salary = cands[0].Salary
				out.Capital = cands[0].Capital
			} else {
				out.Salary, out.Capital = fallbackSplit(groups)
				out.LowConfidence = true
			}
		}
	}

	if out.Salary < 0 || out.Salary > constants.SalaryCap {
		out.Salary = 0
	}
	if out.Capital > constants.CapitalCap || out.Capital < -constants.CapitalCap {
		out.Capital = 0
	}
	return out
}

// RankCandidates enumerates every split of a single unsigned run into a
// 1-3 group salary prefix and a capital remainder, discards splits whose
// sides are not valid grouped numbers or whose capital exceeds the cap,
// and returns the survivors ordered best first. Ties prefer the shortest
// salary prefix.
func RankCandidates(groups []string) []Candidate {
	var cands []Candidate
	for split := 1; split <= 3 && split < len(groups); split++ {
		salaryGroups := groups[:split]
		capitalGroups := groups[split:]
		if !validGroupedNumber(salaryGroups) || !validGroupedNumber(capitalGroups) {
			continue
		}
		salary := joinGroups(salaryGroups)
		capital := joinGroups(capitalGroups)
		if salary < 0 {
			continue
		}
		if capital > constants.CapitalCap || capital < -constants.CapitalCap {
			continue
		}
		cands = append(cands, Candidate{
			Salary:  salary,
			Capital: capital,
			Groups:  split,
			Score:   salaryScore(salary),
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Groups < cands[j].Groups
	})
	return cands
}

// salaryScore rates the plausibility of a candidate salary magnitude.
// The bands are tuning constants carried over from manual calibration
// against real register pages.
func salaryScore(v int64) float64 {
	switch {
	case v == 0:
		return 0.95 // valid: unemployed, students
	case v >= 100_000 && v <= 800_000:
		return 1.0 // typical range
	case v >= 50_000 && v < 100_000:
		return 0.8
	case v > 2_000_000:
		return 0.2
	case v > 800_000:
		return 0.6
	case v >= 15_000:
		return 0.9 // low but valid: part-time
	default:
		return 0.3
	}
}

// validGroupedNumber reports whether a group sequence can be one
// space-grouped number. A single group always can; a multi-group number
// whose last group has fewer than 3 digits while two or more groups
// precede it almost certainly glued a stray digit onto the wrong side.
func validGroupedNumber(groups []string) bool {
	if len(groups) < 3 {
		return true
	}
	last := strings.TrimLeft(groups[len(groups)-1], "+-")
	return len(last) >= 3
}

// fallbackSplit applies the fixed split rule by group count when no scored
// candidate survived filtering.
func fallbackSplit(groups []string) (salary, capital int64) {
	switch n := len(groups); {
	case n == 3:
		return joinGroups(groups[:2]), joinGroups(groups[2:])
	case n == 4:
		return joinGroups(groups[:2]), joinGroups(groups[2:])
	case n >= 5:
		return joinGroups(groups[:3]), joinGroups(groups[3:])
	default:
		return joinGroups(groups[:1]), joinGroups(groups[1:])
	}
}

// joinGroups concatenates the digit groups of one logical number and
// parses it. Unparseable input collapses to 0, matching the treatment of
// any other extraction noise.
func joinGroups(groups []string) int64 {
	if len(groups) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(strings.Join(groups, ""), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// splitRuns partitions the sequence into maximal runs of groups belonging
// to one logical number: a signed group always starts a new run.
func splitRuns(seq RawAmountSequence) [][]string {
	var runs [][]string
	for _, g := range seq {
		signed := strings.HasPrefix(g, "-") || strings.HasPrefix(g, "+")
		if len(runs) == 0 || signed {
			runs = append(runs, []string{g})
			continue
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], g)
	}
	return runs
}

// FormatGrouped renders an integer in the register's space-grouped style,
// e.g. 932500 -> "932 500".
func FormatGrouped(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
