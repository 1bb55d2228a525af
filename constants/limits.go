package constants

// Age bounds for a valid person record. Ages outside the range are
// rejected, never clamped.
const (
	MinAge = 15
	MaxAge = 100
)

// YearPivot converts the register's 2-digit income year to a 4-digit year:
// values below the pivot belong to the 2000s, the rest to the 1900s.
const YearPivot = 50

// Amount sanity caps. Values beyond these are extraction noise and are
// forced to zero in the emitted record.
const (
	SalaryCap  int64 = 50_000_000
	CapitalCap int64 = 10_000_000
)
