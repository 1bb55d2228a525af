package constants

// Remark markers as they appear in the source registers. A single letter
// follows the salary rank: J when the person has a payment remark, N when
// not.
const (
	RemarkYes = "J"
	RemarkNo  = "N"
)

// MinDataLineLength is the minimum stripped length of a line that can carry
// person records. Data lines pack multiple columns of fields and are always
// long; anything shorter is noise.
const MinDataLineLength = 50

// BoilerplateMarkers identify header and boilerplate lines that must never
// be treated as data, regardless of their other content.
var BoilerplateMarkers = []string{
	"Namn, adress",
	"Å IÅ LR",
	"Prova",
	"ratsit",
}
