package parse

import (
	"log/slog"

	"github.com/mnystrom/inkomstregister/constants"
	"github.com/mnystrom/inkomstregister/internal/entity"
)

// Parser turns raw page text into validated person records. It holds no
// mutable state between pages; the page header is derived per page and
// discarded after the page is done.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// PageStats counts what happened to one page. Every rejected span and
// every low-confidence amount split is visible here; nothing is silently
// swallowed.
type PageStats struct {
	Lines         int
	DataLines     int
	Spans         int
	Records       int
	Rejected      int
	LowConfidence int
}

// Add accumulates another page's counters.
func (s *PageStats) Add(o PageStats) {
	s.Lines += o.Lines
	s.DataLines += o.DataLines
	s.Spans += o.Spans
	s.Records += o.Records
	s.Rejected += o.Rejected
	s.LowConfidence += o.LowConfidence
}

// ParsePage runs the full line pipeline over one page of text: normalize,
// classify, segment, tokenize, disambiguate, emit. Records are immutable
// once returned.
func (p *Parser) ParsePage(text string) ([]entity.PersonRecord, PageStats) {
	lines, header := NormalizePage(text)
	stats := PageStats{Lines: len(lines)}

	var records []entity.PersonRecord
	for _, line := range lines {
		if !IsDataLine(line) {
			continue
		}
		stats.DataLines++

		for _, span := range SegmentLine(line) {
			stats.Spans++

			fields, err := TokenizeSpan(span.Text)
			if err != nil {
				stats.Rejected++
				p.logger.Debug("span rejected", "offset", span.Offset, "error", err)
				continue
			}

			amounts := Disambiguate(fields.Amounts)
			if amounts.LowConfidence {
				stats.LowConfidence++
				p.logger.Debug("amount split low confidence",
					"name", fields.Name, "groups", len(fields.Amounts))
			}

			rec := entity.PersonRecord{
				Name:           fields.Name,
				Address:        fields.Address,
				Age:            fields.Age,
				IncomeYear:     IncomeYear(fields.Year),
				SalaryRank:     fields.Rank,
				PaymentRemarks: fields.Remarks,
				Salary:         amounts.Salary,
				Capital:        amounts.Capital,
			}
			if header != nil {
				rec.PostalCode = header.PostalCode
				rec.AreaName = header.AreaName
			}
			records = append(records, rec)
			stats.Records++
		}
	}
	return records, stats
}

// IncomeYear converts the printed 2-digit year to a 4-digit year.
func IncomeYear(year2 int) int {
	if year2 < constants.YearPivot {
		return 2000 + year2
	}
	return 1900 + year2
}
