package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mnystrom/inkomstregister/internal/entity"
)

// Service renders extracted records into tabular export formats.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var columns = []string{
	"Name",
	"Address",
	"Postal Code",
	"Area",
	"Age",
	"Income Year",
	"Salary Rank",
	"Payment Remarks",
	"Salary",
	"Capital",
}

func recordRow(p entity.PersonRecord) []any {
	remarks := "No"
	if p.PaymentRemarks {
		remarks = "Yes"
	}
	return []any{
		p.Name, p.Address, p.PostalCode, p.AreaName,
		p.Age, p.IncomeYear, p.SalaryRank, remarks, p.Salary, p.Capital,
	}
}

// PersonsXLSX returns an XLSX workbook with one row per record.
func (s *Service) PersonsXLSX(records []entity.PersonRecord) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Persons"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, rec := range records {
		for col, v := range recordRow(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen the text-heavy columns
	_ = f.SetColWidth(sheet, "A", "A", 30) // name
	_ = f.SetColWidth(sheet, "B", "B", 30) // address
	_ = f.SetColWidth(sheet, "C", "D", 14) // postal code, area
	_ = f.SetColWidth(sheet, "I", "J", 14) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("xlsx export rendered", "records", len(records))
	return buf.Bytes(), nil
}

// PersonsCSV writes the records as CSV with a header row.
func (s *Service) PersonsCSV(w io.Writer, records []entity.PersonRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, p := range records {
		row := make([]string, 0, len(columns))
		for _, v := range recordRow(p) {
			switch t := v.(type) {
			case string:
				row = append(row, t)
			case int:
				row = append(row, strconv.Itoa(t))
			case int64:
				row = append(row, strconv.FormatInt(t, 10))
			default:
				row = append(row, fmt.Sprintf("%v", t))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	s.logger.Info("csv export rendered", "records", len(records))
	return nil
}

// PersonsJSON marshals the records and validates the payload against the
// export schema before handing it out, so downstream consumers can rely
// on the contract.
func (s *Service) PersonsJSON(records []entity.PersonRecord) ([]byte, error) {
	if records == nil {
		records = []entity.PersonRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	if err := ValidateRecordsJSON(data); err != nil {
		return nil, err
	}
	s.logger.Info("json export rendered", "records", len(records))
	return data, nil
}
