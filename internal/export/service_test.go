package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mnystrom/inkomstregister/internal/entity"
)

func testService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func exportRecords() []entity.PersonRecord {
	return []entity.PersonRecord{
		{
			Name: "Kindström Magnus", Address: "Djupdalsvägen 114",
			PostalCode: "187 74", AreaName: "Täby",
			Age: 53, IncomeYear: 2023, SalaryRank: 80,
			Salary: 932500, Capital: -129720,
		},
		{
			Name: "Lindqvist Eva", Address: "Storgatan 12",
			PostalCode: "187 74", AreaName: "Täby",
			Age: 67, IncomeYear: 2023, SalaryRank: 41, PaymentRemarks: true,
			Salary: 412300, Capital: 55000,
		},
	}
}

func TestPersonsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testService().PersonsCSV(&buf, exportRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "Kindström Magnus", rows[1][0])
	assert.Equal(t, "932500", rows[1][8])
	assert.Equal(t, "-129720", rows[1][9])
	assert.Equal(t, "No", rows[1][7])
	assert.Equal(t, "Yes", rows[2][7])
}

func TestPersonsJSON(t *testing.T) {
	t.Run("valid payload round trips", func(t *testing.T) {
		data, err := testService().PersonsJSON(exportRecords())
		require.NoError(t, err)

		var back []entity.PersonRecord
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, exportRecords(), back)
	})

	t.Run("empty batch is an empty array", func(t *testing.T) {
		data, err := testService().PersonsJSON(nil)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	})
}

func TestPersonsXLSX(t *testing.T) {
	data, err := testService().PersonsXLSX(exportRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	header, err := f.GetCellValue("Persons", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", header)

	name, err := f.GetCellValue("Persons", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Kindström Magnus", name)

	salary, err := f.GetCellValue("Persons", "I3")
	require.NoError(t, err)
	assert.Equal(t, "412300", salary)
}

func TestValidateRecordsJSON(t *testing.T) {
	t.Run("rejects out of range age", func(t *testing.T) {
		payload := `[{"name":"AB","address":"Gatan 1","age":5,"income_year":2023,
			"salary_rank":1,"payment_remarks":false,"salary":0,"capital":0}]`
		assert.Error(t, ValidateRecordsJSON([]byte(payload)))
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		payload := `[{"name":"AB","address":"Gatan 1","age":40,"income_year":2023,
			"salary_rank":1,"payment_remarks":false,"salary":0,"capital":0,"extra":true}]`
		assert.Error(t, ValidateRecordsJSON([]byte(payload)))
	})

	t.Run("rejects non array payload", func(t *testing.T) {
		assert.Error(t, ValidateRecordsJSON([]byte(`{"name":"AB"}`)))
	})

	t.Run("accepts records missing optional area fields", func(t *testing.T) {
		payload := `[{"name":"AB","address":"Gatan 1","age":40,"income_year":2023,
			"salary_rank":1,"payment_remarks":false,"salary":250000,"capital":-5000}]`
		assert.NoError(t, ValidateRecordsJSON([]byte(payload)))
	})
}
