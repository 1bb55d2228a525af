package entity

// PersonRecord is one validated income record extracted from a register
// page. Records are immutable once emitted; malformed input is dropped
// during extraction, never repaired afterwards.
type PersonRecord struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code,omitempty"`
	AreaName       string `json:"area_name,omitempty"`
	Age            int    `json:"age"`
	IncomeYear     int    `json:"income_year"`
	SalaryRank     int    `json:"salary_rank"`
	PaymentRemarks bool   `json:"payment_remarks"`
	Salary         int64  `json:"salary"`
	Capital        int64  `json:"capital"`
}

// AreaStats aggregates stored records per postal area, ranked by average
// salary on the read side.
type AreaStats struct {
	PostalCode  string `json:"postal_code"`
	AreaName    string `json:"area_name"`
	PersonCount int    `json:"person_count"`
	AvgSalary   int64  `json:"avg_salary"`
	AvgCapital  int64  `json:"avg_capital"`
	AvgAge      int    `json:"avg_age"`
}

// TopEarner is the read model for the top-earners query.
type TopEarner struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	AreaName   string `json:"area_name"`
	PostalCode string `json:"postal_code"`
	Salary     int64  `json:"salary"`
	Capital    int64  `json:"capital"`
	Age        int    `json:"age"`
	SalaryRank int    `json:"salary_rank"`
}

// SalaryPoint is one sample in the salary distribution query.
type SalaryPoint struct {
	AreaName   string `json:"area_name"`
	PostalCode string `json:"postal_code"`
	Salary     int64  `json:"salary"`
	SalaryRank int    `json:"salary_rank"`
	Age        int    `json:"age"`
}
