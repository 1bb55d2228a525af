package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mnystrom/inkomstregister/internal/entity"
)

// PersonRepository is the storage collaborator for extracted records.
// ReplaceAll has full-replace semantics; the read-side queries are pure
// derivations over whatever was last stored.
type PersonRepository interface {
	InitSchema(ctx context.Context) error
	ReplaceAll(ctx context.Context, records []entity.PersonRecord) error
	Count(ctx context.Context) (int64, error)
	AreaRankings(ctx context.Context) ([]entity.AreaStats, error)
	TopEarners(ctx context.Context, limit int) ([]entity.TopEarner, error)
	SalaryDistribution(ctx context.Context) ([]entity.SalaryPoint, error)
	PersonsByArea(ctx context.Context, postalCode, areaName string) ([]entity.PersonRecord, error)
}

type personRepository struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewPersonRepository(db *sql.DB, driver string, logger *slog.Logger) PersonRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &personRepository{db: db, driver: driver, logger: logger}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS persons (
		name TEXT NOT NULL,
		address TEXT,
		postal_code TEXT,
		area_name TEXT,
		age INTEGER,
		income_year INTEGER,
		salary_rank INTEGER,
		payment_remarks BOOLEAN,
		salary BIGINT,
		capital BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_postal_code ON persons(postal_code)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_area_name ON persons(area_name)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_salary ON persons(salary)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_income_year ON persons(income_year)`,
}

func (r *personRepository) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ReplaceAll deletes the previous contents and inserts the given records
// in one transaction, so readers never observe a partial batch.
func (r *personRepository) ReplaceAll(ctx context.Context, records []entity.PersonRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM persons`); err != nil {
		return fmt.Errorf("clear persons: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, rebind(r.driver, `
		INSERT INTO persons
		(name, address, postal_code, area_name, age, income_year,
		 salary_rank, payment_remarks, salary, capital)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, p := range records {
		if _, err := stmt.ExecContext(ctx,
			p.Name, p.Address, p.PostalCode, p.AreaName, p.Age, p.IncomeYear,
			p.SalaryRank, p.PaymentRemarks, p.Salary, p.Capital); err != nil {
			return fmt.Errorf("insert person %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("replaced stored records", "count", len(records))
	return nil
}

func (r *personRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}

// AreaRankings groups stored records per postal area, ranked by average
// salary.
func (r *personRepository) AreaRankings(ctx context.Context) ([]entity.AreaStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			postal_code,
			area_name,
			COUNT(*) AS person_count,
			CAST(AVG(salary) AS INTEGER) AS avg_salary,
			CAST(AVG(capital) AS INTEGER) AS avg_capital,
			CAST(AVG(age) AS INTEGER) AS avg_age
		FROM persons
		GROUP BY postal_code, area_name
		ORDER BY avg_salary DESC, person_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("area rankings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.AreaStats
	for rows.Next() {
		var s entity.AreaStats
		if err := rows.Scan(&s.PostalCode, &s.AreaName, &s.PersonCount,
			&s.AvgSalary, &s.AvgCapital, &s.AvgAge); err != nil {
			return nil, fmt.Errorf("scan area stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *personRepository) TopEarners(ctx context.Context, limit int) ([]entity.TopEarner, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, `
		SELECT name, address, area_name, postal_code, salary, capital, age, salary_rank
		FROM persons
		ORDER BY salary DESC, salary_rank ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("top earners: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.TopEarner
	for rows.Next() {
		var t entity.TopEarner
		if err := rows.Scan(&t.Name, &t.Address, &t.AreaName, &t.PostalCode,
			&t.Salary, &t.Capital, &t.Age, &t.SalaryRank); err != nil {
			return nil, fmt.Errorf("scan top earner: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SalaryDistribution returns every record with a positive salary, highest
// first, for distribution plots.
func (r *personRepository) SalaryDistribution(ctx context.Context) ([]entity.SalaryPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT area_name, postal_code, salary, salary_rank, age
		FROM persons
		WHERE salary > 0
		ORDER BY salary DESC`)
	if err != nil {
		return nil, fmt.Errorf("salary distribution: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.SalaryPoint
	for rows.Next() {
		var p entity.SalaryPoint
		if err := rows.Scan(&p.AreaName, &p.PostalCode, &p.Salary, &p.SalaryRank, &p.Age); err != nil {
			return nil, fmt.Errorf("scan salary point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PersonsByArea lists stored records for one area, highest salary first.
// Empty filter values match everything.
func (r *personRepository) PersonsByArea(ctx context.Context, postalCode, areaName string) ([]entity.PersonRecord, error) {
	query := `
		SELECT name, address, postal_code, area_name, age, income_year,
		       salary_rank, payment_remarks, salary, capital
		FROM persons`
	var args []any
	switch {
	case postalCode != "" && areaName != "":
		query += ` WHERE postal_code = ? AND area_name = ?`
		args = append(args, postalCode, areaName)
	case postalCode != "":
		query += ` WHERE postal_code = ?`
		args = append(args, postalCode)
	case areaName != "":
		query += ` WHERE area_name = ?`
		args = append(args, areaName)
	}
	query += ` ORDER BY salary DESC`

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("persons by area: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.PersonRecord
	for rows.Next() {
		var p entity.PersonRecord
		if err := rows.Scan(&p.Name, &p.Address, &p.PostalCode, &p.AreaName,
			&p.Age, &p.IncomeYear, &p.SalaryRank, &p.PaymentRemarks,
			&p.Salary, &p.Capital); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
