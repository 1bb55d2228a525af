package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnystrom/inkomstregister/internal/entity"
)

func testRepo(t *testing.T) PersonRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, driver, err := Open(context.Background(), Config{
		DSN:         ":memory:",
		DialTimeout: 3 * time.Second,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, logger) })

	repo := NewPersonRepository(db, driver, logger)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo
}

func sampleRecords() []entity.PersonRecord {
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
		{
			Name: "Bäck Maria", Address: "Rönnvägen 8",
			PostalCode: "111 22", AreaName: "Solna",
			Age: 71, IncomeYear: 2023, SalaryRank: 12,
			Salary: 0, Capital: 275896,
		},
	}
}

func TestPersonRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("replace all has full replace semantics", func(t *testing.T) {
		repo := testRepo(t)

		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		// A second batch fully supersedes the first.
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()[:1]))
		count, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("replace with empty batch clears the store", func(t *testing.T) {
		repo := testRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))
		require.NoError(t, repo.ReplaceAll(ctx, nil))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("area rankings ordered by average salary", func(t *testing.T) {
		repo := testRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

		areas, err := repo.AreaRankings(ctx)
		require.NoError(t, err)
		require.Len(t, areas, 2)

		assert.Equal(t, "Täby", areas[0].AreaName)
		assert.Equal(t, 2, areas[0].PersonCount)
		assert.Equal(t, int64((932500+412300)/2), areas[0].AvgSalary)
		assert.Equal(t, "Solna", areas[1].AreaName)
		assert.Equal(t, int64(0), areas[1].AvgSalary)
	})

	t.Run("top earners", func(t *testing.T) {
		repo := testRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

		top, err := repo.TopEarners(ctx, 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Kindström Magnus", top[0].Name)
		assert.Equal(t, int64(932500), top[0].Salary)
		assert.Equal(t, "Lindqvist Eva", top[1].Name)
	})

	t.Run("salary distribution excludes zero salaries", func(t *testing.T) {
		repo := testRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

		points, err := repo.SalaryDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, int64(932500), points[0].Salary)
		assert.Equal(t, int64(412300), points[1].Salary)
	})

	t.Run("persons by area", func(t *testing.T) {
		repo := testRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

		taby, err := repo.PersonsByArea(ctx, "187 74", "Täby")
		require.NoError(t, err)
		assert.Len(t, taby, 2)

		solna, err := repo.PersonsByArea(ctx, "", "Solna")
		require.NoError(t, err)
		require.Len(t, solna, 1)
		assert.Equal(t, "Bäck Maria", solna[0].Name)
		assert.Equal(t, int64(275896), solna[0].Capital)

		all, err := repo.PersonsByArea(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	assert.Equal(t, q, rebind("sqlite", q))
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, rebind("pgx", q))
}
