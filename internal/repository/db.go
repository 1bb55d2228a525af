package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	_ "modernc.org/sqlite"             // cgo-free sqlite driver
)

// Config holds database connection settings. The DSN selects the driver:
// postgres:// and postgresql:// URLs use pgx, everything else is treated
// as an SQLite path (":memory:" for in-memory).
type Config struct {
	DSN          string
	MaxOpenConns int
	DialTimeout  time.Duration
}

// Open connects to the database named by the DSN and pings it. The
// resolved driver name is returned for placeholder rebinding.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, string, error) {
	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("connecting to database", "driver", driver, "dsn", cfg.DSN)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}

	maxConns := cfg.MaxOpenConns
	if driver == "sqlite" {
		// A shared in-memory sqlite DB exists per connection; a single
		// connection also serializes file writes.
		maxConns = 1
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to ping database", "error", err)
		return nil, "", fmt.Errorf("ping: %w", err)
	}

	logger.Info("successfully connected to database")
	return db, driver, nil
}

// Close closes the database connection gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connection closed")
}

// HealthCheck pings the database, catching DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for drivers that need it.
func rebind(driver, query string) string {
	if driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
