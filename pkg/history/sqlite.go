package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	var forecast sql.NullFloat64
	if run.Forecast != nil {
		forecast = sql.NullFloat64{Float64: *run.Forecast, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, timestamp, tier, total_cost, currency, period, forecast, alert_sent, nuke_triggered, nuke_status, actions_succeeded, actions_failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Timestamp, run.Tier, run.TotalCost, run.Currency, run.Period,
		forecast, run.AlertSent, run.NukeTriggered, run.NukeStatus,
		run.ActionsSucceeded, run.ActionsFailed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, tier, total_cost, currency, period, forecast, alert_sent, nuke_triggered, nuke_status, actions_succeeded, actions_failed
		 FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var forecast sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Tier, &r.TotalCost, &r.Currency,
			&r.Period, &forecast, &r.AlertSent, &r.NukeTriggered, &r.NukeStatus,
			&r.ActionsSucceeded, &r.ActionsFailed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if forecast.Valid {
			v := forecast.Float64
			r.Forecast = &v
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
