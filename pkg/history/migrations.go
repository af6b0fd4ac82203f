package history

import "database/sql"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		tier TEXT NOT NULL,
		total_cost REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		period TEXT NOT NULL DEFAULT '',
		forecast REAL,
		alert_sent INTEGER NOT NULL DEFAULT 0,
		nuke_triggered INTEGER NOT NULL DEFAULT 0,
		nuke_status TEXT NOT NULL DEFAULT '',
		actions_succeeded INTEGER NOT NULL DEFAULT 0,
		actions_failed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_tier ON runs(tier)`,
}

func runMigrations(db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
