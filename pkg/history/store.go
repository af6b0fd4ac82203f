package history

import (
	"context"
	"time"
)

// Run is one recorded evaluation of the cost policy.
type Run struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Tier          string    `json:"tier"`
	TotalCost     float64   `json:"total_cost"`
	Currency      string    `json:"currency"`
	Period        string    `json:"period"`
	Forecast      *float64  `json:"forecast,omitempty"`
	AlertSent     bool      `json:"alert_sent"`
	NukeTriggered bool      `json:"nuke_triggered"`
	NukeStatus    string    `json:"nuke_status,omitempty"`

	// Per-category cleanup outcomes, populated only for executed runs.
	ActionsSucceeded int `json:"actions_succeeded,omitempty"`
	ActionsFailed    int `json:"actions_failed,omitempty"`
}

// Store persists evaluation runs.
type Store interface {
	// RecordRun persists a single evaluation run.
	RecordRun(ctx context.Context, run *Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases resources.
	Close() error
}
