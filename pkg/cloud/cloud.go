package cloud

import (
	"context"
	"errors"
)

// ErrNoForecast is returned by Forecast when the billing API cannot produce
// a projection, typically because the account has too little usage history.
var ErrNoForecast = errors.New("no forecast available")

// Category identifies a class of billable resource.
type Category string

const (
	CategoryCompute  Category = "compute"
	CategoryDatabase Category = "database"
	CategoryGateway  Category = "gateway"
	CategoryFunction Category = "function"
	CategoryStorage  Category = "storage"
)

// CostSnapshot is the current-period spend as reported by the billing API.
// It is immutable once fetched; each evaluation cycle fetches a fresh one.
type CostSnapshot struct {
	Total       float64            `json:"total"`
	Currency    string             `json:"currency"`
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
	Breakdown   map[string]float64 `json:"breakdown"`
}

// Period renders the snapshot's time span for human-readable output.
func (s CostSnapshot) Period() string {
	return s.PeriodStart + " to " + s.PeriodEnd
}

// CategoryCount is one inventory line: how many resources of a category are
// currently active (running, available, or otherwise billable).
type CategoryCount struct {
	Category Category
	Label    string
	Count    int
}

// CostSource provides spend data for the current billing period.
type CostSource interface {
	// CurrentPeriodCost returns total spend and a per-service breakdown for
	// the period so far. An error here is fatal to the whole evaluation.
	CurrentPeriodCost(ctx context.Context) (*CostSnapshot, error)

	// Forecast returns the projected period-end spend. ErrNoForecast is a
	// normal outcome, not a failure.
	Forecast(ctx context.Context) (float64, error)
}

// InventorySource enumerates active billable resources per category.
// Implementations must isolate failures: one category failing to enumerate
// must not prevent the others from being reported.
type InventorySource interface {
	ListActive(ctx context.Context) []CategoryCount
}

// ActionResult describes the outcome of one category-scoped action.
type ActionResult struct {
	Description string
	Affected    int
}

// ActionExecutor performs the cleanup actions. Each method is independent;
// callers decide sequence and failure handling.
type ActionExecutor interface {
	// PauseCompute stops (not terminates) all running compute instances.
	PauseCompute(ctx context.Context) (*ActionResult, error)

	// DeleteGateways deletes all available network gateways. Irreversible.
	DeleteGateways(ctx context.Context) (*ActionResult, error)

	// PauseDatabases stops every database instance that supports stopping.
	// Instances that reject the stop are counted but not treated as errors.
	PauseDatabases(ctx context.Context) (*ActionResult, error)
}
