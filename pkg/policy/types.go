package policy

import "github.com/hellybrine/terraforms/pkg/cloud"

// Tier classifies current spend against the configured thresholds.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierAlert    Tier = "alert"
	TierCritical Tier = "critical"
)

// Thresholds are the dollar amounts that separate the tiers.
// Critical is checked before Alert, so a misconfigured pair (alert above
// critical) still triggers Critical; the values are deliberately not
// validated against each other.
type Thresholds struct {
	Alert    float64
	Critical float64
}

// SafetyGate is the interlock in front of destructive cleanup. Both knobs
// must be set deliberately: cleanup runs only when AutoActionEnabled is true
// and DryRun is false.
type SafetyGate struct {
	AutoActionEnabled bool
	DryRun            bool
}

// GateDecision is the outcome of evaluating the safety gate.
type GateDecision string

const (
	GateSkip    GateDecision = "skip"
	GateDryRun  GateDecision = "dry_run"
	GateExecute GateDecision = "execute"
)

// Attempt records one category-scoped action attempt, in sequence order.
type Attempt struct {
	Category cloud.Category `json:"category"`
	OK       bool           `json:"ok"`
}

// Failure records a failed category action.
type Failure struct {
	Category cloud.Category `json:"category"`
	Error    string         `json:"error"`
}

// ActionReport accumulates the outcomes of an action sequence. Actions are
// independent and irreversible once issued; nothing here is rolled back.
type ActionReport struct {
	Attempted []Attempt `json:"attempted"`
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// NukeResult describes what the critical-tier cleanup path did.
type NukeResult struct {
	// Status is one of "skipped", "dry_run", "executed".
	Status string `json:"status"`

	// Reason is set when Status is "skipped".
	Reason string `json:"reason,omitempty"`

	// Resources is the would-be target listing for a dry run.
	Resources []string `json:"resources,omitempty"`

	// Report holds per-category outcomes when Status is "executed".
	Report *ActionReport `json:"report,omitempty"`
}

// Report is the structured result of one evaluation, returned to the
// invoking infrastructure and serialized as JSON.
type Report struct {
	StatusCode        int         `json:"statusCode"`
	Tier              Tier        `json:"tier"`
	CurrentCost       float64     `json:"currentCost"`
	Currency          string      `json:"currency"`
	Period            string      `json:"period"`
	AlertThreshold    float64     `json:"alertThreshold"`
	CriticalThreshold float64     `json:"criticalThreshold"`
	ForecastedCost    *float64    `json:"forecastedCost"`
	AlertSent         bool        `json:"alertSent"`
	NukeTriggered     bool        `json:"nukeTriggered"`
	NukeResult        *NukeResult `json:"nukeResult,omitempty"`
}
