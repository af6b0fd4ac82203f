package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/history"
	"github.com/hellybrine/terraforms/pkg/notify"
)

// EngineConfig wires an engine's collaborators and policy knobs.
// Notifier and History may be nil, in which case notifications and run
// persistence are disabled respectively.
type EngineConfig struct {
	Costs     cloud.CostSource
	Inventory cloud.InventorySource
	Executor  cloud.ActionExecutor

	Notifier notify.Notifier
	History  history.Store

	Thresholds       Thresholds
	Gate             SafetyGate
	Plan             Plan
	NotifyWhenNormal bool

	Logger *slog.Logger
}

// Engine is the policy orchestrator: fetch cost, classify, notify, and on
// the critical tier run the safety-gated cleanup. One run per invocation;
// no state carries over between runs.
type Engine struct {
	cfg      EngineConfig
	composer Composer
	logger   *slog.Logger
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		composer: Composer{Thresholds: cfg.Thresholds},
		logger:   logger,
	}
}

// Run performs one full evaluation. A cost-fetch failure aborts the run with
// an error and nothing is notified; every later failure is degraded, logged,
// and reflected in the returned report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	snapshot, err := e.cfg.Costs.CurrentPeriodCost(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current cost: %w", err)
	}

	forecast := e.fetchForecast(ctx)
	tier := Classify(snapshot.Total, e.cfg.Thresholds)

	e.logger.Info("cost evaluated",
		"total", snapshot.Total,
		"currency", snapshot.Currency,
		"tier", tier,
		"alert_threshold", e.cfg.Thresholds.Alert,
		"critical_threshold", e.cfg.Thresholds.Critical,
	)

	report := &Report{
		StatusCode:        http.StatusOK,
		Tier:              tier,
		CurrentCost:       snapshot.Total,
		Currency:          snapshot.Currency,
		Period:            snapshot.Period(),
		AlertThreshold:    e.cfg.Thresholds.Alert,
		CriticalThreshold: e.cfg.Thresholds.Critical,
		ForecastedCost:    forecast,
	}

	switch tier {
	case TierCritical:
		e.runCritical(ctx, snapshot, report)
	case TierAlert:
		report.AlertSent = e.send(ctx, e.composer.Alert(snapshot, forecast))
	case TierNormal:
		if e.cfg.NotifyWhenNormal {
			e.send(ctx, e.composer.Normal(snapshot, forecast))
		}
	}

	e.recordRun(ctx, report)
	return report, nil
}

// runCritical handles the critical tier: warn unconditionally, then let the
// gate decide whether cleanup is skipped, simulated, or executed.
func (e *Engine) runCritical(ctx context.Context, snapshot *cloud.CostSnapshot, report *Report) {
	inventory := e.listInventory(ctx)

	// Operators are warned before and regardless of the gate outcome.
	report.AlertSent = e.send(ctx, e.composer.CriticalWarning(snapshot, inventory))
	report.NukeTriggered = true

	decision := Decide(e.cfg.Gate)
	e.logger.Warn("critical threshold exceeded",
		"total", snapshot.Total,
		"threshold", e.cfg.Thresholds.Critical,
		"gate", decision,
	)

	switch decision {
	case GateSkip:
		e.send(ctx, e.composer.SkipNotice())
		report.NukeResult = &NukeResult{Status: "skipped", Reason: "auto_nuke_disabled"}

	case GateDryRun:
		var resources []string
		for _, c := range inventory {
			resources = append(resources, fmt.Sprintf("%s: %d", c.Label, c.Count))
		}
		e.send(ctx, e.composer.DryRunListing(inventory))
		report.NukeResult = &NukeResult{Status: "dry_run", Resources: resources}

	case GateExecute:
		sequencer := NewSequencer(e.cfg.Executor, e.cfg.Plan, e.logger)
		actionReport := sequencer.Run(ctx)
		e.send(ctx, e.composer.Completion(actionReport))
		report.NukeResult = &NukeResult{Status: "executed", Report: actionReport}
	}
}

// send delivers a notification best-effort and reports delivery success.
func (e *Engine) send(ctx context.Context, msg notify.Message) bool {
	if e.cfg.Notifier == nil {
		return false
	}
	if err := e.cfg.Notifier.Send(ctx, msg); err != nil {
		e.logger.Error("send notification failed",
			"notifier", e.cfg.Notifier.Name(),
			"title", msg.Title,
			"error", err,
		)
		return false
	}
	return true
}

func (e *Engine) fetchForecast(ctx context.Context) *float64 {
	f, err := e.cfg.Costs.Forecast(ctx)
	if err != nil {
		if !errors.Is(err, cloud.ErrNoForecast) {
			e.logger.Warn("fetch forecast failed", "error", err)
		}
		return nil
	}
	return &f
}

func (e *Engine) listInventory(ctx context.Context) []cloud.CategoryCount {
	if e.cfg.Inventory == nil {
		return nil
	}
	return e.cfg.Inventory.ListActive(ctx)
}

// recordRun persists the evaluation outcome, best-effort.
func (e *Engine) recordRun(ctx context.Context, report *Report) {
	if e.cfg.History == nil {
		return
	}

	run := &history.Run{
		Tier:          string(report.Tier),
		TotalCost:     report.CurrentCost,
		Currency:      report.Currency,
		Period:        report.Period,
		Forecast:      report.ForecastedCost,
		AlertSent:     report.AlertSent,
		NukeTriggered: report.NukeTriggered,
	}
	if report.NukeResult != nil {
		run.NukeStatus = report.NukeResult.Status
		if ar := report.NukeResult.Report; ar != nil {
			run.ActionsSucceeded = len(ar.Succeeded)
			run.ActionsFailed = len(ar.Failed)
		}
	}

	if err := e.cfg.History.RecordRun(ctx, run); err != nil {
		e.logger.Error("record run failed", "error", err)
	}
}
