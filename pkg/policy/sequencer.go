package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hellybrine/terraforms/pkg/cloud"
)

// Sequencer runs a cleanup plan against an executor, best-effort. Steps are
// independent: one failing never blocks the rest, and every attempt lands in
// the report either way. Failed steps are not retried.
type Sequencer struct {
	executor cloud.ActionExecutor
	plan     Plan
	logger   *slog.Logger
}

// NewSequencer creates a sequencer for the given plan.
func NewSequencer(executor cloud.ActionExecutor, plan Plan, logger *slog.Logger) *Sequencer {
	return &Sequencer{executor: executor, plan: plan, logger: logger}
}

// Run executes every plan step in order and returns the accumulated report.
func (s *Sequencer) Run(ctx context.Context) *ActionReport {
	report := &ActionReport{}

	for _, step := range s.plan.Steps {
		result, err := s.dispatch(ctx, step)
		if err != nil {
			s.logger.Error("cleanup step failed",
				"category", step.Category, "action", step.Action, "error", err)
			report.Attempted = append(report.Attempted, Attempt{Category: step.Category, OK: false})
			report.Failed = append(report.Failed, Failure{
				Category: step.Category,
				Error:    err.Error(),
			})
			continue
		}

		s.logger.Info("cleanup step done",
			"category", step.Category, "action", step.Action,
			"result", result.Description, "affected", result.Affected)
		report.Attempted = append(report.Attempted, Attempt{Category: step.Category, OK: true})
		report.Succeeded = append(report.Succeeded, result.Description)
	}

	return report
}

func (s *Sequencer) dispatch(ctx context.Context, step Step) (*cloud.ActionResult, error) {
	switch {
	case step.Category == cloud.CategoryCompute && step.Action == ActionPause:
		return s.executor.PauseCompute(ctx)
	case step.Category == cloud.CategoryGateway && step.Action == ActionDelete:
		return s.executor.DeleteGateways(ctx)
	case step.Category == cloud.CategoryDatabase && step.Action == ActionPause:
		return s.executor.PauseDatabases(ctx)
	}
	return nil, fmt.Errorf("unsupported step %s/%s", step.Category, step.Action)
}
