package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the engine on a cron schedule. Each firing is an
// independent evaluation with its own timeout.
type Scheduler struct {
	engine   *Engine
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	logger   *slog.Logger

	// OnReport, when set before Start, is called after each successful
	// scheduled evaluation.
	OnReport func(*Report)
}

// NewScheduler creates a scheduler for the given cron expression, e.g.
// "0 * * * *" for hourly evaluation.
func NewScheduler(engine *Engine, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		schedule: schedule,
		timeout:  2 * time.Minute,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled evaluation. It returns immediately; the cron runs
// in the background until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("evaluation schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule evaluation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("evaluation scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the cron. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("evaluation scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.engine.Run(runCtx)
	if err != nil {
		s.logger.Error("scheduled evaluation failed", "error", err)
		return
	}
	if s.OnReport != nil {
		s.OnReport(report)
	}
	s.logger.Info("scheduled evaluation done",
		"tier", report.Tier,
		"cost", report.CurrentCost,
		"alert_sent", report.AlertSent,
		"nuke_triggered", report.NukeTriggered,
	)
}
