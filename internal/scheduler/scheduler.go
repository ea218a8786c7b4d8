// Package scheduler drives the screener on cron schedules. The
// screener itself never decides when to run.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PairSentinel/internal/screener"
)

// Scheduler owns the cron runner and the job bodies.
type Scheduler struct {
	cron     *cron.Cron
	screener *screener.Screener
	ctx      context.Context
	log      zerolog.Logger

	// cycleRunning skips a tick when the previous cycle is still going.
	cycleRunning atomic.Bool
}

// New builds a Scheduler bound to the given root context; jobs stop
// doing work once it is canceled.
func New(ctx context.Context, sc *screener.Screener, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		screener: sc,
		ctx:      ctx,
		log:      log,
	}
}

// Register wires the analysis cycle, optional discovery, and the daily
// summary. Empty discoveryCron disables discovery.
func (s *Scheduler) Register(analysisCron, discoveryCron, summaryCron string) error {
	if _, err := s.cron.AddFunc(analysisCron, s.analysisJob); err != nil {
		return fmt.Errorf("register analysis job: %w", err)
	}
	if discoveryCron != "" {
		if _, err := s.cron.AddFunc(discoveryCron, s.discoveryJob); err != nil {
			return fmt.Errorf("register discovery job: %w", err)
		}
	}
	if _, err := s.cron.AddFunc(summaryCron, s.summaryJob); err != nil {
		return fmt.Errorf("register summary job: %w", err)
	}
	return nil
}

// Start begins dispatching jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron runner; running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunCycleNow executes one analysis cycle immediately, for run_on_start.
func (s *Scheduler) RunCycleNow() { s.analysisJob() }

func (s *Scheduler) analysisJob() {
	if s.ctx.Err() != nil {
		return
	}
	if !s.cycleRunning.CompareAndSwap(false, true) {
		s.log.Warn().Msg("previous cycle still running, tick skipped")
		return
	}
	defer s.cycleRunning.Store(false)

	if err := s.screener.RunCycle(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("analysis cycle failed")
	}
}

func (s *Scheduler) discoveryJob() {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.screener.DiscoverPairs(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("pair discovery failed")
	}
}

func (s *Scheduler) summaryJob() {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.screener.DailySummary(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("daily summary failed")
	}
}
