// Package scheduler drives the desk's periodic work: simulator
// ticks, chart refreshes, and pending-order sweeps.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"TradeDesk/internal/dashboard"
	"TradeDesk/internal/engine"
	"TradeDesk/internal/sim"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Engine    *engine.Engine
	Simulator *sim.Simulator // nil when the simulator is disabled
	Refresher *dashboard.Refresher
	Ctx       context.Context

	chartTicker string
	chartDays   int
}

// NewScheduler creates a new Scheduler. simulator may be nil.
func NewScheduler(ctx context.Context, eng *engine.Engine, simulator *sim.Simulator,
	refresher *dashboard.Refresher, chartTicker string, chartDays int) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Engine:      eng,
		Simulator:   simulator,
		Refresher:   refresher,
		Ctx:         ctx,
		chartTicker: chartTicker,
		chartDays:   chartDays,
	}
}

// RegisterAll registers the simulator, chart refresh, and sweep
// tasks.
func (s *Scheduler) RegisterAll(simCron, chartCron, sweepCron string) error {
	if s.Simulator != nil {
		if _, err := s.Cron.AddFunc(simCron, s.simTask); err != nil {
			return fmt.Errorf("register sim task: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(chartCron, s.chartTask); err != nil {
		return fmt.Errorf("register chart task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunChartNow refreshes the dashboard chart immediately (startup
// warm-up).
func (s *Scheduler) RunChartNow() {
	s.chartTask()
}

func (s *Scheduler) simTask() {
	s.Simulator.Tick()
}

func (s *Scheduler) chartTask() {
	to := time.Now()
	from := to.AddDate(0, 0, -s.chartDays)
	if err := s.Refresher.Refresh(s.Ctx, s.chartTicker, from, to); err != nil {
		log.Printf("[WARN] chart refresh: %v", err)
	}
}

func (s *Scheduler) sweepTask() {
	s.Engine.SweepAll()
}
