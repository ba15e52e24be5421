/*
scheduler.go - Automated monthly ledger extension

PURPOSE:
  Extends every contract's ledger to the current month on a cron
  schedule, so the history stays complete without anyone triggering
  POST /api/runs by hand.

DESIGN:
  - robfig/cron drives the schedule (default: 06:00 on the 1st)
  - Each tick is a full Manager.Run to the current month; re-running
    an up-to-date ledger appends nothing, so overlapping schedules
    are harmless
  - Run outcomes are logged, never fatal

USAGE:
  scheduler, err := NewRunScheduler("0 6 1 * *", store, manager, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerRun endpoint (manual extension)
  - ledger/manager.go: Run semantics
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/store/sqlite"
)

// RunScheduler extends the ledgers to the current month on a schedule.
type RunScheduler struct {
	Store   *sqlite.Store
	Manager *ledger.Manager
	Log     *logrus.Logger

	cron *cron.Cron
}

// NewRunScheduler creates a scheduler for the given cron expression.
func NewRunScheduler(schedule string, st *sqlite.Store, manager *ledger.Manager, log *logrus.Logger) (*RunScheduler, error) {
	if log == nil {
		log = logrus.New()
	}
	rs := &RunScheduler{
		Store:   st,
		Manager: manager,
		Log:     log,
		cron:    cron.New(),
	}
	if _, err := rs.cron.AddFunc(schedule, rs.tick); err != nil {
		return nil, fmt.Errorf("invalid run schedule %q: %w", schedule, err)
	}
	return rs, nil
}

// Start begins the scheduler.
func (rs *RunScheduler) Start() {
	rs.cron.Start()
	rs.Log.Info("run scheduler started")
}

// Stop stops the scheduler and waits for a running tick to finish.
func (rs *RunScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
	rs.Log.Info("run scheduler stopped")
}

func (rs *RunScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := rs.Store.Contracts(ctx)
	if err != nil {
		rs.Log.WithError(err).Error("scheduled run aborted: cannot list contracts")
		return
	}

	until := contract.CurrentMonth()
	summary := rs.Manager.Run(ctx, records, until)
	rs.Log.WithFields(logrus.Fields{
		"until":     until.String(),
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"appended":  summary.Appended,
		"warnings":  len(summary.Warnings),
	}).Info("scheduled run finished")
}
