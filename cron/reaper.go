package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reaperLockKey = "slotwise:reaper:lock"

// Reaper returns expired holds to FREE so capacity is not lost when an
// orchestrator dies between hold and confirm. It has no special privilege:
// each release is the same conditional update every caller uses, so losing a
// race against a live confirm is safe and expected.
type Reaper struct {
	Repo      slotRepo.SlotRepository
	Logger    *zap.Logger
	Interval  time.Duration
	BatchSize int64
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time

	sched *cron.Cron
}

func (r *Reaper) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// SweepOnce runs a single reap pass and returns how many holds were freed.
// The scan and the releases are individually atomic, not atomic as a batch.
func (r *Reaper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := r.Repo.FindExpiredHeld(ctx, r.now(), r.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("reaper scan failed: %w", err)
	}

	freed := 0
	for _, slot := range expired {
		if _, err := r.Repo.Release(ctx, slot.ID); err != nil {
			var conflict *slotRepo.ConflictError
			// A conflict means the slot was confirmed or released a
			// moment before we reached it; not an error.
			if errors.As(err, &conflict) || errors.Is(err, slotRepo.ErrSlotNotFound) {
				r.Logger.Debug("reaper lost race for slot",
					zap.String("slotId", slot.ID), zap.Error(err))
				continue
			}
			r.Logger.Warn("reaper failed to release slot",
				zap.String("slotId", slot.ID), zap.Error(err))
			continue
		}
		freed++
	}

	if freed > 0 {
		r.Logger.Info("reaped expired holds", zap.Int("freed", freed))
	}
	return freed, nil
}

// Start schedules the sweep on a fixed interval. A best-effort Redis lock
// keeps concurrent instances from sweeping at the same time; since every
// release is conditional anyway, a lost lock only costs duplicate work.
func (r *Reaper) Start() {
	r.sched = cron.New()
	spec := fmt.Sprintf("@every %ds", int(r.Interval.Seconds()))
	_, err := r.sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.Interval)
		defer cancel()

		ok, err := utils.AcquireLock(ctx, reaperLockKey, r.Interval)
		if err != nil {
			r.Logger.Warn("reaper lock unavailable, sweeping anyway", zap.Error(err))
		} else if !ok {
			return
		} else {
			defer utils.ReleaseLock(ctx, reaperLockKey)
		}

		if _, err := r.SweepOnce(ctx); err != nil {
			r.Logger.Error("reaper sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		r.Logger.Fatal("failed to schedule reaper", zap.Error(err))
	}
	r.sched.Start()
	r.Logger.Info("hold expiry reaper started", zap.Duration("interval", r.Interval))
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.sched != nil {
		<-r.sched.Stop().Done()
	}
}
