package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

// DefaultSweepRule runs the retention sweep daily at 03:00 UTC
const DefaultSweepRule = "FREQ=DAILY;BYHOUR=3;BYMINUTE=0;BYSECOND=0"

// sweepEpoch anchors every sweep rule so occurrences do not move when the process restarts.
// It is a Monday at 00:00 UTC: a WEEKLY rule without BYDAY sweeps on Mondays, a MONTHLY rule
// without BYMONTHDAY on the 6th.
var sweepEpoch = time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)

// parseSweepRule parses an RFC 5545 recurrence rule anchored at sweepEpoch.
// Rules more frequent than hourly are rejected.
func parseSweepRule(rule string) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sweep rule: %w", err)
	}
	if r.OrigOptions.Freq > rrule.HOURLY {
		return nil, fmt.Errorf("sweep rule %q runs more often than hourly", rule)
	}

	r.DTStart(sweepEpoch)
	return r, nil
}

// NextSweepAt returns the first occurrence of the recurrence rule strictly after the given time,
// in UTC
func NextSweepAt(rule string, after time.Time) (time.Time, error) {
	r, err := parseSweepRule(rule)
	if err != nil {
		return time.Time{}, err
	}

	next := r.After(after.UTC(), false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("sweep rule %q has no occurrence after %s", rule, after.UTC().Format(time.RFC3339))
	}
	return next, nil
}

// RunSweepSchedule runs the retention sweep at every occurrence of the rule until ctx is
// cancelled. A failed sweep is logged and the schedule carries on; each run is bounded by
// timeout when it is positive.
func RunSweepSchedule(
	ctx context.Context,
	store db.RetentionStore,
	logger *zap.Logger,
	rule string,
	opts SweepOptions,
	timeout time.Duration,
) error {
	for {
		next, err := NextSweepAt(rule, time.Now())
		if err != nil {
			return err
		}

		logger.Info("Next retention sweep scheduled", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Retention sweep schedule stopped")
			return ctx.Err()
		case <-timer.C:
		}

		sweepCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			sweepCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		result, err := RunRetentionSweep(sweepCtx, store, logger, time.Now(), opts)
		cancel()
		if err != nil {
			logger.Error("Scheduled retention sweep failed", zap.Error(err))
			continue
		}

		logger.Info("Scheduled retention sweep completed",
			zap.Int64("deleted", result.DeletedScheduleCount),
			zap.Int("dependent_failures", len(result.DependentFailures)))
	}
}
