package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

// DefaultRetentionDays is how old a schedule must be before the sweep deletes it
const DefaultRetentionDays = 30

// SweepOptions configures a retention sweep
type SweepOptions struct {
	RetentionDays int
	// Transactional runs the dependent deletes and the schedule delete in one transaction
	// when the store supports it
	Transactional bool
}

// DefaultSweepOptions returns the 30 day, non-transactional sweep
func DefaultSweepOptions() SweepOptions {
	return SweepOptions{RetentionDays: DefaultRetentionDays}
}

// SweepResult reports what a retention sweep removed
type SweepResult struct {
	Cutoff               time.Time
	ScheduleIDs          []string
	DeletedScheduleCount int64
	// DependentFailures lists the dependent tables whose delete failed and was skipped
	DependentFailures []string
}

type dependentDelete struct {
	table string
	run   func(ctx context.Context, scheduleIDs []string) (int64, error)
}

// dependentDeletes lists the tables referencing schedules, in the order they are cleared
func dependentDeletes(store db.RetentionStore) []dependentDelete {
	return []dependentDelete{
		{table: "schedule_members", run: store.DeleteScheduleMembers},
		{table: "member_availability", run: store.DeleteMemberAvailability},
		{table: "substitution_requests", run: store.DeleteSubstitutionRequests},
	}
}

// RetentionCutoff returns the first date that is kept: now's date minus retentionDays.
// Schedules dated strictly before it are eligible for deletion.
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	return civilDate(now).AddDate(0, 0, -retentionDays)
}

// RunRetentionSweep permanently deletes schedules dated before the retention cutoff.
//
// Dependent rows (schedule members, availability, substitution requests) are deleted first,
// then the schedules. A failed dependent delete is logged and skipped; a failed schedule
// delete fails the sweep. Every step keys off the schedule IDs that still exist, so the sweep
// can simply be re-run after a partial or abandoned run.
func RunRetentionSweep(
	ctx context.Context,
	store db.RetentionStore,
	logger *zap.Logger,
	now time.Time,
	opts SweepOptions,
) (*SweepResult, error) {
	if opts.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d: %w", opts.RetentionDays, ErrInvalidRequest)
	}

	cutoff := RetentionCutoff(now, opts.RetentionDays)
	result := &SweepResult{
		Cutoff:            cutoff,
		ScheduleIDs:       []string{},
		DependentFailures: []string{},
	}

	logger.Info("Cleaning up schedules older than cutoff", zap.String("cutoff", cutoff.Format(dateLayout)))

	// Step 1: find the schedules to delete
	scheduleIDs, err := store.GetScheduleIDsBefore(ctx, cutoff)
	if err != nil {
		return nil, storeError("fetch old schedules", err)
	}
	if len(scheduleIDs) == 0 {
		logger.Info("No old schedules found to delete")
		return result, nil
	}
	result.ScheduleIDs = scheduleIDs

	logger.Info("Found old schedules to delete", zap.Int("count", len(scheduleIDs)))

	if opts.Transactional {
		if txStore, ok := store.(db.TransactionalRetentionStore); ok {
			return sweepInTransaction(ctx, txStore, logger, result)
		}
		logger.Warn("Store does not support transactions, sweeping without one")
	}

	// Steps 2-4: dependent rows, best effort
	for _, step := range dependentDeletes(store) {
		n, err := step.run(ctx, scheduleIDs)
		if err != nil {
			logger.Error("Failed to delete dependent rows, continuing",
				zap.String("table", step.table),
				zap.Error(err))
			result.DependentFailures = append(result.DependentFailures, step.table)
			continue
		}
		logger.Debug("Deleted dependent rows", zap.String("table", step.table), zap.Int64("rows", n))
	}

	// Step 5: the schedules themselves
	deleted, err := store.DeleteSchedules(ctx, scheduleIDs)
	if err != nil {
		logger.Error("Failed to delete schedules", zap.Error(err))
		return nil, storeError("delete schedules", err)
	}
	result.DeletedScheduleCount = deleted

	logger.Info("Old schedules cleaned up",
		zap.Int64("deleted", deleted),
		zap.Strings("dependent_failures", result.DependentFailures))

	return result, nil
}

// sweepInTransaction runs steps 2-5 atomically. Any failure rolls back all of them.
func sweepInTransaction(
	ctx context.Context,
	store db.TransactionalRetentionStore,
	logger *zap.Logger,
	result *SweepResult,
) (*SweepResult, error) {
	err := store.WithinTransaction(ctx, func(tx db.RetentionStore) error {
		for _, step := range dependentDeletes(tx) {
			n, err := step.run(ctx, result.ScheduleIDs)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.table, err)
			}
			logger.Debug("Deleted dependent rows", zap.String("table", step.table), zap.Int64("rows", n))
		}

		deleted, err := tx.DeleteSchedules(ctx, result.ScheduleIDs)
		if err != nil {
			return fmt.Errorf("failed to delete schedules: %w", err)
		}
		result.DeletedScheduleCount = deleted
		return nil
	})
	if err != nil {
		logger.Error("Retention sweep transaction rolled back", zap.Error(err))
		return nil, storeError("run retention sweep transaction", err)
	}

	logger.Info("Old schedules cleaned up in transaction", zap.Int64("deleted", result.DeletedScheduleCount))
	return result, nil
}
