package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetScheduleIDsBefore returns the ids of schedules dated strictly before cutoff
func (d *DB) GetScheduleIDsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id FROM schedules WHERE schedule_date < $1::date
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query old schedules: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan old schedules: %w", err)
	}
	return ids, nil
}

// DeleteScheduleMembers deletes the assignments of the given schedules
func (d *DB) DeleteScheduleMembers(ctx context.Context, scheduleIDs []string) (int64, error) {
	return d.deleteBySchedule(ctx, "schedule_members", "schedule_id", scheduleIDs)
}

// DeleteMemberAvailability deletes availability rows of the given schedules
func (d *DB) DeleteMemberAvailability(ctx context.Context, scheduleIDs []string) (int64, error) {
	return d.deleteBySchedule(ctx, "member_availability", "schedule_id", scheduleIDs)
}

// DeleteSubstitutionRequests deletes substitution requests of the given schedules
func (d *DB) DeleteSubstitutionRequests(ctx context.Context, scheduleIDs []string) (int64, error) {
	return d.deleteBySchedule(ctx, "substitution_requests", "schedule_id", scheduleIDs)
}

// DeleteSchedules deletes the schedules themselves
func (d *DB) DeleteSchedules(ctx context.Context, scheduleIDs []string) (int64, error) {
	return d.deleteBySchedule(ctx, "schedules", "id", scheduleIDs)
}

// deleteBySchedule runs a batch delete keyed by schedule id. table and column are constants
// from this file, never user input.
func (d *DB) deleteBySchedule(ctx context.Context, table, column string, scheduleIDs []string) (int64, error) {
	if len(scheduleIDs) == 0 {
		return 0, nil
	}

	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`,
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{column}.Sanitize())
	tag, err := d.q.Exec(ctx, sql, scheduleIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}
