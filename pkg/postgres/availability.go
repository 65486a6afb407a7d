package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/team-rota/pkg/db"
)

// GetMemberTeamIDs returns the ids of every team the member belongs to
func (d *DB) GetMemberTeamIDs(ctx context.Context, memberID string) ([]string, error) {
	rows, err := d.q.Query(ctx, `
		SELECT team_id FROM team_members WHERE member_id = $1
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member teams: %w", err)
	}

	teamIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan member teams: %w", err)
	}
	return teamIDs, nil
}

// GetTeamSchedulesBetween returns schedules of the given teams dated in [from, to], ordered by date
func (d *DB) GetTeamSchedulesBetween(ctx context.Context, teamIDs []string, from, to time.Time) ([]db.Schedule, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	rows, err := d.q.Query(ctx, `
		SELECT id, title, notes, schedule_date, schedule_type, team_id
		FROM schedules
		WHERE team_id = ANY($1) AND schedule_date BETWEEN $2::date AND $3::date
		ORDER BY schedule_date, id
	`, teamIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query team schedules: %w", err)
	}
	defer rows.Close()

	var schedules []db.Schedule
	for rows.Next() {
		var s db.Schedule
		var notes, scheduleType, teamID *string
		if err := rows.Scan(&s.ID, &s.Title, &notes, &s.ScheduleDate, &scheduleType, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		if notes != nil {
			s.Notes = *notes
		}
		if scheduleType != nil {
			s.ScheduleType = db.ScheduleType(*scheduleType)
		}
		if teamID != nil {
			s.TeamID = *teamID
		}
		s.ScheduleDate = s.ScheduleDate.UTC()
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

// GetMemberAvailability returns the member's availability rows for the given schedules
func (d *DB) GetMemberAvailability(ctx context.Context, memberID string, scheduleIDs []string) ([]db.MemberAvailability, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	rows, err := d.q.Query(ctx, `
		SELECT id, member_id, schedule_id, available, confirmed, updated_at
		FROM member_availability
		WHERE member_id = $1 AND schedule_id = ANY($2)
	`, memberID, scheduleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query member availability: %w", err)
	}
	defer rows.Close()

	var availability []db.MemberAvailability
	for rows.Next() {
		var a db.MemberAvailability
		if err := rows.Scan(&a.ID, &a.MemberID, &a.ScheduleID, &a.Available, &a.Confirmed, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member availability: %w", err)
		}
		availability = append(availability, a)
	}

	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error iterating member availability: %w", err)
	}

	return availability, nil
}

// UpsertMemberAvailability creates or updates the single availability row for the
// (member, schedule) pair
func (d *DB) UpsertMemberAvailability(ctx context.Context, availability *db.MemberAvailability) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO member_availability (id, member_id, schedule_id, available, confirmed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id, schedule_id) DO UPDATE
		SET available = EXCLUDED.available,
			confirmed = EXCLUDED.confirmed,
			updated_at = EXCLUDED.updated_at
	`, availability.ID, availability.MemberID, availability.ScheduleID,
		availability.Available, availability.Confirmed, availability.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert member availability: %w", invalidReference(err))
	}
	return nil
}
