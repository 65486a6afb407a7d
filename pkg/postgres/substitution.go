package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/team-rota/pkg/db"
)

// IsScheduleMember reports whether the member is assigned to the schedule
func (d *DB) IsScheduleMember(ctx context.Context, memberID, scheduleID string) (bool, error) {
	var exists bool
	err := d.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM schedule_members WHERE member_id = $1 AND schedule_id = $2)
	`, memberID, scheduleID).Scan(&exists)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check schedule membership: %w", err)
	}
	return exists, nil
}

// InsertSubstitutionRequest inserts a new substitution request record
func (d *DB) InsertSubstitutionRequest(ctx context.Context, request *db.SubstitutionRequest) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO substitution_requests
			(id, requesting_member_id, substitute_member_id, schedule_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, request.ID, request.RequestingMemberID, request.SubstituteMemberID, request.ScheduleID,
		string(request.Status), request.CreatedAt.UTC(), request.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert substitution request: %w", invalidReference(err))
	}
	return nil
}

// GetSubstitutionRequest retrieves a substitution request by id.
// Returns db.ErrNotFound if it does not exist.
func (d *DB) GetSubstitutionRequest(ctx context.Context, requestID string) (*db.SubstitutionRequest, error) {
	var r db.SubstitutionRequest
	var status string
	err := d.q.QueryRow(ctx, `
		SELECT id, requesting_member_id, substitute_member_id, schedule_id, status, created_at, updated_at
		FROM substitution_requests
		WHERE id = $1
	`, requestID).Scan(&r.ID, &r.RequestingMemberID, &r.SubstituteMemberID, &r.ScheduleID, &status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get substitution request: %w", notFound(err))
	}
	r.Status = db.SubstitutionStatus(status)
	return &r, nil
}

// UpdateSubstitutionStatus moves a request from one status to another. The WHERE clause
// carries the expected current status so two concurrent resolves cannot both succeed.
func (d *DB) UpdateSubstitutionStatus(ctx context.Context, requestID string, from, to db.SubstitutionStatus, at time.Time) (bool, error) {
	tag, err := d.q.Exec(ctx, `
		UPDATE substitution_requests
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, requestID, string(from), string(to), at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to update substitution request status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetPendingSubstitutionRequests returns the pending requests where the member is the substitute,
// joined with the schedule and the requester
func (d *DB) GetPendingSubstitutionRequests(ctx context.Context, substituteMemberID string) ([]db.SubstitutionRequestDetail, error) {
	rows, err := d.q.Query(ctx, `
		SELECT sr.id, sr.schedule_id, s.title, s.schedule_date, sr.requesting_member_id, m.name
		FROM substitution_requests sr
		LEFT JOIN schedules s ON s.id = sr.schedule_id
		LEFT JOIN members m ON m.id = sr.requesting_member_id
		WHERE sr.substitute_member_id = $1 AND sr.status = 'pending'
		ORDER BY sr.created_at DESC
	`, substituteMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending substitution requests: %w", err)
	}
	defer rows.Close()

	var requests []db.SubstitutionRequestDetail
	for rows.Next() {
		var r db.SubstitutionRequestDetail
		var title, name *string
		var scheduleDate *time.Time
		if err := rows.Scan(&r.ID, &r.ScheduleID, &title, &scheduleDate, &r.RequestingMemberID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan substitution request: %w", err)
		}
		if title != nil {
			r.ScheduleTitle = *title
		}
		if scheduleDate != nil {
			utc := scheduleDate.UTC()
			r.ScheduleDate = &utc
		}
		if name != nil {
			r.RequestingMemberName = *name
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error iterating substitution requests: %w", err)
	}

	return requests, nil
}

// ReassignScheduleMember moves a member's assignment on a schedule to another member.
// Reports false when the from member was not assigned.
func (d *DB) ReassignScheduleMember(ctx context.Context, scheduleID, fromMemberID, toMemberID string) (bool, error) {
	tag, err := d.q.Exec(ctx, `
		UPDATE schedule_members
		SET member_id = $3
		WHERE id = (
			SELECT id FROM schedule_members
			WHERE schedule_id = $1 AND member_id = $2
			LIMIT 1
		)
	`, scheduleID, fromMemberID, toMemberID)
	if err != nil {
		return false, fmt.Errorf("failed to reassign schedule member: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
