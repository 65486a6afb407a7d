package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

// CreateSubstitutionRequest records that requestingMemberID wants substituteMemberID to cover
// them on scheduleID. The requester must be assigned to the schedule and the two members
// must differ. Returns the new request ID.
func CreateSubstitutionRequest(
	ctx context.Context,
	store db.SubstitutionStore,
	logger *zap.Logger,
	requestingMemberID string,
	substituteMemberID string,
	scheduleID string,
	now time.Time,
) (string, error) {
	if requestingMemberID == "" || substituteMemberID == "" || scheduleID == "" {
		return "", fmt.Errorf("requesting member, substitute member and schedule are required: %w", ErrInvalidRequest)
	}
	if requestingMemberID == substituteMemberID {
		return "", fmt.Errorf("member %s cannot substitute themselves: %w", requestingMemberID, ErrInvalidRequest)
	}

	logger.Debug("Checking schedule assignment",
		zap.String("member_id", requestingMemberID),
		zap.String("schedule_id", scheduleID))

	assigned, err := store.IsScheduleMember(ctx, requestingMemberID, scheduleID)
	if err != nil {
		return "", storeError("check schedule assignment", err)
	}
	if !assigned {
		return "", fmt.Errorf("member %s is not assigned to schedule %s: %w", requestingMemberID, scheduleID, ErrInvalidRequest)
	}

	request := &db.SubstitutionRequest{
		ID:                 uuid.New().String(),
		RequestingMemberID: requestingMemberID,
		SubstituteMemberID: substituteMemberID,
		ScheduleID:         scheduleID,
		Status:             db.SubstitutionPending,
		CreatedAt:          now.UTC(),
		UpdatedAt:          now.UTC(),
	}

	if err := store.InsertSubstitutionRequest(ctx, request); err != nil {
		return "", storeError("insert substitution request", err)
	}

	logger.Info("Substitution request created",
		zap.String("request_id", request.ID),
		zap.String("requesting_member_id", requestingMemberID),
		zap.String("substitute_member_id", substituteMemberID),
		zap.String("schedule_id", scheduleID))

	return request.ID, nil
}

// RequestsAwaitingResponse returns the pending requests in which the member is the substitute
func RequestsAwaitingResponse(
	ctx context.Context,
	store db.SubstitutionStore,
	logger *zap.Logger,
	substituteMemberID string,
) ([]db.SubstitutionRequestDetail, error) {
	requests, err := store.GetPendingSubstitutionRequests(ctx, substituteMemberID)
	if err != nil {
		return nil, storeError("fetch pending substitution requests", err)
	}

	logger.Debug("Found substitution requests awaiting response",
		zap.String("substitute_member_id", substituteMemberID),
		zap.Int("count", len(requests)))

	return requests, nil
}

// ResolveSubstitutionRequest accepts or rejects a pending request. Accepted and rejected are
// terminal; resolving any non-pending request fails with ErrInvalidTransition.
// Reassigning the roster after acceptance is left to the caller (see ReassignScheduleMember).
func ResolveSubstitutionRequest(
	ctx context.Context,
	store db.SubstitutionStore,
	logger *zap.Logger,
	requestID string,
	accept bool,
	now time.Time,
) (*db.SubstitutionRequest, error) {
	request, err := store.GetSubstitutionRequest(ctx, requestID)
	if err != nil {
		return nil, storeError("fetch substitution request "+requestID, err)
	}

	if request.Status != db.SubstitutionPending {
		return nil, fmt.Errorf("substitution request %s is %s, not pending: %w", requestID, request.Status, ErrInvalidTransition)
	}

	target := db.SubstitutionRejected
	if accept {
		target = db.SubstitutionAccepted
	}

	// The update only applies while the row is still pending, so a concurrent
	// resolve that got there first turns this one into an invalid transition.
	updated, err := store.UpdateSubstitutionStatus(ctx, requestID, db.SubstitutionPending, target, now.UTC())
	if err != nil {
		return nil, storeError("update substitution request "+requestID, err)
	}
	if !updated {
		return nil, fmt.Errorf("substitution request %s was resolved concurrently: %w", requestID, ErrInvalidTransition)
	}

	request.Status = target
	request.UpdatedAt = now.UTC()

	logger.Info("Substitution request resolved",
		zap.String("request_id", requestID),
		zap.String("status", string(target)))

	return request, nil
}

// ReassignScheduleMember moves the requester's assignment on the schedule to the substitute
// of an accepted request
func ReassignScheduleMember(
	ctx context.Context,
	store db.ReassignmentStore,
	logger *zap.Logger,
	requestID string,
) error {
	request, err := store.GetSubstitutionRequest(ctx, requestID)
	if err != nil {
		return storeError("fetch substitution request "+requestID, err)
	}
	if request.Status != db.SubstitutionAccepted {
		return fmt.Errorf("substitution request %s is %s, only accepted requests can be reassigned: %w",
			requestID, request.Status, ErrInvalidTransition)
	}

	moved, err := store.ReassignScheduleMember(ctx, request.ScheduleID, request.RequestingMemberID, request.SubstituteMemberID)
	if err != nil {
		return storeError("reassign schedule member", err)
	}
	if !moved {
		return fmt.Errorf("member %s is no longer assigned to schedule %s: %w",
			request.RequestingMemberID, request.ScheduleID, ErrNotFound)
	}

	logger.Info("Schedule member reassigned",
		zap.String("request_id", requestID),
		zap.String("schedule_id", request.ScheduleID),
		zap.String("from_member_id", request.RequestingMemberID),
		zap.String("to_member_id", request.SubstituteMemberID))

	return nil
}
