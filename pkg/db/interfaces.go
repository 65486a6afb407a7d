package db

import (
	"context"
	"time"
)

// AvailabilityStore defines the reads needed to work out a member's upcoming confirmations
type AvailabilityStore interface {
	GetMemberTeamIDs(ctx context.Context, memberID string) ([]string, error)
	// GetTeamSchedulesBetween returns schedules of the given teams dated in [from, to], ordered by date
	GetTeamSchedulesBetween(ctx context.Context, teamIDs []string, from, to time.Time) ([]Schedule, error)
	GetMemberAvailability(ctx context.Context, memberID string, scheduleIDs []string) ([]MemberAvailability, error)
}

// AvailabilityWriter defines the write side of availability confirmation
type AvailabilityWriter interface {
	UpsertMemberAvailability(ctx context.Context, availability *MemberAvailability) error
}

// SubstitutionStore defines the database operations of the substitution workflow
type SubstitutionStore interface {
	IsScheduleMember(ctx context.Context, memberID, scheduleID string) (bool, error)
	InsertSubstitutionRequest(ctx context.Context, request *SubstitutionRequest) error
	GetSubstitutionRequest(ctx context.Context, requestID string) (*SubstitutionRequest, error)
	// UpdateSubstitutionStatus moves a request from one status to another.
	// It reports false when the request was no longer in the from status.
	UpdateSubstitutionStatus(ctx context.Context, requestID string, from, to SubstitutionStatus, at time.Time) (bool, error)
	GetPendingSubstitutionRequests(ctx context.Context, substituteMemberID string) ([]SubstitutionRequestDetail, error)
}

// RosterStore reassigns schedule members
type RosterStore interface {
	ReassignScheduleMember(ctx context.Context, scheduleID, fromMemberID, toMemberID string) (bool, error)
}

// ReassignmentStore reads an accepted request and moves its assignment
type ReassignmentStore interface {
	SubstitutionStore
	RosterStore
}

// BroadcastStore defines the database operations on admin broadcasts
type BroadcastStore interface {
	GetUnreadBroadcasts(ctx context.Context, memberID string) ([]BroadcastDelivery, error)
	GetNotificationRecipient(ctx context.Context, recipientID string) (*NotificationRecipient, error)
	// MarkRecipientRead sets read_at if it is still null and reports whether a row changed
	MarkRecipientRead(ctx context.Context, recipientID string, at time.Time) (bool, error)
	InsertBroadcast(ctx context.Context, notification *AdminNotification, recipients []NotificationRecipient) error
	DeleteBroadcast(ctx context.Context, notificationID string) (bool, error)
}

// NotificationFeedStore is everything the notification aggregator reads
type NotificationFeedStore interface {
	AvailabilityStore
	GetUnreadBroadcasts(ctx context.Context, memberID string) ([]BroadcastDelivery, error)
	GetPendingSubstitutionRequests(ctx context.Context, substituteMemberID string) ([]SubstitutionRequestDetail, error)
}

// RetentionStore defines the deletes run by the retention sweep, keyed by schedule ids
type RetentionStore interface {
	GetScheduleIDsBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteScheduleMembers(ctx context.Context, scheduleIDs []string) (int64, error)
	DeleteMemberAvailability(ctx context.Context, scheduleIDs []string) (int64, error)
	DeleteSubstitutionRequests(ctx context.Context, scheduleIDs []string) (int64, error)
	DeleteSchedules(ctx context.Context, scheduleIDs []string) (int64, error)
}

// TransactionalRetentionStore is a RetentionStore able to run several deletes atomically
type TransactionalRetentionStore interface {
	RetentionStore
	WithinTransaction(ctx context.Context, fn func(tx RetentionStore) error) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	NotificationFeedStore
	AvailabilityWriter
	SubstitutionStore
	RosterStore
	BroadcastStore
	TransactionalRetentionStore
}
