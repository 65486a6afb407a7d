package model

import "time"

// NotificationKind discriminates the sources merged into a member's feed
type NotificationKind string

const (
	KindAdminMessage        NotificationKind = "admin_message"
	KindSubstitutionRequest NotificationKind = "substitution_request"
	KindPendingConfirmation NotificationKind = "pending_confirmation"
	KindUpcomingSchedule    NotificationKind = "upcoming_schedule"
)

// Notification is a single feed item. All kinds share the same shape;
// ScheduleID is set for schedule-related kinds and RecipientID only for admin messages.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        *time.Time       `json:"date,omitempty"`
	ScheduleID  string           `json:"scheduleId,omitempty"`
	RecipientID string           `json:"recipientId,omitempty"`
}

// IsAdmin reports whether the item belongs to the admin bucket of the feed
func (n Notification) IsAdmin() bool {
	return n.Kind == KindAdminMessage
}

// Feed is an ordered list of notifications for one member
type Feed []Notification

// WithoutRecipient returns the feed minus the admin message delivered through recipientID
func (f Feed) WithoutRecipient(recipientID string) Feed {
	out := make(Feed, 0, len(f))
	for _, n := range f {
		if n.IsAdmin() && n.RecipientID == recipientID {
			continue
		}
		out = append(out, n)
	}
	return out
}
