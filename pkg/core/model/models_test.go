package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedWithoutRecipient(t *testing.T) {
	feed := Feed{
		{ID: "admin-a", Kind: KindAdminMessage, RecipientID: "n1"},
		{ID: "admin-b", Kind: KindAdminMessage, RecipientID: "n2"},
		{ID: "sub-r1", Kind: KindSubstitutionRequest},
		{ID: "confirm-s1", Kind: KindPendingConfirmation, ScheduleID: "s1"},
	}

	got := feed.WithoutRecipient("n1")

	ids := make([]string, len(got))
	for i, n := range got {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"admin-b", "sub-r1", "confirm-s1"}, ids)
	assert.Len(t, feed, 4, "original feed is left untouched")
	assert.Len(t, feed.WithoutRecipient("unknown"), 4)
}

func TestFeedWithoutRecipient_IgnoresNonAdminItems(t *testing.T) {
	// only admin items carry a recipient, but a stray one on another kind must not be dropped
	feed := Feed{{ID: "upcoming-s1", Kind: KindUpcomingSchedule, RecipientID: "n1"}}

	assert.Len(t, feed.WithoutRecipient("n1"), 1)
}
