package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/team-rota/pkg/core/model"
	"github.com/jakechorley/team-rota/pkg/db"
)

// Feed source names, used in logs and FeedResult.FailedSources
const (
	SourceAdminMessages        = "admin_messages"
	SourceSubstitutionRequests = "substitution_requests"
	SourcePendingConfirmations = "pending_confirmations"
	SourceUpcomingSchedules    = "upcoming_schedules"
)

// FeedOptions controls the discovery and urgency windows of the feed
type FeedOptions struct {
	HorizonDays int
	UrgencyDays int
}

// DefaultFeedOptions returns a 7 day discovery window and a 3 day urgency window
func DefaultFeedOptions() FeedOptions {
	return FeedOptions{
		HorizonDays: DefaultHorizonDays,
		UrgencyDays: DefaultUrgencyDays,
	}
}

// FeedResult is a member's ranked feed plus the sources that could not be read
type FeedResult struct {
	Items         model.Feed
	FailedSources []string
}

type feedSource struct {
	name  string
	fetch func(ctx context.Context) ([]model.Notification, error)
}

// GetNotificationFeed merges unread broadcasts, pending substitution requests, pending
// confirmations and near-term confirmed schedules into one ranked feed.
// Sources are read concurrently and independently: a source that fails contributes nothing
// and is listed in FailedSources, the others still make up the feed.
// Nothing is marked read.
func GetNotificationFeed(
	ctx context.Context,
	store db.NotificationFeedStore,
	logger *zap.Logger,
	memberID string,
	now time.Time,
	opts FeedOptions,
) (*FeedResult, error) {
	if memberID == "" {
		return nil, fmt.Errorf("member is required: %w", ErrInvalidRequest)
	}

	logger.Debug("Building notification feed",
		zap.String("member_id", memberID),
		zap.Int("horizon_days", opts.HorizonDays),
		zap.Int("urgency_days", opts.UrgencyDays))

	sources := []feedSource{
		{
			name: SourceAdminMessages,
			fetch: func(ctx context.Context) ([]model.Notification, error) {
				return adminMessageItems(ctx, store, memberID)
			},
		},
		{
			name: SourceSubstitutionRequests,
			fetch: func(ctx context.Context) ([]model.Notification, error) {
				return substitutionRequestItems(ctx, store, logger, memberID)
			},
		},
		{
			name: SourcePendingConfirmations,
			fetch: func(ctx context.Context) ([]model.Notification, error) {
				return pendingConfirmationItems(ctx, store, logger, memberID, opts, now)
			},
		},
		{
			name: SourceUpcomingSchedules,
			fetch: func(ctx context.Context) ([]model.Notification, error) {
				return upcomingScheduleItems(ctx, store, logger, memberID, opts, now)
			},
		},
	}

	type sourceResult struct {
		items []model.Notification
		err   error
	}
	results := make([]sourceResult, len(sources))

	// Sources never return an error to the group so one failure does not cancel the others
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			items, err := src.fetch(ctx)
			results[i] = sourceResult{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &FeedResult{
		Items:         model.Feed{},
		FailedSources: []string{},
	}
	for i, r := range results {
		if r.err != nil {
			logger.Warn("Notification source unavailable, continuing without it",
				zap.String("member_id", memberID),
				zap.String("source", sources[i].name),
				zap.Error(r.err))
			result.FailedSources = append(result.FailedSources, sources[i].name)
			continue
		}
		result.Items = append(result.Items, r.items...)
	}

	SortFeed(result.Items)

	logger.Debug("Notification feed built",
		zap.String("member_id", memberID),
		zap.Int("items", len(result.Items)),
		zap.Strings("failed_sources", result.FailedSources))

	return result, nil
}

// SortFeed orders the feed in place: admin messages before everything else, then within each
// bucket by date descending with undated items last. Ties keep their original order.
func SortFeed(feed model.Feed) {
	sort.SliceStable(feed, func(i, j int) bool {
		a, b := feed[i], feed[j]
		if a.IsAdmin() != b.IsAdmin() {
			return a.IsAdmin()
		}
		if a.Date == nil || b.Date == nil {
			return a.Date != nil && b.Date == nil
		}
		return a.Date.After(*b.Date)
	})
}

func adminMessageItems(ctx context.Context, store db.NotificationFeedStore, memberID string) ([]model.Notification, error) {
	deliveries, err := store.GetUnreadBroadcasts(ctx, memberID)
	if err != nil {
		return nil, storeError("fetch unread broadcasts", err)
	}

	items := make([]model.Notification, 0, len(deliveries))
	for _, d := range deliveries {
		createdAt := d.CreatedAt
		items = append(items, model.Notification{
			ID:          "admin-" + d.NotificationID,
			Kind:        model.KindAdminMessage,
			Title:       d.Title,
			Description: d.Message,
			Date:        &createdAt,
			RecipientID: d.RecipientID,
		})
	}
	return items, nil
}

func substitutionRequestItems(ctx context.Context, store db.NotificationFeedStore, logger *zap.Logger, memberID string) ([]model.Notification, error) {
	requests, err := store.GetPendingSubstitutionRequests(ctx, memberID)
	if err != nil {
		return nil, storeError("fetch pending substitution requests", err)
	}

	items := make([]model.Notification, 0, len(requests))
	for _, r := range requests {
		items = append(items, model.Notification{
			ID:          "sub-" + r.ID,
			Kind:        model.KindSubstitutionRequest,
			Title:       "Substitution Request",
			Description: fmt.Sprintf("%s asked you to substitute them on %q", r.RequestingMemberName, r.ScheduleTitle),
			Date:        r.ScheduleDate,
			ScheduleID:  r.ScheduleID,
		})
	}

	logger.Debug("Substitution request items", zap.Int("count", len(items)))
	return items, nil
}

func pendingConfirmationItems(ctx context.Context, store db.NotificationFeedStore, logger *zap.Logger, memberID string, opts FeedOptions, now time.Time) ([]model.Notification, error) {
	pending, err := PendingConfirmations(ctx, store, logger, memberID, opts.HorizonDays, now)
	if err != nil {
		return nil, err
	}

	items := make([]model.Notification, 0, len(pending))
	for _, us := range pending {
		date := us.Schedule.ScheduleDate
		items = append(items, model.Notification{
			ID:          "confirm-" + us.Schedule.ID,
			Kind:        model.KindPendingConfirmation,
			Title:       "Pending Confirmation",
			Description: fmt.Sprintf("Confirm your attendance for %q", us.Schedule.Title),
			Date:        &date,
			ScheduleID:  us.Schedule.ID,
		})
	}
	return items, nil
}

func upcomingScheduleItems(ctx context.Context, store db.NotificationFeedStore, logger *zap.Logger, memberID string, opts FeedOptions, now time.Time) ([]model.Notification, error) {
	confirmed, err := UpcomingConfirmed(ctx, store, logger, memberID, opts.HorizonDays, opts.UrgencyDays, now)
	if err != nil {
		return nil, err
	}

	items := make([]model.Notification, 0, len(confirmed))
	for _, us := range confirmed {
		date := us.Schedule.ScheduleDate
		items = append(items, model.Notification{
			ID:          "upcoming-" + us.Schedule.ID,
			Kind:        model.KindUpcomingSchedule,
			Title:       upcomingTitle(us.DaysUntil),
			Description: us.Schedule.Title,
			Date:        &date,
			ScheduleID:  us.Schedule.ID,
		})
	}
	return items, nil
}

func upcomingTitle(daysUntil int) string {
	switch daysUntil {
	case 0:
		return "Schedule today!"
	case 1:
		return "Schedule in 1 day"
	default:
		return fmt.Sprintf("Schedule in %d days", daysUntil)
	}
}

// MarkAdminMessageRead sets read_at on a broadcast recipient row. Marking a row that is
// already read is a no-op.
func MarkAdminMessageRead(
	ctx context.Context,
	store db.BroadcastStore,
	logger *zap.Logger,
	recipientID string,
	now time.Time,
) error {
	recipient, err := store.GetNotificationRecipient(ctx, recipientID)
	if err != nil {
		return storeError("fetch notification recipient "+recipientID, err)
	}

	if recipient.ReadAt != nil {
		logger.Debug("Admin message already read",
			zap.String("recipient_id", recipientID),
			zap.Time("read_at", *recipient.ReadAt))
		return nil
	}

	changed, err := store.MarkRecipientRead(ctx, recipientID, now.UTC())
	if err != nil {
		return storeError("mark notification recipient read", err)
	}

	logger.Info("Admin message marked read",
		zap.String("recipient_id", recipientID),
		zap.Bool("changed", changed))

	return nil
}
