package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

const (
	// DefaultHorizonDays is how far ahead the feed looks for schedules
	DefaultHorizonDays = 7
	// DefaultUrgencyDays is how close a confirmed schedule must be to be reminded of
	DefaultUrgencyDays = 3
)

// UpcomingSchedule is a schedule in a member's discovery window with its day count
type UpcomingSchedule struct {
	Schedule  db.Schedule
	DaysUntil int
}

// PendingConfirmations returns schedules in [today, today+horizonDays] for any of the member's
// teams that the member has not confirmed yet (no availability row, or confirmed false/null)
func PendingConfirmations(
	ctx context.Context,
	store db.AvailabilityStore,
	logger *zap.Logger,
	memberID string,
	horizonDays int,
	now time.Time,
) ([]UpcomingSchedule, error) {
	upcoming, availability, err := upcomingWithAvailability(ctx, store, logger, memberID, horizonDays, now)
	if err != nil {
		return nil, err
	}

	pending := []UpcomingSchedule{}
	for _, us := range upcoming {
		a, exists := availability[us.Schedule.ID]
		if !exists || !a.IsConfirmed() {
			pending = append(pending, us)
		}
	}

	logger.Debug("Found pending confirmations",
		zap.String("member_id", memberID),
		zap.Int("count", len(pending)))

	return pending, nil
}

// UpcomingConfirmed returns confirmed schedules in the same window as PendingConfirmations
// that are at most urgencyDays away
func UpcomingConfirmed(
	ctx context.Context,
	store db.AvailabilityStore,
	logger *zap.Logger,
	memberID string,
	horizonDays int,
	urgencyDays int,
	now time.Time,
) ([]UpcomingSchedule, error) {
	upcoming, availability, err := upcomingWithAvailability(ctx, store, logger, memberID, horizonDays, now)
	if err != nil {
		return nil, err
	}

	confirmed := []UpcomingSchedule{}
	for _, us := range upcoming {
		a, exists := availability[us.Schedule.ID]
		if exists && a.IsConfirmed() && us.DaysUntil <= urgencyDays {
			confirmed = append(confirmed, us)
		}
	}

	logger.Debug("Found upcoming confirmed schedules",
		zap.String("member_id", memberID),
		zap.Int("count", len(confirmed)))

	return confirmed, nil
}

// upcomingWithAvailability loads the member's team schedules in the window together with the
// member's availability rows for them, keyed by schedule ID
func upcomingWithAvailability(
	ctx context.Context,
	store db.AvailabilityStore,
	logger *zap.Logger,
	memberID string,
	horizonDays int,
	now time.Time,
) ([]UpcomingSchedule, map[string]db.MemberAvailability, error) {
	if horizonDays < 0 {
		return nil, nil, fmt.Errorf("horizon must not be negative, got %d: %w", horizonDays, ErrInvalidRequest)
	}

	teamIDs, err := store.GetMemberTeamIDs(ctx, memberID)
	if err != nil {
		return nil, nil, storeError("fetch member teams", err)
	}
	teamIDs = dedupeIDs(teamIDs)
	if len(teamIDs) == 0 {
		logger.Debug("Member belongs to no teams", zap.String("member_id", memberID))
		return nil, nil, nil
	}

	today := civilDate(now)
	until := today.AddDate(0, 0, horizonDays)

	schedules, err := store.GetTeamSchedulesBetween(ctx, teamIDs, today, until)
	if err != nil {
		return nil, nil, storeError("fetch team schedules", err)
	}

	upcoming := make([]UpcomingSchedule, 0, len(schedules))
	scheduleIDs := make([]string, 0, len(schedules))
	for _, s := range schedules {
		// Team membership is the only discovery path
		if s.TeamID == "" {
			continue
		}
		days := DaysUntil(s.ScheduleDate, now)
		if days < 0 || days > horizonDays {
			continue
		}
		upcoming = append(upcoming, UpcomingSchedule{Schedule: s, DaysUntil: days})
		scheduleIDs = append(scheduleIDs, s.ID)
	}

	if len(upcoming) == 0 {
		return nil, nil, nil
	}

	rows, err := store.GetMemberAvailability(ctx, memberID, scheduleIDs)
	if err != nil {
		return nil, nil, storeError("fetch member availability", err)
	}

	availability := make(map[string]db.MemberAvailability, len(rows))
	for _, a := range rows {
		availability[a.ScheduleID] = a
	}

	return upcoming, availability, nil
}

// ConfirmAvailability records the member's answer for a schedule, creating or updating the
// single availability row for the (member, schedule) pair
func ConfirmAvailability(
	ctx context.Context,
	store db.AvailabilityWriter,
	logger *zap.Logger,
	memberID string,
	scheduleID string,
	available bool,
	now time.Time,
) error {
	if memberID == "" || scheduleID == "" {
		return fmt.Errorf("member and schedule are required: %w", ErrInvalidRequest)
	}

	confirmed := true
	availability := &db.MemberAvailability{
		ID:         uuid.New().String(),
		MemberID:   memberID,
		ScheduleID: scheduleID,
		Available:  &available,
		Confirmed:  &confirmed,
		UpdatedAt:  now.UTC(),
	}

	if err := store.UpsertMemberAvailability(ctx, availability); err != nil {
		return storeError("save member availability", err)
	}

	logger.Info("Availability confirmed",
		zap.String("member_id", memberID),
		zap.String("schedule_id", scheduleID),
		zap.Bool("available", available))

	return nil
}
