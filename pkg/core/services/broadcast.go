package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

// SendBroadcast stores an admin message and one unread recipient row per distinct member.
// Returns the notification ID.
func SendBroadcast(
	ctx context.Context,
	store db.BroadcastStore,
	logger *zap.Logger,
	senderID string,
	title string,
	message string,
	memberIDs []string,
	now time.Time,
) (string, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if senderID == "" || title == "" || message == "" {
		return "", fmt.Errorf("sender, title and message are required: %w", ErrInvalidRequest)
	}

	memberIDs = dedupeIDs(memberIDs)
	if len(memberIDs) == 0 {
		return "", fmt.Errorf("broadcast needs at least one recipient: %w", ErrInvalidRequest)
	}

	notification := &db.AdminNotification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		SenderID:  senderID,
		CreatedAt: now.UTC(),
	}

	recipients := make([]db.NotificationRecipient, len(memberIDs))
	for i, memberID := range memberIDs {
		recipients[i] = db.NotificationRecipient{
			ID:             uuid.New().String(),
			NotificationID: notification.ID,
			MemberID:       memberID,
		}
	}

	logger.Debug("Inserting broadcast",
		zap.String("notification_id", notification.ID),
		zap.Int("recipients", len(recipients)))

	if err := store.InsertBroadcast(ctx, notification, recipients); err != nil {
		return "", storeError("insert broadcast", err)
	}

	logger.Info("Broadcast sent",
		zap.String("notification_id", notification.ID),
		zap.String("sender_id", senderID),
		zap.Int("recipients", len(recipients)))

	return notification.ID, nil
}

// DeleteBroadcast removes a broadcast together with its recipient rows
func DeleteBroadcast(
	ctx context.Context,
	store db.BroadcastStore,
	logger *zap.Logger,
	notificationID string,
) error {
	deleted, err := store.DeleteBroadcast(ctx, notificationID)
	if err != nil {
		return storeError("delete broadcast "+notificationID, err)
	}
	if !deleted {
		return fmt.Errorf("broadcast %s: %w", notificationID, ErrNotFound)
	}

	logger.Info("Broadcast deleted", zap.String("notification_id", notificationID))
	return nil
}
