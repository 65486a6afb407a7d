package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/team-rota/pkg/db"
)

// GetUnreadBroadcasts returns the member's unread broadcast deliveries, newest first
func (d *DB) GetUnreadBroadcasts(ctx context.Context, memberID string) ([]db.BroadcastDelivery, error) {
	rows, err := d.q.Query(ctx, `
		SELECT nr.id, n.id, n.title, n.message, n.created_at
		FROM notification_recipients nr
		JOIN admin_notifications n ON n.id = nr.notification_id
		WHERE nr.member_id = $1 AND nr.read_at IS NULL
		ORDER BY n.created_at DESC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread broadcasts: %w", err)
	}
	defer rows.Close()

	var deliveries []db.BroadcastDelivery
	for rows.Next() {
		var b db.BroadcastDelivery
		if err := rows.Scan(&b.RecipientID, &b.NotificationID, &b.Title, &b.Message, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan broadcast: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		deliveries = append(deliveries, b)
	}

	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error iterating broadcasts: %w", err)
	}

	return deliveries, nil
}

// GetNotificationRecipient retrieves a recipient row by id.
// Returns db.ErrNotFound if it does not exist.
func (d *DB) GetNotificationRecipient(ctx context.Context, recipientID string) (*db.NotificationRecipient, error) {
	var r db.NotificationRecipient
	err := d.q.QueryRow(ctx, `
		SELECT id, notification_id, member_id, read_at
		FROM notification_recipients
		WHERE id = $1
	`, recipientID).Scan(&r.ID, &r.NotificationID, &r.MemberID, &r.ReadAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification recipient: %w", notFound(err))
	}
	return &r, nil
}

// MarkRecipientRead sets read_at if it is still null and reports whether a row changed
func (d *DB) MarkRecipientRead(ctx context.Context, recipientID string, at time.Time) (bool, error) {
	tag, err := d.q.Exec(ctx, `
		UPDATE notification_recipients SET read_at = $2 WHERE id = $1 AND read_at IS NULL
	`, recipientID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to mark notification recipient read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertBroadcast inserts a broadcast and its recipient rows in one transaction
func (d *DB) InsertBroadcast(ctx context.Context, notification *db.AdminNotification, recipients []db.NotificationRecipient) error {
	return d.inTx(ctx, func(tx *DB) error {
		_, err := tx.q.Exec(ctx, `
			INSERT INTO admin_notifications (id, title, message, sender_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, notification.ID, notification.Title, notification.Message, notification.SenderID, notification.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert admin notification: %w", invalidReference(err))
		}

		for _, r := range recipients {
			_, err := tx.q.Exec(ctx, `
				INSERT INTO notification_recipients (id, notification_id, member_id, read_at)
				VALUES ($1, $2, $3, $4)
			`, r.ID, r.NotificationID, r.MemberID, r.ReadAt)
			if err != nil {
				return fmt.Errorf("failed to insert notification recipient: %w", invalidReference(err))
			}
		}
		return nil
	})
}

// DeleteBroadcast deletes a broadcast's recipient rows and then the broadcast itself.
// Reports false when the broadcast did not exist.
func (d *DB) DeleteBroadcast(ctx context.Context, notificationID string) (bool, error) {
	var deleted bool
	err := d.inTx(ctx, func(tx *DB) error {
		if _, err := tx.q.Exec(ctx, `
			DELETE FROM notification_recipients WHERE notification_id = $1
		`, notificationID); err != nil {
			return fmt.Errorf("failed to delete notification recipients: %w", err)
		}

		tag, err := tx.q.Exec(ctx, `
			DELETE FROM admin_notifications WHERE id = $1
		`, notificationID)
		if err != nil {
			return fmt.Errorf("failed to delete admin notification: %w", err)
		}
		deleted = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, err
	}
	return deleted, nil
}
