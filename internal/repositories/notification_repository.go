// file: internal/repositories/notification_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"letsconnect/internal/database"
	"letsconnect/internal/models"

	"go.uber.org/zap"
)

// notificationRepository implements NotificationRepository on Postgres
type notificationRepository struct {
	*BaseRepository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.Manager, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create stores a notification
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (from_user, to_user, type, entity_kind, entity_id, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at`

	err := r.QueryRowContext(ctx, query,
		n.FromUser, n.ToUser, n.Type, n.EntityKind, n.EntityID, n.Message,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("to_user", n.ToUser),
			zap.String("type", n.Type),
		)
		return fmt.Errorf("failed to create notification: %w", mapError(err))
	}
	return nil
}

// ListForUser returns the newest notifications of userID first
func (r *notificationRepository) ListForUser(ctx context.Context, userID string, params models.ListParams) ([]*models.Notification, int64, error) {
	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM notifications WHERE to_user = $1`, userID)
	if err != nil {
		return nil, 0, mapError(err)
	}

	query := `
		SELECT id, from_user, to_user, type, entity_kind, entity_id, message, is_read, read_at, created_at
		FROM notifications
		WHERE to_user = $1
		ORDER BY created_at DESC`
	query, args := appendPage(query, []interface{}{userID}, params)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.FromUser, &n.ToUser, &n.Type, &n.EntityKind, &n.EntityID,
			&n.Message, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, total, rows.Err()
}

// MarkRead marks a notification of userID as read
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	res, err := r.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3) WHERE id = $1 AND to_user = $2`,
		id, userID, at,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a notification of userID
func (r *notificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND to_user = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
