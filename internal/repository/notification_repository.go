package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	UserID  int64
	Title   string
	Message string
	Type    domain.NotificationType
}

func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	var n domain.Notification
	var userID pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, created_at)
		VALUES ($1,$2,$3,$4, now())
		RETURNING id, user_id, title, message, type, created_at, read_at
	`, in.UserID, in.Title, in.Message, string(in.Type)).Scan(
		&n.ID, &userID, &n.Title, &n.Message, (*string)(&n.Type), &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		n.UserID = &userID.Int64
	}
	return &n, nil
}

func (r NotificationRepository) List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, title, message, type, created_at, read_at
		FROM notifications
		WHERE deleted_at IS NULL AND user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var uid pgtype.Int8
		if err := rows.Scan(&n.ID, &uid, &n.Title, &n.Message, (*string)(&n.Type), &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			n.UserID = &uid.Int64
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE deleted_at IS NULL AND user_id = $1 AND read_at IS NULL
	`, userID).Scan(&count)
	return count, err
}

func (r NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE deleted_at IS NULL AND user_id = $1 AND id = $2 AND read_at IS NULL
	`, userID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE deleted_at IS NULL AND user_id = $1 AND read_at IS NULL
	`, userID)
	return err
}
