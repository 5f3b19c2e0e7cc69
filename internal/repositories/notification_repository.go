package repositories

import (
	"context"
	"database/sql"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	// ListPage returns one page ordered by created_at DESC plus the
	// total row count for the user, so callers can derive page counts.
	ListPage(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (message, is_read, user_id, task_id)
		VALUES ($1, FALSE, $2, $3)
		RETURNING id, created_at`,
		n.Message, n.UserID, n.TaskID,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	n := &models.Notification{}
	var taskID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, message, is_read, created_at, user_id, task_id
		FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &n.Message, &n.IsRead, &n.CreatedAt, &n.UserID, &taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if taskID.Valid {
		v := taskID.Int64
		n.TaskID = &v
	}
	return n, nil
}

func (r *notificationRepository) ListPage(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message, is_read, created_at, user_id, task_id
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var taskID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Message, &n.IsRead, &n.CreatedAt, &n.UserID, &taskID); err != nil {
			return nil, 0, err
		}
		if taskID.Valid {
			v := taskID.Int64
			n.TaskID = &v
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "notification not found")
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND NOT is_read`, userID)
	return err
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "notification not found")
	}
	return nil
}
