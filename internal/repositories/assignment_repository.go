package repositories

import (
	"context"
	"database/sql"

	"taskly/internal/models"
)

type AssignmentRepository interface {
	// Create inserts unless the (task, user) pair already exists and
	// reports whether a row was actually created. The insert and the
	// duplicate detection are one statement, so concurrent assigns
	// cannot produce duplicates.
	Create(ctx context.Context, taskID, userID int64) (bool, error)
	Exists(ctx context.Context, taskID, userID int64) (bool, error)
	Delete(ctx context.Context, taskID, userID int64) (bool, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.TaskAssignment, error)
	ListUserIDsByTask(ctx context.Context, taskID int64) ([]int64, error)
}

type assignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, taskID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_assignments (task_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, user_id) DO NOTHING`, taskID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *assignmentRepository) Exists(ctx context.Context, taskID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM task_assignments WHERE task_id=$1 AND user_id=$2)`,
		taskID, userID).Scan(&exists)
	return exists, err
}

func (r *assignmentRepository) Delete(ctx context.Context, taskID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM task_assignments WHERE task_id=$1 AND user_id=$2`, taskID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *assignmentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.TaskAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, user_id, assigned_at
		FROM task_assignments WHERE task_id = $1 ORDER BY assigned_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskAssignment
	for rows.Next() {
		var a models.TaskAssignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assignmentRepository) ListUserIDsByTask(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM task_assignments WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
