package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	Delete(ctx context.Context, id int64) error

	// LatestByPriority returns the most recently created task of the
	// given tier, or nil when the tier is empty.
	LatestByPriority(ctx context.Context, p models.TaskPriority) (*models.Task, error)
	// FindDueSoon returns tasks whose due date falls inside the window
	// from now and which are not completed.
	FindDueSoon(ctx context.Context, window time.Duration) ([]models.Task, error)
	Upcoming(ctx context.Context, limit int) ([]models.Task, error)
	CountByStatus(ctx context.Context, s models.TaskStatus) (int, error)
	CountOverdue(ctx context.Context) (int, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, tasklist_id, title, description, due_date, priority, status, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (tasklist_id, title, description, due_date, priority, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.TaskListID, task.Title, task.Description, task.DueDate, task.Priority, task.Status,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func scanTask(row *sql.Row) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.TaskListID, &t.Title, &t.Description, &due,
		&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	return scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.TaskListID != nil {
		conditions = append(conditions, fmt.Sprintf("tasklist_id = $%d", argID))
		args = append(args, *filter.TaskListID)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.DueDate != nil {
		conditions = append(conditions, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, *filter.DueDate)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.TaskListID, &t.Title, &t.Description, &due,
			&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET
			title=$1, description=$2, due_date=$3, priority=$4, status=$5, updated_at=NOW()
		WHERE id=$6`,
		task.Title, task.Description, task.DueDate, task.Priority, task.Status, task.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	return nil
}

func (r *taskRepository) LatestByPriority(ctx context.Context, p models.TaskPriority) (*models.Task, error) {
	return scanTask(r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE priority = $1
		ORDER BY created_at DESC
		LIMIT 1`, p))
}

func (r *taskRepository) FindDueSoon(ctx context.Context, window time.Duration) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date >= NOW()
		  AND due_date <= NOW() + $1 * INTERVAL '1 second'
		  AND status <> 'completed'
		ORDER BY due_date ASC`, int64(window.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) Upcoming(ctx context.Context, limit int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date IS NOT NULL AND due_date >= NOW()
		ORDER BY due_date ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) CountByStatus(ctx context.Context, s models.TaskStatus) (int, error) {
	var c int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = $1`, s).Scan(&c)
	return c, err
}

func (r *taskRepository) CountOverdue(ctx context.Context) (int, error) {
	var c int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE due_date < NOW() AND status <> 'completed'`).Scan(&c)
	return c, err
}
