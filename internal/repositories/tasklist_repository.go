package repositories

import (
	"context"
	"database/sql"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type TaskListRepository interface {
	Create(ctx context.Context, list *models.TaskList) error
	GetByID(ctx context.Context, id int64) (*models.TaskList, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.TaskList, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	ListTemplates(ctx context.Context) ([]*models.TaskList, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error

	// CloneTemplateTasks copies title and description of every task in
	// the template into the target list in one statement. Fresh ids,
	// default status and priority, no assignments or comments.
	CloneTemplateTasks(ctx context.Context, templateID, targetID int64) error
}

type taskListRepository struct {
	DB *sql.DB
}

func NewTaskListRepository(db *sql.DB) TaskListRepository {
	return &taskListRepository{DB: db}
}

func (r *taskListRepository) Create(ctx context.Context, list *models.TaskList) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tasklists (name, owner_id, is_template)
		VALUES ($1,$2,$3)
		RETURNING id`,
		list.Name, list.OwnerID, list.IsTemplate,
	).Scan(&list.ID)
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrConflict, "task list name already used")
	}
	return err
}

func (r *taskListRepository) GetByID(ctx context.Context, id int64) (*models.TaskList, error) {
	list := &models.TaskList{}
	var ownerID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, owner_id, is_template FROM tasklists WHERE id = $1`, id,
	).Scan(&list.ID, &list.Name, &ownerID, &list.IsTemplate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if ownerID.Valid {
		v := ownerID.Int64
		list.OwnerID = &v
	}
	return list, nil
}

func (r *taskListRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.TaskList, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, owner_id, is_template
		FROM tasklists WHERE owner_id = $1 AND NOT is_template
		ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLists(rows)
}

func (r *taskListRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var c int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasklists WHERE owner_id = $1 AND NOT is_template`, ownerID).Scan(&c)
	return c, err
}

func (r *taskListRepository) ListTemplates(ctx context.Context) ([]*models.TaskList, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, owner_id, is_template
		FROM tasklists WHERE is_template ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLists(rows)
}

func collectLists(rows *sql.Rows) ([]*models.TaskList, error) {
	var lists []*models.TaskList
	for rows.Next() {
		list := &models.TaskList{}
		var ownerID sql.NullInt64
		if err := rows.Scan(&list.ID, &list.Name, &ownerID, &list.IsTemplate); err != nil {
			return nil, err
		}
		if ownerID.Valid {
			v := ownerID.Int64
			list.OwnerID = &v
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func (r *taskListRepository) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasklists SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "task list name already used")
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	return nil
}

func (r *taskListRepository) CloneTemplateTasks(ctx context.Context, templateID, targetID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tasks (tasklist_id, title, description, priority, status, created_at, updated_at)
		SELECT $2, title, description, 'medium', 'todo', NOW(), NOW()
		FROM tasks WHERE tasklist_id = $1`, templateID, targetID)
	return err
}

func (r *taskListRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasklists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	return nil
}
