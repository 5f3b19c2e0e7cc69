package services

import (
	"context"
	"strings"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

// CreateTaskRequest carries the user-supplied fields for a new task.
// DueDate is a calendar date (YYYY-MM-DD), no time of day.
type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     string              `json:"due_date"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
}

type TaskService interface {
	Create(ctx context.Context, caller authz.Caller, listID int64, req CreateTaskRequest) (*models.Task, error)
	GetByID(ctx context.Context, caller authz.Caller, id int64) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	// Update applies only the patch fields the policy grants the
	// caller. A status-only grant applies status and silently ignores
	// everything else.
	Update(ctx context.Context, caller authz.Caller, id int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, caller authz.Caller, id int64) error

	// Featured returns, per priority tier low/medium/high, the most
	// recently created task; tiers with no task are omitted. Urgent is
	// deliberately excluded. No authorization required.
	Featured(ctx context.Context) ([]models.Task, error)
	// FindDueSoon is the deadline-sweep read path: due within window,
	// not completed.
	FindDueSoon(ctx context.Context, window time.Duration) ([]models.Task, error)
	Stats(ctx context.Context) (*models.TaskStats, error)
	Upcoming(ctx context.Context, limit int) ([]models.Task, error)
}

type taskService struct {
	repo    repositories.TaskRepository
	lists   repositories.TaskListRepository
	assigns repositories.AssignmentRepository
}

func NewTaskService(repo repositories.TaskRepository, lists repositories.TaskListRepository, assigns repositories.AssignmentRepository) TaskService {
	return &taskService{repo: repo, lists: lists, assigns: assigns}
}

// parseDueDate accepts a bare calendar date and nothing else.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "invalid due_date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}

func listOwner(list *models.TaskList) int64 {
	if list.OwnerID != nil {
		return *list.OwnerID
	}
	return 0
}

func (s *taskService) Create(ctx context.Context, caller authz.Caller, listID int64, req CreateTaskRequest) (*models.Task, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	// populating a list is editing it
	if err := authz.Authorize(caller, authz.ActionEditTaskList, authz.Resource{OwnerID: listOwner(list)}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "title is required")
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	} else if !models.ValidPriority(priority) {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "invalid priority %q", priority)
	}
	status := req.Status
	if status == "" {
		status = models.StatusTodo
	} else if !models.ValidStatus(status) {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "invalid status %q", status)
	}

	task := &models.Task{
		TaskListID:  listID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    priority,
		Status:      models.NormalizeStatus(status),
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, caller authz.Caller, id int64) (*models.Task, error) {
	if err := authz.Authorize(caller, authz.ActionViewTask, authz.Resource{}); err != nil {
		return nil, err
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, caller authz.Caller, id int64, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	list, err := s.lists.GetByID(ctx, task.TaskListID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}

	assigned, err := s.assigns.Exists(ctx, task.ID, caller.ID)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{OwnerID: listOwner(list), Assigned: assigned}

	fullEdit := authz.Authorize(caller, authz.ActionEditTaskFull, res) == nil
	if !fullEdit {
		if err := authz.Authorize(caller, authz.ActionEditTaskStatusOnly, res); err != nil {
			return nil, err
		}
	}

	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return nil, apperrors.Wrapf(apperrors.ErrValidation, "invalid status %q", *patch.Status)
		}
		task.Status = models.NormalizeStatus(*patch.Status)
	}

	// fields beyond status are applied only on a full-edit grant and
	// silently dropped otherwise (partial-update semantics)
	if fullEdit {
		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return nil, apperrors.Wrap(apperrors.ErrValidation, "title cannot be empty")
			}
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.DueDate != nil {
			due, err := parseDueDate(*patch.DueDate)
			if err != nil {
				return nil, err
			}
			task.DueDate = due
		}
		if patch.Priority != nil {
			if !models.ValidPriority(*patch.Priority) {
				return nil, apperrors.Wrapf(apperrors.ErrValidation, "invalid priority %q", *patch.Priority)
			}
			task.Priority = *patch.Priority
		}
	}

	task.UpdatedAt = time.Now()
	if fullEdit {
		if err := s.repo.Update(ctx, task); err != nil {
			return nil, err
		}
	} else {
		// status is the only column a status-only grant may touch
		if err := s.repo.UpdateStatus(ctx, task.ID, task.Status); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	list, err := s.lists.GetByID(ctx, task.TaskListID)
	if err != nil {
		return err
	}
	if list == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	if err := authz.Authorize(caller, authz.ActionDeleteTask, authz.Resource{OwnerID: listOwner(list)}); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

var featuredTiers = []models.TaskPriority{
	models.PriorityLow, models.PriorityMedium, models.PriorityHigh,
}

func (s *taskService) Featured(ctx context.Context) ([]models.Task, error) {
	var featured []models.Task
	for _, tier := range featuredTiers {
		task, err := s.repo.LatestByPriority(ctx, tier)
		if err != nil {
			return nil, err
		}
		if task != nil {
			featured = append(featured, *task)
		}
	}
	return featured, nil
}

func (s *taskService) FindDueSoon(ctx context.Context, window time.Duration) ([]models.Task, error) {
	return s.repo.FindDueSoon(ctx, window)
}

func (s *taskService) Stats(ctx context.Context) (*models.TaskStats, error) {
	stats := &models.TaskStats{}
	var err error
	if stats.Completed, err = s.repo.CountByStatus(ctx, models.StatusCompleted); err != nil {
		return nil, err
	}
	if stats.Todo, err = s.repo.CountByStatus(ctx, models.StatusTodo); err != nil {
		return nil, err
	}
	if stats.InProgress, err = s.repo.CountByStatus(ctx, models.StatusInProgress); err != nil {
		return nil, err
	}
	if stats.Overdue, err = s.repo.CountOverdue(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *taskService) Upcoming(ctx context.Context, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Upcoming(ctx, limit)
}
