package services

import (
	"context"
	"strings"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

type TaskListService interface {
	// Create makes a list for the caller, optionally seeded from a
	// template. Duplicate non-template names per owner are a Conflict,
	// enforced by the store so concurrent creates cannot both win.
	Create(ctx context.Context, caller authz.Caller, name string, templateID *int64) (*models.TaskList, error)
	Get(ctx context.Context, caller authz.Caller, id int64) (*models.TaskList, []models.Task, error)
	ListMine(ctx context.Context, caller authz.Caller) ([]*models.TaskList, error)
	ListTemplates(ctx context.Context) ([]*models.TaskList, error)
	Rename(ctx context.Context, caller authz.Caller, id int64, name string) error
	Delete(ctx context.Context, caller authz.Caller, id int64) error
}

type taskListService struct {
	repo  repositories.TaskListRepository
	tasks repositories.TaskRepository
}

func NewTaskListService(repo repositories.TaskListRepository, tasks repositories.TaskRepository) TaskListService {
	return &taskListService{repo: repo, tasks: tasks}
}

func (s *taskListService) Create(ctx context.Context, caller authz.Caller, name string, templateID *int64) (*models.TaskList, error) {
	if caller.ID == 0 {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "task list name is required")
	}

	var template *models.TaskList
	if templateID != nil {
		var err error
		template, err = s.repo.GetByID(ctx, *templateID)
		if err != nil {
			return nil, err
		}
		if template == nil || !template.IsTemplate {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "template not found")
		}
	}

	ownerID := caller.ID
	list := &models.TaskList{Name: name, OwnerID: &ownerID}
	if err := s.repo.Create(ctx, list); err != nil {
		return nil, err
	}

	if template != nil {
		if err := s.repo.CloneTemplateTasks(ctx, template.ID, list.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *taskListService) Get(ctx context.Context, caller authz.Caller, id int64) (*models.TaskList, []models.Task, error) {
	if err := authz.Authorize(caller, authz.ActionViewTaskList, authz.Resource{}); err != nil {
		return nil, nil, err
	}
	list, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{TaskListID: &list.ID})
	if err != nil {
		return nil, nil, err
	}
	return list, tasks, nil
}

func (s *taskListService) ListMine(ctx context.Context, caller authz.Caller) ([]*models.TaskList, error) {
	if caller.ID == 0 {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	return s.repo.ListByOwner(ctx, caller.ID)
}

func (s *taskListService) ListTemplates(ctx context.Context) ([]*models.TaskList, error) {
	return s.repo.ListTemplates(ctx)
}

func (s *taskListService) Rename(ctx context.Context, caller authz.Caller, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "task list name is required")
	}
	list, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	if err := authz.Authorize(caller, authz.ActionEditTaskList, authz.Resource{OwnerID: listOwner(list)}); err != nil {
		return err
	}
	return s.repo.Rename(ctx, id, name)
}

func (s *taskListService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	list, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "task list not found")
	}
	if err := authz.Authorize(caller, authz.ActionDeleteTaskList, authz.Resource{OwnerID: listOwner(list)}); err != nil {
		return err
	}
	// tasks, assignments and comments go with the list (FK cascades,
	// atomic with this delete)
	return s.repo.Delete(ctx, id)
}
