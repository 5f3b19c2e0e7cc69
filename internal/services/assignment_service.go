package services

import (
	"context"
	"log"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

type AssignmentService interface {
	// AssignUsers assigns each listed user to the task. Unknown user
	// ids and already-assigned users are skipped, not errors; an empty
	// list is a successful no-op. Returns the users actually assigned.
	AssignUsers(ctx context.Context, caller authz.Caller, taskID int64, userIDs []int64) ([]*models.User, error)
	RemoveAssignment(ctx context.Context, caller authz.Caller, taskID, userID int64) error
	ListAssignees(ctx context.Context, caller authz.Caller, taskID int64) ([]*models.User, error)
	// AssigneeIDs is the sweep's lookup; no caller, read only.
	AssigneeIDs(ctx context.Context, taskID int64) ([]int64, error)
}

type assignmentService struct {
	repo     repositories.AssignmentRepository
	tasks    repositories.TaskRepository
	lists    repositories.TaskListRepository
	users    repositories.UserRepository
	notifier NotificationService
}

func NewAssignmentService(
	repo repositories.AssignmentRepository,
	tasks repositories.TaskRepository,
	lists repositories.TaskListRepository,
	users repositories.UserRepository,
	notifier NotificationService,
) AssignmentService {
	return &assignmentService{repo: repo, tasks: tasks, lists: lists, users: users, notifier: notifier}
}

// resolveTask loads the task and its list and authorizes action
// against the list owner.
func (s *assignmentService) resolveTask(ctx context.Context, caller authz.Caller, taskID int64, action authz.Action) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
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
	if err := authz.Authorize(caller, action, authz.Resource{OwnerID: listOwner(list)}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *assignmentService) AssignUsers(ctx context.Context, caller authz.Caller, taskID int64, userIDs []int64) ([]*models.User, error) {
	task, err := s.resolveTask(ctx, caller, taskID, authz.ActionAssignUsers)
	if err != nil {
		return nil, err
	}

	var assigned []*models.User
	for _, userID := range userIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return assigned, err
		}
		if user == nil {
			log.Printf("[assign][skip] task=%d user=%d does not exist", taskID, userID)
			continue
		}
		// engine-level duplicate check; the ON CONFLICT insert below
		// backstops concurrent assigns
		exists, err := s.repo.Exists(ctx, taskID, userID)
		if err != nil {
			return assigned, err
		}
		if exists {
			log.Printf("[assign][skip] task=%d user=%d already assigned", taskID, userID)
			continue
		}
		created, err := s.repo.Create(ctx, taskID, userID)
		if err != nil {
			return assigned, err
		}
		if !created {
			continue
		}
		assigned = append(assigned, user)

		if err := s.notifier.Dispatch(ctx, Event{Type: EventAssigned, Task: task, RecipientID: userID}); err != nil {
			log.Printf("[assign][warn] notify user=%d failed: %v", userID, err)
		}
	}
	return assigned, nil
}

func (s *assignmentService) RemoveAssignment(ctx context.Context, caller authz.Caller, taskID, userID int64) error {
	task, err := s.resolveTask(ctx, caller, taskID, authz.ActionRemoveAssignment)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.Wrap(apperrors.ErrNotFound, "user is not assigned to this task")
	}
	if err := s.notifier.Dispatch(ctx, Event{Type: EventUnassigned, Task: task, RecipientID: userID}); err != nil {
		log.Printf("[assign][warn] notify user=%d failed: %v", userID, err)
	}
	return nil
}

func (s *assignmentService) ListAssignees(ctx context.Context, caller authz.Caller, taskID int64) ([]*models.User, error) {
	if err := authz.Authorize(caller, authz.ActionViewTask, authz.Resource{}); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListUserIDsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	var users []*models.User
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *assignmentService) AssigneeIDs(ctx context.Context, taskID int64) ([]int64, error) {
	return s.repo.ListUserIDsByTask(ctx, taskID)
}
