// Package authz is the single access-control decision surface. Every
// mutating operation resolves the caller and the resource facts, then
// asks Authorize before touching the store.
package authz

import (
	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type Action string

const (
	ActionViewTask           Action = "view_task"
	ActionEditTaskFull       Action = "edit_task_full"
	ActionEditTaskStatusOnly Action = "edit_task_status_only"
	ActionDeleteTask         Action = "delete_task"
	ActionAssignUsers        Action = "assign_users"
	ActionRemoveAssignment   Action = "remove_assignment"
	ActionViewTaskList       Action = "view_tasklist"
	ActionEditTaskList       Action = "edit_tasklist"
	ActionDeleteTaskList     Action = "delete_tasklist"
	ActionViewUsers          Action = "view_users"
	ActionDeleteUser         Action = "delete_user"
	ActionDeleteAnyUser      Action = "delete_any_user"
)

// Caller is the resolved identity of the requester. OwnsLists is the
// "owns at least one non-template task list" fact, needed only for
// view_users.
type Caller struct {
	ID        int64
	Role      models.Role
	OwnsLists bool
}

// Resource carries the facts the policy needs about the target.
// OwnerID is the task list's owner for task/list actions and the
// target user's id for user actions. Assigned is whether the caller
// holds an assignment on the task in question.
type Resource struct {
	OwnerID  int64
	Assigned bool
}

func (c Caller) isAdmin() bool { return c.Role == models.RoleAdmin }

// Authorize returns nil on permit. Denials are one of
// apperrors.ErrUnauthenticated or apperrors.ErrForbidden; NotFound is
// the caller's business (resolve the resource first, deny reads of
// absent things as absent).
func Authorize(caller Caller, action Action, res Resource) error {
	if caller.ID == 0 {
		return apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	if caller.isAdmin() {
		return nil
	}

	switch action {
	case ActionViewTask, ActionViewTaskList:
		return nil

	case ActionViewUsers:
		if caller.OwnsLists {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrForbidden, "requires at least one owned task list")

	case ActionEditTaskFull, ActionDeleteTask, ActionAssignUsers,
		ActionRemoveAssignment, ActionEditTaskList, ActionDeleteTaskList:
		if caller.ID == res.OwnerID {
			return nil
		}
		return apperrors.Wrapf(apperrors.ErrForbidden, "not the task list owner (action %s)", action)

	case ActionEditTaskStatusOnly:
		if caller.ID == res.OwnerID || res.Assigned {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrForbidden, "not an assignee of this task")

	case ActionDeleteUser:
		if caller.ID == res.OwnerID {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrForbidden, "can only delete own account")

	case ActionDeleteAnyUser:
		return apperrors.Wrap(apperrors.ErrForbidden, "admin only")
	}

	return apperrors.Wrapf(apperrors.ErrForbidden, "unknown action %s", action)
}
