package services

import (
	"context"
	"testing"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
)

type assignmentFixture struct {
	svc      AssignmentService
	notifier *fakeNotifier
	users    *fakeUserRepo
	owner    authz.Caller
	task     *models.Task
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	ctx := context.Background()

	userRepo := newFakeUserRepo()
	listRepo := newFakeTaskListRepo()
	taskRepo := newFakeTaskRepo()
	assignRepo := newFakeAssignmentRepo()
	notifier := &fakeNotifier{}
	svc := NewAssignmentService(assignRepo, taskRepo, listRepo, userRepo, notifier)

	ownerUser := userRepo.add(models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, NotificationsEnabled: true})
	list := &models.TaskList{Name: "Sprint", OwnerID: &ownerUser.ID}
	if err := listRepo.Create(ctx, list); err != nil {
		t.Fatalf("create list: %v", err)
	}
	task := &models.Task{TaskListID: list.ID, Title: "Fix bug", Priority: models.PriorityHigh, Status: models.StatusTodo}
	if err := taskRepo.Store(ctx, task); err != nil {
		t.Fatalf("store task: %v", err)
	}

	return &assignmentFixture{
		svc:      svc,
		notifier: notifier,
		users:    userRepo,
		owner:    authz.Caller{ID: ownerUser.ID, Role: models.RoleUser},
		task:     task,
	}
}

func TestAssignUsersEmptyListIsNoOp(t *testing.T) {
	f := newAssignmentFixture(t)

	assigned, err := f.svc.AssignUsers(context.Background(), f.owner, f.task.ID, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assigned) != 0 {
		t.Errorf("expected no assignments, got %d", len(assigned))
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.notifier.events))
	}
}

func TestAssignUsersSkipsUnknownAndDuplicates(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	bob := f.users.add(models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser, NotificationsEnabled: true})

	assigned, err := f.svc.AssignUsers(ctx, f.owner, f.task.ID, []int64{bob.ID, 999})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != bob.ID {
		t.Fatalf("expected only bob assigned, got %+v", assigned)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Type != EventAssigned || f.notifier.events[0].RecipientID != bob.ID {
		t.Fatalf("expected one assignment event for bob, got %+v", f.notifier.events)
	}

	// second identical call: no new rows, no new notifications
	assigned, err = f.svc.AssignUsers(ctx, f.owner, f.task.ID, []int64{bob.ID})
	if err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	if len(assigned) != 0 {
		t.Errorf("duplicate assign should be skipped, got %+v", assigned)
	}
	if len(f.notifier.events) != 1 {
		t.Errorf("duplicate assign should not notify, got %d events", len(f.notifier.events))
	}
}

func TestAssignUsersForbiddenForStranger(t *testing.T) {
	f := newAssignmentFixture(t)
	bob := f.users.add(models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser, NotificationsEnabled: true})

	stranger := authz.Caller{ID: bob.ID, Role: models.RoleUser}
	if _, err := f.svc.AssignUsers(context.Background(), stranger, f.task.ID, []int64{bob.ID}); !apperrors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want Forbidden", err)
	}
}

func TestRemoveAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	bob := f.users.add(models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser, NotificationsEnabled: true})

	if _, err := f.svc.AssignUsers(ctx, f.owner, f.task.ID, []int64{bob.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := f.svc.RemoveAssignment(ctx, f.owner, f.task.ID, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	last := f.notifier.events[len(f.notifier.events)-1]
	if last.Type != EventUnassigned || last.RecipientID != bob.ID {
		t.Errorf("expected unassignment event for bob, got %+v", last)
	}

	// removing again: the user is no longer assigned
	if err := f.svc.RemoveAssignment(ctx, f.owner, f.task.ID, bob.ID); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

// Full lifecycle over the real services: list, task, assignment with
// notification, assignee patch, stranger rejection.
func TestAssignmentLifecycle(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	listRepo := newFakeTaskListRepo()
	taskRepo := newFakeTaskRepo()
	assignRepo := newFakeAssignmentRepo()
	notifRepo := newFakeNotificationRepo()

	notifSvc := NewNotificationService(notifRepo, userRepo, nil)
	listSvc := NewTaskListService(listRepo, taskRepo)
	taskSvc := NewTaskService(taskRepo, listRepo, assignRepo)
	assignSvc := NewAssignmentService(assignRepo, taskRepo, listRepo, userRepo, notifSvc)

	alice := userRepo.add(models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, NotificationsEnabled: true})
	bob := userRepo.add(models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser, NotificationsEnabled: true})
	carol := userRepo.add(models.User{Username: "carol", Email: "carol@example.com", Role: models.RoleUser, NotificationsEnabled: true})
	owner := authz.Caller{ID: alice.ID, Role: models.RoleUser}

	list, err := listSvc.Create(ctx, owner, "Sprint", nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	task, err := taskSvc.Create(ctx, owner, list.ID, CreateTaskRequest{Title: "Fix bug", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// empty assignment list is a successful no-op
	if assigned, err := assignSvc.AssignUsers(ctx, owner, task.ID, nil); err != nil || len(assigned) != 0 {
		t.Fatalf("empty assign: got %v / %v, want no-op", assigned, err)
	}

	// assigning twice yields one row and one notification
	if _, err := assignSvc.AssignUsers(ctx, owner, task.ID, []int64{bob.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := assignSvc.AssignUsers(ctx, owner, task.ID, []int64{bob.ID}); err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	if len(notifRepo.rows) != 1 {
		t.Fatalf("got %d notification rows, want 1", len(notifRepo.rows))
	}
	if got, want := notifRepo.rows[0].Message, "You have been assigned to task: Fix bug"; got != want {
		t.Errorf("notification message %q, want %q", got, want)
	}

	// the assignee may move the status; the priority field is dropped
	done := models.StatusCompleted
	low := models.PriorityLow
	patched, err := taskSvc.Update(ctx, authz.Caller{ID: bob.ID, Role: models.RoleUser}, task.ID, models.TaskPatch{Status: &done, Priority: &low})
	if err != nil {
		t.Fatalf("assignee patch: %v", err)
	}
	if patched.Status != models.StatusCompleted {
		t.Errorf("status %q, want completed", patched.Status)
	}
	if patched.Priority != models.PriorityHigh {
		t.Errorf("priority %q, want high (untouched)", patched.Priority)
	}

	// an unrelated user gets nothing
	stranger := authz.Caller{ID: carol.ID, Role: models.RoleUser}
	if _, err := taskSvc.Update(ctx, stranger, task.ID, models.TaskPatch{Status: &done}); !apperrors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want Forbidden for stranger", err)
	}
}

func TestAssignUnknownTask(t *testing.T) {
	f := newAssignmentFixture(t)

	if _, err := f.svc.AssignUsers(context.Background(), f.owner, 404, []int64{1}); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}
