package services

import (
	"context"
	"strings"
	"testing"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
)

func newUserFixture() (UserService, *fakeUserRepo, *fakeTaskListRepo, *fakeEmailService) {
	userRepo := newFakeUserRepo()
	listRepo := newFakeTaskListRepo()
	emails := &fakeEmailService{}
	auth := NewAuthService(newFakeBlocklistRepo())
	svc := NewUserService(userRepo, listRepo, emails, auth)
	return svc, userRepo, listRepo, emails
}

func TestRegister(t *testing.T) {
	svc, _, _, emails := newUserFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.WorkspaceID == nil {
		t.Fatal("personal workspace not provisioned")
	}
	if !user.NotificationsEnabled {
		t.Error("notifications should default to enabled")
	}
	if len(emails.welcomes) != 1 || emails.welcomes[0] != "alice@example.com" {
		t.Errorf("welcome email not sent: %v", emails.welcomes)
	}
}

func TestRegisterValidatesBeforeLookups(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"no username", models.RegisterRequest{Email: "a@b.c", Password: "x"}},
		{"no email", models.RegisterRequest{Username: "a", Password: "x"}},
		{"no password", models.RegisterRequest{Username: "a", Email: "a@b.c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.req); !apperrors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestRegisterConflictOrdering(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// both username and email collide: the username wins the error
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if !apperrors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("got %v, want Conflict", err)
	}
	if !strings.Contains(err.Error(), "Username") {
		t.Errorf("expected username-specific message, got %q", err.Error())
	}

	// only the email collides
	_, err = svc.Register(ctx, models.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "secret1"})
	if !apperrors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("got %v, want Conflict", err)
	}
	if !strings.Contains(err.Error(), "Email") {
		t.Errorf("expected email-specific message, got %q", err.Error())
	}
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	svc, _, _, emails := newUserFixture()
	emails.fail = true

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register should not fail on mail error: %v", err)
	}
	if user.ID == 0 {
		t.Error("user not created")
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		password   string
		wantOK     bool
	}{
		{"by username", "alice", "secret1", true},
		{"by email", "alice@example.com", "secret1", true},
		{"wrong password", "alice", "nope", false},
		{"unknown identifier", "mallory", "secret1", false},
		{"empty password", "alice", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tc.identifier, tc.password)
			if tc.wantOK {
				if err != nil {
					t.Fatalf("authenticate: %v", err)
				}
				if user.Username != "alice" {
					t.Errorf("wrong user: %+v", user)
				}
				return
			}
			if !apperrors.Is(err, apperrors.ErrUnauthenticated) {
				t.Fatalf("got %v, want Unauthenticated", err)
			}
			// the same generic message regardless of the failure cause
			if !strings.Contains(err.Error(), "Invalid credentials") {
				t.Errorf("expected generic message, got %q", err.Error())
			}
		})
	}
}

func TestListUsersRequiresOwnershipOrAdmin(t *testing.T) {
	svc, userRepo, listRepo, _ := newUserFixture()
	ctx := context.Background()

	plain := userRepo.add(models.User{Username: "plain", Email: "p@x.c", Role: models.RoleUser})
	ownerUser := userRepo.add(models.User{Username: "owner", Email: "o@x.c", Role: models.RoleUser})
	adminUser := userRepo.add(models.User{Username: "admin", Email: "a@x.c", Role: models.RoleAdmin})
	if err := listRepo.Create(ctx, &models.TaskList{Name: "Sprint", OwnerID: &ownerUser.ID}); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	if _, err := svc.List(ctx, authz.Caller{ID: plain.ID, Role: plain.Role}, 10, 0); !apperrors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want Forbidden for user without lists", err)
	}
	if _, err := svc.List(ctx, authz.Caller{ID: ownerUser.ID, Role: ownerUser.Role}, 10, 0); err != nil {
		t.Fatalf("list owner should see users: %v", err)
	}
	if _, err := svc.List(ctx, authz.Caller{ID: adminUser.ID, Role: adminUser.Role}, 10, 0); err != nil {
		t.Fatalf("admin should see users: %v", err)
	}
}

func TestDeleteUserPolicy(t *testing.T) {
	svc, userRepo, _, _ := newUserFixture()
	ctx := context.Background()

	alice := userRepo.add(models.User{Username: "alice", Email: "a@x.c", Role: models.RoleUser})
	bob := userRepo.add(models.User{Username: "bob", Email: "b@x.c", Role: models.RoleUser})
	admin := userRepo.add(models.User{Username: "root", Email: "r@x.c", Role: models.RoleAdmin})

	// a user cannot delete someone else
	if err := svc.Delete(ctx, authz.Caller{ID: alice.ID, Role: alice.Role}, bob.ID); !apperrors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want Forbidden", err)
	}
	// self-delete is allowed
	if err := svc.Delete(ctx, authz.Caller{ID: alice.ID, Role: alice.Role}, alice.ID); err != nil {
		t.Fatalf("self delete: %v", err)
	}
	// admin deletes anyone
	if err := svc.Delete(ctx, authz.Caller{ID: admin.ID, Role: admin.Role}, bob.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestUpdateProfileSelfOrAdmin(t *testing.T) {
	svc, userRepo, _, _ := newUserFixture()
	ctx := context.Background()

	alice := userRepo.add(models.User{Username: "alice", Email: "a@x.c", Role: models.RoleUser, NotificationsEnabled: true})
	bob := userRepo.add(models.User{Username: "bob", Email: "b@x.c", Role: models.RoleUser})

	muted := false
	if _, err := svc.UpdateProfile(ctx, authz.Caller{ID: bob.ID, Role: bob.Role}, alice.ID, ProfilePatch{NotificationsEnabled: &muted}); !apperrors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want Forbidden", err)
	}

	updated, err := svc.UpdateProfile(ctx, authz.Caller{ID: alice.ID, Role: alice.Role}, alice.ID, ProfilePatch{NotificationsEnabled: &muted})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.NotificationsEnabled {
		t.Error("mute toggle not applied")
	}
}
