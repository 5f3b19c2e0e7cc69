package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
	"taskly/internal/utils"
)

// ProfilePatch is a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	Username             *string `json:"username"`
	Email                *string `json:"email"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

type UserService interface {
	// Register validates, rejects a taken username before a taken
	// email (deterministic error ordering), then creates the user and
	// their personal workspace atomically.
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	// Authenticate resolves a username-or-email identifier. Any
	// failure is the same generic Unauthenticated error so existence
	// of accounts is not revealed.
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, caller authz.Caller, id int64, patch ProfilePatch) (*models.User, error)
	Delete(ctx context.Context, caller authz.Caller, id int64) error
	List(ctx context.Context, caller authz.Caller, limit, offset int) ([]*models.User, error)

	// refresh helpers for the auth handler
	UpdateRefresh(ctx context.Context, id int64, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

type userService struct {
	repo   repositories.UserRepository
	lists  repositories.TaskListRepository
	emails EmailService
	auth   AuthService
}

func NewUserService(repo repositories.UserRepository, lists repositories.TaskListRepository, emails EmailService, auth AuthService) UserService {
	return &userService{repo: repo, lists: lists, emails: emails, auth: auth}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	// required fields before any lookup
	if username == "" || email == "" || req.Password == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "username, email and password are required")
	}

	// username collision is reported before email collision
	if existing, err := s.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "Username already exists")
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "Email already exists")
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	wsID, err := utils.NewToken(16)
	if err != nil {
		return nil, err
	}
	ws := &models.Workspace{
		ID:   wsID,
		Name: fmt.Sprintf("%s's Workspace", username),
	}
	user := &models.User{
		Username:             username,
		Email:                email,
		PasswordHash:         hash,
		Role:                 models.RoleUser,
		NotificationsEnabled: true,
	}
	if err := s.repo.CreateWithWorkspace(ctx, user, ws); err != nil {
		return nil, err
	}

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.Username); err != nil {
			log.Printf("[user][register][warn] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	invalid := apperrors.Wrap(apperrors.ErrUnauthenticated, "Invalid credentials")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalid
	}
	user, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, invalid
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "user not found")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller authz.Caller, id int64, patch ProfilePatch) (*models.User, error) {
	if caller.ID != id && caller.Role != models.RoleAdmin {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "can only update own profile")
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Username != nil {
		if strings.TrimSpace(*patch.Username) == "" {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "username cannot be empty")
		}
		user.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		if strings.TrimSpace(*patch.Email) == "" {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "email cannot be empty")
		}
		user.Email = strings.TrimSpace(strings.ToLower(*patch.Email))
	}
	if patch.NotificationsEnabled != nil {
		user.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	action := authz.ActionDeleteAnyUser
	if caller.ID == id {
		action = authz.ActionDeleteUser
	}
	if err := authz.Authorize(caller, action, authz.Resource{OwnerID: id}); err != nil {
		return err
	}
	// owned lists, assignments, comments and notifications cascade
	return s.repo.Delete(ctx, id)
}

func (s *userService) List(ctx context.Context, caller authz.Caller, limit, offset int) ([]*models.User, error) {
	ownedLists, err := s.lists.CountByOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	caller.OwnsLists = ownedLists > 0
	if err := authz.Authorize(caller, authz.ActionViewUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *userService) UpdateRefresh(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, id, token, expiresAt)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(ctx, oldToken, newToken, newExpiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(ctx, token)
}
