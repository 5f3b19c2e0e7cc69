package services

import (
	"context"
	"log"
	"strings"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
	"taskly/internal/utils"
)

// InviteResult pairs the created invite with the delivery outcome.
// Mail failure does not fail the invite; it is reported here instead.
type InviteResult struct {
	Invite    *models.WorkspaceInvite `json:"invite"`
	EmailSent bool                    `json:"email_sent"`
}

type WorkspaceService interface {
	Get(ctx context.Context, id string) (*models.Workspace, error)
	// CreateInvite issues a pending invite to an email address. A new
	// invite for the same (email, workspace) pair supersedes the old
	// pending one rather than stacking next to it.
	CreateInvite(ctx context.Context, caller authz.Caller, workspaceID, email string) (*InviteResult, error)
	// CreateLinkInvite issues a reusable join link (status active, no
	// email target).
	CreateLinkInvite(ctx context.Context, caller authz.Caller, workspaceID string) (*models.WorkspaceInvite, error)
	AcceptInvite(ctx context.Context, callerID int64, token string) (*models.Workspace, error)
	LeaveWorkspace(ctx context.Context, callerID int64) error
	ListMembers(ctx context.Context, caller authz.Caller, workspaceID string) ([]*models.User, error)
	ListInvites(ctx context.Context, caller authz.Caller, workspaceID string) ([]*models.WorkspaceInvite, error)
	Delete(ctx context.Context, caller authz.Caller, workspaceID string) error
}

type workspaceService struct {
	repo   repositories.WorkspaceRepository
	users  repositories.UserRepository
	emails EmailService
}

func NewWorkspaceService(repo repositories.WorkspaceRepository, users repositories.UserRepository, emails EmailService) WorkspaceService {
	return &workspaceService{repo: repo, users: users, emails: emails}
}

func (s *workspaceService) Get(ctx context.Context, id string) (*models.Workspace, error) {
	ws, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "workspace not found")
	}
	return ws, nil
}

// requireMember checks the caller belongs to the workspace; admins
// pass regardless.
func (s *workspaceService) requireMember(ctx context.Context, caller authz.Caller, workspaceID string) error {
	if caller.ID == 0 {
		return apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	if caller.Role == models.RoleAdmin {
		return nil
	}
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if user == nil || user.WorkspaceID == nil || *user.WorkspaceID != workspaceID {
		return apperrors.Wrap(apperrors.ErrForbidden, "not a member of this workspace")
	}
	return nil
}

func (s *workspaceService) CreateInvite(ctx context.Context, caller authz.Caller, workspaceID, email string) (*InviteResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "email is required")
	}
	if err := s.requireMember(ctx, caller, workspaceID); err != nil {
		return nil, err
	}
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	token, err := utils.NewToken(32)
	if err != nil {
		return nil, err
	}
	inv := &models.WorkspaceInvite{
		Email:       email,
		WorkspaceID: workspaceID,
		InviterID:   caller.ID,
		Status:      models.InvitePending,
		Token:       token,
	}
	if err := s.repo.UpsertInvite(ctx, inv); err != nil {
		return nil, err
	}

	sent := false
	if s.emails != nil {
		if err := s.emails.SendInviteEmail(email, ws.Name, token); err != nil {
			log.Printf("[workspace][invite][warn] mail to %s failed: %v", email, err)
		} else {
			sent = true
		}
	}
	return &InviteResult{Invite: inv, EmailSent: sent}, nil
}

func (s *workspaceService) CreateLinkInvite(ctx context.Context, caller authz.Caller, workspaceID string) (*models.WorkspaceInvite, error) {
	if err := s.requireMember(ctx, caller, workspaceID); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	token, err := utils.NewToken(32)
	if err != nil {
		return nil, err
	}
	inv := &models.WorkspaceInvite{
		WorkspaceID: workspaceID,
		InviterID:   caller.ID,
		Status:      models.InviteActive,
		Token:       token,
	}
	if err := s.repo.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *workspaceService) AcceptInvite(ctx context.Context, callerID int64, token string) (*models.Workspace, error) {
	if callerID == 0 {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	inv, err := s.repo.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.Status == models.InviteAccepted {
		// accepted invites are terminal; spent tokens look like missing ones
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "invite not found")
	}
	ws, err := s.Get(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetWorkspace(ctx, callerID, &inv.WorkspaceID); err != nil {
		return nil, err
	}
	// link invites stay active and reusable
	if inv.Status == models.InvitePending {
		if err := s.repo.MarkInviteAccepted(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

func (s *workspaceService) LeaveWorkspace(ctx context.Context, callerID int64) error {
	if callerID == 0 {
		return apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	return s.users.SetWorkspace(ctx, callerID, nil)
}

func (s *workspaceService) ListMembers(ctx context.Context, caller authz.Caller, workspaceID string) ([]*models.User, error) {
	if err := s.requireMember(ctx, caller, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, workspaceID)
}

func (s *workspaceService) ListInvites(ctx context.Context, caller authz.Caller, workspaceID string) ([]*models.WorkspaceInvite, error) {
	if err := s.requireMember(ctx, caller, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.ListInvites(ctx, workspaceID)
}

func (s *workspaceService) Delete(ctx context.Context, caller authz.Caller, workspaceID string) error {
	if caller.Role != models.RoleAdmin {
		return apperrors.Wrap(apperrors.ErrForbidden, "admin only")
	}
	// members detach via ON DELETE SET NULL
	return s.repo.Delete(ctx, workspaceID)
}
