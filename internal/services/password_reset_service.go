package services

import (
	"context"
	"log"
	"strings"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/repositories"
	"taskly/internal/utils"
)

const resetTokenTTL = time.Hour

type PasswordResetService interface {
	// RequestReset issues a single-use token and mails it. It never
	// reveals whether the email belongs to an account.
	RequestReset(ctx context.Context, email string) error
	// ResetPassword consumes the token: unknown or used tokens are
	// Invalid (NotFound kind), stale ones Expired.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
}

func NewPasswordResetService(userRepo repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		repo:     repo,
		emails:   emails,
		auth:     auth,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "email is required")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		// don't leak existence
		log.Printf("[password-reset] request for %q: no such account", email)
		return nil
	}

	token, err := utils.NewToken(32)
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	if _, err := s.repo.Create(ctx, user.ID, token, expires); err != nil {
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[password-reset][warn] failed to send email to %s: %v", user.Email, err)
		}
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" || newPassword == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "token and password are required")
	}
	if len(newPassword) < 6 {
		return apperrors.Wrap(apperrors.ErrValidation, "password must be at least 6 characters")
	}

	pr, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if pr == nil || pr.UsedAt != nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "invalid token")
	}
	if time.Now().After(pr.ExpiresAt) {
		return apperrors.Wrap(apperrors.ErrExpired, "token expired")
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, pr.UserID, hash); err != nil {
		return err
	}
	// single use
	return s.repo.MarkUsed(ctx, pr.ID)
}
