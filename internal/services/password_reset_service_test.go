package services

import (
	"context"
	"testing"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

func newResetFixture() (PasswordResetService, *fakeUserRepo, *fakeResetRepo, *fakeEmailService, AuthService) {
	userRepo := newFakeUserRepo()
	resetRepo := newFakeResetRepo()
	emails := &fakeEmailService{}
	auth := NewAuthService(newFakeBlocklistRepo())
	svc := NewPasswordResetService(userRepo, resetRepo, emails, auth)
	return svc, userRepo, resetRepo, emails, auth
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, resetRepo, emails, _ := newResetFixture()

	if err := svc.RequestReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(resetRepo.rows) != 0 {
		t.Error("no token should be issued for unknown accounts")
	}
	if len(emails.resets) != 0 {
		t.Error("no email should be sent for unknown accounts")
	}
}

func TestResetPasswordHappyPath(t *testing.T) {
	svc, userRepo, resetRepo, emails, auth := newResetFixture()
	ctx := context.Background()

	user := userRepo.add(models.User{Username: "alice", Email: "alice@example.com"})
	if err := svc.RequestReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(emails.resets) != 1 {
		t.Fatalf("reset email not sent: %v", emails.resets)
	}

	var token string
	for tok := range resetRepo.rows {
		token = tok
	}
	if err := svc.ResetPassword(ctx, token, "newsecret"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored, _ := userRepo.GetByID(ctx, user.ID)
	if !auth.CheckPassword(stored.PasswordHash, "newsecret") {
		t.Error("password not updated")
	}

	// single use: the same token is spent
	if err := svc.ResetPassword(ctx, token, "another-secret"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("got %v, want NotFound for used token", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, userRepo, resetRepo, _, _ := newResetFixture()
	ctx := context.Background()

	user := userRepo.add(models.User{Username: "alice", Email: "alice@example.com"})
	if _, err := resetRepo.Create(ctx, user.ID, "stale-token", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.ResetPassword(ctx, "stale-token", "newsecret"); !apperrors.Is(err, apperrors.ErrExpired) {
		t.Fatalf("got %v, want Expired", err)
	}
}

func TestResetPasswordValidation(t *testing.T) {
	svc, _, _, _, _ := newResetFixture()
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, "", "newsecret"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("got %v, want ValidationError for missing token", err)
	}
	if err := svc.ResetPassword(ctx, "tok", "short"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("got %v, want ValidationError for short password", err)
	}
	if err := svc.ResetPassword(ctx, "unknown-token", "newsecret"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("got %v, want NotFound for unknown token", err)
	}
}
