package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskly/internal/apperrors"
	"taskly/internal/repositories"
)

// AuthService owns password hashing and session-token revocation.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool

	// RevokeToken records the session's jti. Revoking an already
	// revoked token is a Conflict (double logout).
	RevokeToken(ctx context.Context, jti string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type authService struct {
	blocklist repositories.TokenBlocklistRepository
}

func NewAuthService(blocklist repositories.TokenBlocklistRepository) AuthService {
	return &authService{blocklist: blocklist}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *authService) RevokeToken(ctx context.Context, jti string) error {
	if jti == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "missing token id")
	}
	created, err := s.blocklist.Add(ctx, jti, time.Now().UTC())
	if err != nil {
		return err
	}
	if !created {
		return apperrors.Wrap(apperrors.ErrConflict, "token already revoked")
	}
	return nil
}

func (s *authService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.blocklist.IsRevoked(ctx, jti)
}
