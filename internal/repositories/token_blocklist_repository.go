package repositories

import (
	"context"
	"database/sql"
	"time"
)

// TokenBlocklistRepository records revoked jtis. The table is
// append-only: revocation is never undone.
type TokenBlocklistRepository interface {
	// Add records the jti and reports whether a new row was created;
	// false means the token was already revoked.
	Add(ctx context.Context, jti string, at time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenBlocklistRepository struct {
	db *sql.DB
}

func NewTokenBlocklistRepository(db *sql.DB) TokenBlocklistRepository {
	return &tokenBlocklistRepository{db: db}
}

func (r *tokenBlocklistRepository) Add(ctx context.Context, jti string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO token_blocklist (jti, created_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING`, jti, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *tokenBlocklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM token_blocklist WHERE jti = $1)`, jti).Scan(&revoked)
	return revoked, err
}
