package repositories

import (
	"context"
	"database/sql"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type UserRepository interface {
	// CreateWithWorkspace inserts the personal workspace and the user
	// in one transaction: both rows commit or neither does.
	CreateWithWorkspace(ctx context.Context, user *models.User, ws *models.Workspace) error

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetWorkspace(ctx context.Context, id int64, workspaceID *string) error

	// refresh helpers
	UpdateRefresh(ctx context.Context, id int64, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, email, password_hash, role, workspace_id, notifications_enabled,
	refresh_token, refresh_expires_at, refresh_revoked`

func (r *userRepository) CreateWithWorkspace(ctx context.Context, user *models.User, ws *models.Workspace) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workspaces (id, name) VALUES ($1, $2)`, ws.ID, ws.Name); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, workspace_id, notifications_enabled)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.Role, ws.ID, user.NotificationsEnabled,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "user already exists")
		}
		return err
	}
	user.WorkspaceID = &ws.ID

	return tx.Commit()
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		wsID sql.NullString
		rt   sql.NullString
		rte  sql.NullTime
		rr   sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &wsID, &u.NotificationsEnabled,
		&rt, &rte, &rr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if wsID.Valid {
		s := wsID.String
		u.WorkspaceID = &s
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, identifier))
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET username=$1, email=$2, role=$3, notifications_enabled=$4
		WHERE id=$5`,
		user.Username, user.Email, user.Role, user.NotificationsEnabled, user.ID,
	)
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrConflict, "username or email already taken")
	}
	return err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	return err
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "user not found")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, email, role, workspace_id, notifications_enabled
		FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u := &models.User{}
		var wsID sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &wsID, &u.NotificationsEnabled); err != nil {
			return nil, err
		}
		if wsID.Valid {
			s := wsID.String
			u.WorkspaceID = &s
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) SetWorkspace(ctx context.Context, id int64, workspaceID *string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET workspace_id=$1 WHERE id=$2`, workspaceID, id)
	return err
}

func (r *userRepository) UpdateRefresh(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3`, token, expiresAt, id)
	return err
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3
		RETURNING `+userColumns, newToken, newExpiresAt, oldToken))
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token))
}
