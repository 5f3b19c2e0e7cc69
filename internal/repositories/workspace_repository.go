package repositories

import (
	"context"
	"database/sql"

	"taskly/internal/apperrors"
	"taskly/internal/models"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, id string) ([]*models.User, error)

	// UpsertInvite creates a pending invite, superseding any existing
	// pending invite for the same (email, workspace) pair.
	UpsertInvite(ctx context.Context, inv *models.WorkspaceInvite) error
	CreateInvite(ctx context.Context, inv *models.WorkspaceInvite) error
	GetInviteByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error)
	MarkInviteAccepted(ctx context.Context, id int64) error
	ListInvites(ctx context.Context, workspaceID string) ([]*models.WorkspaceInvite, error)
}

type workspaceRepository struct {
	DB *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) WorkspaceRepository {
	return &workspaceRepository{DB: db}
}

func (r *workspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO workspaces (id, name) VALUES ($1, $2)`, ws.ID, ws.Name)
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrConflict, "workspace already exists")
	}
	return err
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	ws := &models.Workspace{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name FROM workspaces WHERE id = $1`, id).Scan(&ws.ID, &ws.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return ws, nil
}

func (r *workspaceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM workspaces WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "workspace not found")
	}
	return nil
}

func (r *workspaceRepository) ListMembers(ctx context.Context, id string) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, email, role, workspace_id, notifications_enabled
		FROM users WHERE workspace_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.User
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
		members = append(members, u)
	}
	return members, rows.Err()
}

const inviteColumns = `id, email, workspace_id, inviter_id, status, token, created_at`

func (r *workspaceRepository) UpsertInvite(ctx context.Context, inv *models.WorkspaceInvite) error {
	// the partial unique index covers pending invites only, so the
	// supersede happens exactly where the invariant lives
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO workspace_invites (email, workspace_id, inviter_id, status, token)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (email, workspace_id) WHERE status = 'pending'
		DO UPDATE SET inviter_id = EXCLUDED.inviter_id, token = EXCLUDED.token, created_at = NOW()
		RETURNING id, created_at`,
		inv.Email, inv.WorkspaceID, inv.InviterID, inv.Status, inv.Token,
	).Scan(&inv.ID, &inv.CreatedAt)
}

func (r *workspaceRepository) CreateInvite(ctx context.Context, inv *models.WorkspaceInvite) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO workspace_invites (email, workspace_id, inviter_id, status, token)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		inv.Email, inv.WorkspaceID, inv.InviterID, inv.Status, inv.Token,
	).Scan(&inv.ID, &inv.CreatedAt)
}

func (r *workspaceRepository) GetInviteByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	inv := &models.WorkspaceInvite{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM workspace_invites WHERE token = $1`, token,
	).Scan(&inv.ID, &inv.Email, &inv.WorkspaceID, &inv.InviterID, &inv.Status, &inv.Token, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *workspaceRepository) MarkInviteAccepted(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE workspace_invites SET status='accepted' WHERE id=$1`, id)
	return err
}

func (r *workspaceRepository) ListInvites(ctx context.Context, workspaceID string) ([]*models.WorkspaceInvite, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM workspace_invites WHERE workspace_id = $1 ORDER BY created_at DESC`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.WorkspaceInvite
	for rows.Next() {
		inv := &models.WorkspaceInvite{}
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.WorkspaceID, &inv.InviterID, &inv.Status, &inv.Token, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}
