package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

// In-memory repository fakes. They keep the same nil-on-missing and
// created-bool contracts as the SQL implementations.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) add(u models.User) *models.User {
	r.nextID++
	u.ID = r.nextID
	cp := u
	r.users[u.ID] = &cp
	return &cp
}

func (r *fakeUserRepo) CreateWithWorkspace(_ context.Context, user *models.User, ws *models.Workspace) error {
	r.nextID++
	user.ID = r.nextID
	user.WorkspaceID = &ws.ID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if u, err := r.GetByUsername(ctx, identifier); err != nil || u != nil {
		return u, err
	}
	return r.GetByEmail(ctx, identifier)
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		cp := *r.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) SetWorkspace(_ context.Context, id int64, workspaceID *string) error {
	if u, ok := r.users[id]; ok {
		u.WorkspaceID = workspaceID
	}
	return nil
}

func (r *fakeUserRepo) UpdateRefresh(_ context.Context, id int64, token string, expiresAt time.Time) error {
	if u, ok := r.users[id]; ok {
		u.RefreshToken = &token
		u.RefreshExpiresAt = &expiresAt
		u.RefreshRevoked = false
	}
	return nil
}

func (r *fakeUserRepo) RotateRefresh(_ context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeWorkspaceRepo struct {
	workspaces   map[string]*models.Workspace
	nextInviteID int64
	invites      map[string]*models.WorkspaceInvite // by token
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{
		workspaces: map[string]*models.Workspace{},
		invites:    map[string]*models.WorkspaceInvite{},
	}
}

var _ repositories.WorkspaceRepository = (*fakeWorkspaceRepo)(nil)

func (r *fakeWorkspaceRepo) Create(_ context.Context, ws *models.Workspace) error {
	cp := *ws
	r.workspaces[ws.ID] = &cp
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*models.Workspace, error) {
	if ws, ok := r.workspaces[id]; ok {
		cp := *ws
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeWorkspaceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.workspaces[id]; !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "workspace not found")
	}
	delete(r.workspaces, id)
	return nil
}

func (r *fakeWorkspaceRepo) ListMembers(context.Context, string) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeWorkspaceRepo) UpsertInvite(_ context.Context, inv *models.WorkspaceInvite) error {
	// supersede an existing pending invite for the same pair
	for tok, old := range r.invites {
		if old.Status == models.InvitePending && old.Email == inv.Email && old.WorkspaceID == inv.WorkspaceID {
			inv.ID = old.ID
			inv.CreatedAt = time.Now()
			delete(r.invites, tok)
			cp := *inv
			r.invites[inv.Token] = &cp
			return nil
		}
	}
	return r.CreateInvite(context.Background(), inv)
}

func (r *fakeWorkspaceRepo) CreateInvite(_ context.Context, inv *models.WorkspaceInvite) error {
	r.nextInviteID++
	inv.ID = r.nextInviteID
	inv.CreatedAt = time.Now()
	cp := *inv
	r.invites[inv.Token] = &cp
	return nil
}

func (r *fakeWorkspaceRepo) GetInviteByToken(_ context.Context, token string) (*models.WorkspaceInvite, error) {
	if inv, ok := r.invites[token]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeWorkspaceRepo) MarkInviteAccepted(_ context.Context, id int64) error {
	for _, inv := range r.invites {
		if inv.ID == id {
			inv.Status = models.InviteAccepted
		}
	}
	return nil
}

func (r *fakeWorkspaceRepo) ListInvites(_ context.Context, workspaceID string) ([]*models.WorkspaceInvite, error) {
	var out []*models.WorkspaceInvite
	for _, inv := range r.invites {
		if inv.WorkspaceID == workspaceID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	nextID int64
	rows   map[int64]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{rows: map[int64]*models.Comment{}}
}

var _ repositories.CommentRepository = (*fakeCommentRepo)(nil)

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCommentRepo) ListByTask(_ context.Context, taskID int64) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.rows {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id int64, content string) error {
	c, ok := r.rows[id]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "comment not found")
	}
	c.Content = content
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "comment not found")
	}
	delete(r.rows, id)
	return nil
}

type fakeTaskListRepo struct {
	nextID int64
	lists  map[int64]*models.TaskList
	// cloned records CloneTemplateTasks calls as [template, target]
	cloned [][2]int64
}

func newFakeTaskListRepo() *fakeTaskListRepo {
	return &fakeTaskListRepo{lists: map[int64]*models.TaskList{}}
}

var _ repositories.TaskListRepository = (*fakeTaskListRepo)(nil)

func (r *fakeTaskListRepo) Create(_ context.Context, list *models.TaskList) error {
	for _, l := range r.lists {
		if !l.IsTemplate && !list.IsTemplate &&
			l.OwnerID != nil && list.OwnerID != nil && *l.OwnerID == *list.OwnerID &&
			strings.EqualFold(l.Name, list.Name) {
			return errConflictList
		}
	}
	r.nextID++
	list.ID = r.nextID
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *fakeTaskListRepo) GetByID(_ context.Context, id int64) (*models.TaskList, error) {
	if l, ok := r.lists[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTaskListRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.TaskList, error) {
	var out []*models.TaskList
	for _, l := range r.lists {
		if l.OwnerID != nil && *l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskListRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	lists, _ := r.ListByOwner(ctx, ownerID)
	return len(lists), nil
}

func (r *fakeTaskListRepo) ListTemplates(_ context.Context) ([]*models.TaskList, error) {
	var out []*models.TaskList
	for _, l := range r.lists {
		if l.IsTemplate {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskListRepo) Rename(_ context.Context, id int64, name string) error {
	if l, ok := r.lists[id]; ok {
		l.Name = name
	}
	return nil
}

func (r *fakeTaskListRepo) Delete(_ context.Context, id int64) error {
	delete(r.lists, id)
	return nil
}

func (r *fakeTaskListRepo) CloneTemplateTasks(_ context.Context, templateID, targetID int64) error {
	r.cloned = append(r.cloned, [2]int64{templateID, targetID})
	return nil
}

type fakeTaskRepo struct {
	nextID int64
	tasks  map[int64]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]*models.Task{}}
}

var _ repositories.TaskRepository = (*fakeTaskRepo)(nil)

func (r *fakeTaskRepo) Store(_ context.Context, task *models.Task) error {
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	if t, ok := r.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindAll(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if filter.TaskListID != nil && t.TaskListID != *filter.TaskListID {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id int64, to models.TaskStatus) error {
	if t, ok := r.tasks[id]; ok {
		t.Status = to
	}
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) LatestByPriority(_ context.Context, p models.TaskPriority) (*models.Task, error) {
	var latest *models.Task
	for _, t := range r.tasks {
		if t.Priority != p {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) || (t.CreatedAt.Equal(latest.CreatedAt) && t.ID > latest.ID) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeTaskRepo) FindDueSoon(_ context.Context, window time.Duration) ([]models.Task, error) {
	cutoff := time.Now().Add(window)
	var out []models.Task
	for _, t := range r.tasks {
		if t.DueDate == nil || t.Status == models.StatusCompleted {
			continue
		}
		if t.DueDate.Before(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Upcoming(_ context.Context, limit int) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.DueDate != nil && t.Status != models.StatusCompleted {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context, s models.TaskStatus) (int, error) {
	n := 0
	for _, t := range r.tasks {
		if t.Status == s {
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) CountOverdue(_ context.Context) (int, error) {
	n := 0
	for _, t := range r.tasks {
		if t.DueDate != nil && t.DueDate.Before(time.Now()) && t.Status != models.StatusCompleted {
			n++
		}
	}
	return n, nil
}

type pair struct{ taskID, userID int64 }

type fakeAssignmentRepo struct {
	pairs map[pair]bool
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{pairs: map[pair]bool{}}
}

var _ repositories.AssignmentRepository = (*fakeAssignmentRepo)(nil)

func (r *fakeAssignmentRepo) Create(_ context.Context, taskID, userID int64) (bool, error) {
	p := pair{taskID, userID}
	if r.pairs[p] {
		return false, nil
	}
	r.pairs[p] = true
	return true, nil
}

func (r *fakeAssignmentRepo) Exists(_ context.Context, taskID, userID int64) (bool, error) {
	return r.pairs[pair{taskID, userID}], nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, taskID, userID int64) (bool, error) {
	p := pair{taskID, userID}
	if !r.pairs[p] {
		return false, nil
	}
	delete(r.pairs, p)
	return true, nil
}

func (r *fakeAssignmentRepo) ListByTask(_ context.Context, taskID int64) ([]models.TaskAssignment, error) {
	var out []models.TaskAssignment
	for p := range r.pairs {
		if p.taskID == taskID {
			out = append(out, models.TaskAssignment{TaskID: p.taskID, UserID: p.userID})
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) ListUserIDsByTask(_ context.Context, taskID int64) ([]int64, error) {
	var out []int64
	for p := range r.pairs {
		if p.taskID == taskID {
			out = append(out, p.userID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type fakeNotificationRepo struct {
	nextID int64
	rows   []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) ListPage(_ context.Context, userID int64, limit, offset int) ([]models.Notification, int, error) {
	var mine []models.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			mine = append(mine, *n)
		}
	}
	// newest first, id as tie-break, matching the SQL ordering
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})
	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id int64) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int64) error {
	for _, n := range r.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id int64) error {
	for i, n := range r.rows {
		if n.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeBlocklistRepo struct {
	revoked map[string]time.Time
}

func newFakeBlocklistRepo() *fakeBlocklistRepo {
	return &fakeBlocklistRepo{revoked: map[string]time.Time{}}
}

var _ repositories.TokenBlocklistRepository = (*fakeBlocklistRepo)(nil)

func (r *fakeBlocklistRepo) Add(_ context.Context, jti string, at time.Time) (bool, error) {
	if _, ok := r.revoked[jti]; ok {
		return false, nil
	}
	r.revoked[jti] = at
	return true, nil
}

func (r *fakeBlocklistRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := r.revoked[jti]
	return ok, nil
}

type fakeResetRepo struct {
	nextID int64
	rows   map[string]*models.PasswordReset
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{rows: map[string]*models.PasswordReset{}}
}

var _ repositories.PasswordResetRepository = (*fakeResetRepo)(nil)

func (r *fakeResetRepo) Create(_ context.Context, userID int64, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	r.nextID++
	pr := &models.PasswordReset{
		ID:        r.nextID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.rows[token] = pr
	cp := *pr
	return &cp, nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, token string) (*models.PasswordReset, error) {
	if pr, ok := r.rows[token]; ok {
		cp := *pr
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id int64) error {
	now := time.Now()
	for _, pr := range r.rows {
		if pr.ID == id {
			pr.UsedAt = &now
		}
	}
	return nil
}

// fakeEmailService records sends and can be told to fail.
type fakeEmailService struct {
	welcomes []string
	resets   []string
	invites  []string
	fail     bool
}

var _ EmailService = (*fakeEmailService)(nil)

func (s *fakeEmailService) SendWelcomeEmail(email, _ string) error {
	if s.fail {
		return errMailDown
	}
	s.welcomes = append(s.welcomes, email)
	return nil
}

func (s *fakeEmailService) SendPasswordResetEmail(email, _ string) error {
	if s.fail {
		return errMailDown
	}
	s.resets = append(s.resets, email)
	return nil
}

func (s *fakeEmailService) SendInviteEmail(email, _, _ string) error {
	if s.fail {
		return errMailDown
	}
	s.invites = append(s.invites, email)
	return nil
}

// fakeNotifier records dispatched events.
type fakeNotifier struct {
	events []Event
}

var _ NotificationService = (*fakeNotifier)(nil)

func (s *fakeNotifier) Dispatch(_ context.Context, evt Event) error {
	s.events = append(s.events, evt)
	return nil
}

func (s *fakeNotifier) Notify(context.Context, int64, string) error { return nil }

func (s *fakeNotifier) List(context.Context, int64, int, int) (*NotificationPage, error) {
	return &NotificationPage{}, nil
}

func (s *fakeNotifier) MarkRead(context.Context, authz.Caller, int64) error { return nil }
func (s *fakeNotifier) MarkAllRead(context.Context, authz.Caller) error     { return nil }
func (s *fakeNotifier) Delete(context.Context, authz.Caller, int64) error   { return nil }

var (
	errConflictList = apperrors.Wrap(apperrors.ErrConflict, "task list name already used")
	errMailDown     = errors.New("smtp unavailable")
)
