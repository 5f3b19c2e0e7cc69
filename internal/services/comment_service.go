package services

import (
	"context"
	"strings"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

type CommentService interface {
	Create(ctx context.Context, caller authz.Caller, taskID int64, content string) (*models.Comment, error)
	ListByTask(ctx context.Context, caller authz.Caller, taskID int64) ([]models.Comment, error)
	Update(ctx context.Context, caller authz.Caller, id int64, content string) (*models.Comment, error)
	Delete(ctx context.Context, caller authz.Caller, id int64) error
}

type commentService struct {
	repo  repositories.CommentRepository
	tasks repositories.TaskRepository
}

func NewCommentService(repo repositories.CommentRepository, tasks repositories.TaskRepository) CommentService {
	return &commentService{repo: repo, tasks: tasks}
}

func (s *commentService) Create(ctx context.Context, caller authz.Caller, taskID int64, content string) (*models.Comment, error) {
	if caller.ID == 0 {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, "no caller identity")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "comment content is required")
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "task not found")
	}
	c := &models.Comment{Content: content, TaskID: taskID, UserID: caller.ID}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListByTask(ctx context.Context, caller authz.Caller, taskID int64) ([]models.Comment, error) {
	if err := authz.Authorize(caller, authz.ActionViewTask, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}

func (s *commentService) Update(ctx context.Context, caller authz.Caller, id int64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "comment content is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "comment not found")
	}
	// only the author may rewrite their words
	if c.UserID != caller.ID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "not the comment author")
	}
	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	c.Content = content
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "comment not found")
	}
	if c.UserID != caller.ID && caller.Role != models.RoleAdmin {
		return apperrors.Wrap(apperrors.ErrForbidden, "not the comment author")
	}
	return s.repo.Delete(ctx, id)
}
