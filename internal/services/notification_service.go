package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
	"taskly/internal/repositories"
)

// EventType identifies a lifecycle transition that may produce a
// notification.
type EventType string

const (
	EventAssigned   EventType = "assignment-created"
	EventUnassigned EventType = "assignment-removed"
	EventDueSoon    EventType = "deadline-imminent"
)

// Event is the input to Dispatch: a transition on a task, addressed
// to one recipient.
type Event struct {
	Type        EventType
	Task        *models.Task
	RecipientID int64
}

func (e Event) message() string {
	switch e.Type {
	case EventAssigned:
		return "You have been assigned to task: " + e.Task.Title
	case EventUnassigned:
		return "You have been removed from task: " + e.Task.Title
	case EventDueSoon:
		return fmt.Sprintf("Task '%s' is due soon!", e.Task.Title)
	}
	return ""
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	TotalPages    int                   `json:"total_pages"`
	CurrentPage   int                   `json:"current_page"`
}

type NotificationService interface {
	// Dispatch turns a lifecycle event into at most one notification
	// row. A muted recipient gets nothing at all: no row, no signal.
	Dispatch(ctx context.Context, evt Event) error

	// Notify stores a free-form message for a user (self-notification
	// endpoint); same mute semantics as Dispatch.
	Notify(ctx context.Context, userID int64, message string) error

	List(ctx context.Context, userID int64, page, perPage int) (*NotificationPage, error)
	MarkRead(ctx context.Context, caller authz.Caller, id int64) error
	MarkAllRead(ctx context.Context, caller authz.Caller) error
	Delete(ctx context.Context, caller authz.Caller, id int64) error
}

type notificationService struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
	tg    *TelegramService
}

func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, tg *TelegramService) NotificationService {
	return &notificationService{repo: repo, users: users, tg: tg}
}

func (s *notificationService) Dispatch(ctx context.Context, evt Event) error {
	if evt.Task == nil || evt.RecipientID == 0 {
		return apperrors.Wrap(apperrors.ErrValidation, "event needs a task and a recipient")
	}
	msg := evt.message()
	if msg == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "unknown event type %q", evt.Type)
	}
	return s.store(ctx, evt.RecipientID, msg, &evt.Task.ID)
}

func (s *notificationService) Notify(ctx context.Context, userID int64, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "message is required")
	}
	return s.store(ctx, userID, message, nil)
}

func (s *notificationService) store(ctx context.Context, userID int64, message string, taskID *int64) error {
	recipient, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if recipient == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "recipient not found")
	}
	// hard mute: the row is not created either
	if !recipient.NotificationsEnabled {
		log.Printf("[notify][skip] user=%d muted", userID)
		return nil
	}

	n := &models.Notification{Message: message, UserID: userID, TaskID: taskID}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	// best effort, never fails the dispatch
	if s.tg != nil {
		if err := s.tg.Send(fmt.Sprintf("%s: %s", recipient.Username, message)); err != nil {
			log.Printf("[notify][warn] telegram delivery failed for user=%d: %v", userID, err)
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID int64, page, perPage int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 5
	}
	items, total, err := s.repo.ListPage(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	totalPages := (total + perPage - 1) / perPage
	return &NotificationPage{
		Notifications: items,
		TotalPages:    totalPages,
		CurrentPage:   page,
	}, nil
}

func (s *notificationService) getOwned(ctx context.Context, caller authz.Caller, id int64) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "notification not found")
	}
	if n.UserID != caller.ID && caller.Role != models.RoleAdmin {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "not the recipient")
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller authz.Caller, id int64) error {
	n, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, n.ID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller authz.Caller) error {
	return s.repo.MarkAllRead(ctx, caller.ID)
}

func (s *notificationService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	n, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, n.ID)
}
