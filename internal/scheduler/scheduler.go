package scheduler

import (
	"context"
	"log"
	"time"

	"taskly/internal/services"
)

// Scheduler runs the periodic deadline sweep. It goes through the same
// task read path and notification dispatch as any caller; it has no
// privileged store access.
type Scheduler struct {
	tasks    services.TaskService
	assigns  services.AssignmentService
	notifier services.NotificationService
	interval time.Duration
	window   time.Duration
}

func New(tasks services.TaskService, assigns services.AssignmentService, notifier services.NotificationService, interval, window time.Duration) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		assigns:  assigns,
		notifier: notifier,
		interval: interval,
		window:   window,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[sweep] started interval=%s window=%s", s.interval, s.window)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sweep] stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	start := time.Now()
	tasks, err := s.tasks.FindDueSoon(ctx, s.window)
	if err != nil {
		log.Printf("[sweep][err] find due soon: %v", err)
		return
	}

	notified := 0
	for i := range tasks {
		task := &tasks[i]
		assignees, err := s.assigns.AssigneeIDs(ctx, task.ID)
		if err != nil {
			log.Printf("[sweep][err] assignees for task=%d: %v", task.ID, err)
			continue
		}
		for _, userID := range assignees {
			evt := services.Event{Type: services.EventDueSoon, Task: task, RecipientID: userID}
			if err := s.notifier.Dispatch(ctx, evt); err != nil {
				log.Printf("[sweep][warn] notify task=%d user=%d: %v", task.ID, userID, err)
				continue
			}
			notified++
		}
	}
	log.Printf("[sweep][ok] due=%d notified=%d took=%s", len(tasks), notified, time.Since(start).Truncate(time.Millisecond))
}
