package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carenest/models"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "booking:reminder"

// NewBookingReminderTask builds a reminder task that fires at fireAt. The task
// id is derived from the booking so a booking is reminded at most once.
func NewBookingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ReminderScheduler queues booking reminders.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// AsynqScheduler enqueues reminders on the asynq queue.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) ScheduleBookingReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewBookingReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", payload.BookingID, err)
	}
	return nil
}
