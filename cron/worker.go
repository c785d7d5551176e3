package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carenest/config"
	"carenest/database"
	"carenest/models"
	"carenest/services/notification"
	"carenest/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingReader loads the current state of a booking.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// InitReminderWorker runs the reminder worker in the background and returns
// the server so the caller can shut it down.
func InitReminderWorker(bookings BookingReader, publisher notification.Publisher, logger *zap.Logger) *asynq.Server {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingReminder, handleBookingReminder(bookings, publisher, logger))

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("reminder worker gave up after max retry attempts")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// handleBookingReminder re-reads the booking and reminds both parties only if
// it is still confirmed when the task fires.
func handleBookingReminder(bookings BookingReader, publisher notification.Publisher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		b, err := bookings.GetByID(ctx, p.BookingID)
		if errors.Is(err, database.ErrNotFound) {
			logger.Warn("reminder for unknown booking", zap.String("bookingId", p.BookingID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("load booking %s: %w", p.BookingID, err)
		}
		if b.Status != models.StatusConfirmed {
			logger.Debug("skipping reminder", zap.String("bookingId", b.ID), zap.String("status", string(b.Status)))
			return nil
		}

		data := map[string]string{
			"bookingId":  b.ID,
			"bookingRef": b.BookingRef,
			"fireDate":   p.FireDate,
		}
		for _, recipient := range []string{b.ParentID, b.NannyID} {
			publisher.Publish(models.Notification{
				RecipientID: recipient,
				Type:        "booking_reminder",
				Title:       p.Title,
				Body:        p.Body,
				Data:        data,
			})
		}
		logger.Info("booking reminder sent", zap.String("bookingId", b.ID))
		return nil
	}
}
