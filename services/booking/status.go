package booking

import (
	"context"
	"fmt"
	"time"

	"carenest/models"
	"carenest/utils"

	"go.uber.org/zap"
)

// transitions is the booking state machine. Terminal states have no entry.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCompleted, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether a booking in from may move to to.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus applies one transition of the state machine. The write only
// lands if the booking is unchanged since it was read.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req models.StatusUpdateRequest) (*models.Booking, error) {
	if !req.Status.Valid() {
		return nil, utils.NewValidationError("unknown booking status " + string(req.Status))
	}
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() || b.Status == req.Status {
		return nil, utils.NewStateError(fmt.Sprintf("booking is already %s", b.Status))
	}
	if !CanTransition(b.Status, req.Status) {
		return nil, utils.NewStateError(fmt.Sprintf("cannot change booking status from %s to %s", b.Status, req.Status))
	}

	now := s.now()
	switch req.Status {
	case models.StatusConfirmed:
		if err := requireProvider(actor, b, "confirm"); err != nil {
			return nil, err
		}
		b.Status = models.StatusConfirmed
		b.ConfirmedAt = &now
		if err := s.save(ctx, b); err != nil {
			return nil, err
		}
		s.notify(b.ParentID, "booking_confirmed", "Booking confirmed",
			fmt.Sprintf("Your booking %s for %s has been confirmed.", b.BookingRef, describeWindow(b)), b)
		s.scheduleReminder(ctx, b, now)

	case models.StatusInProgress:
		if err := requireProvider(actor, b, "start"); err != nil {
			return nil, err
		}
		b.Status = models.StatusInProgress
		b.StartedAt = &now
		if err := s.save(ctx, b); err != nil {
			return nil, err
		}
		s.notify(b.ParentID, "booking_started", "Session started",
			fmt.Sprintf("Your booking %s is now in progress.", b.BookingRef), b)

	case models.StatusRejected:
		if err := requireProvider(actor, b, "reject"); err != nil {
			return nil, err
		}
		b.Status = models.StatusRejected
		b.RejectionReason = req.Reason
		if err := s.save(ctx, b); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("Your booking %s was declined.", b.BookingRef)
		if req.Reason != "" {
			body = fmt.Sprintf("Your booking %s was declined: %s", b.BookingRef, req.Reason)
		}
		s.notify(b.ParentID, "booking_rejected", "Booking declined", body, b)

	case models.StatusCancelled:
		return s.cancel(ctx, actor, b, req.Reason, req.CancelledBy)

	case models.StatusCompleted:
		if !s.Settings.AllowDirectCompletion {
			return nil, utils.NewStateError("bookings are completed through the OTP or QR verification endpoints")
		}
		if err := requireProvider(actor, b, "complete"); err != nil {
			return nil, err
		}
		if err := s.commitCompletion(ctx, b, now); err != nil {
			return nil, err
		}
		s.notifyCompleted(b)

	default:
		return nil, utils.NewStateError(fmt.Sprintf("cannot change booking status to %s", req.Status))
	}

	s.Logger.Info("booking status changed",
		zap.String("bookingId", b.ID),
		zap.String("status", string(b.Status)),
		zap.String("actor", actor.UserID))
	return b, nil
}

func requireProvider(actor models.Actor, b *models.Booking, action string) error {
	if actor.IsAdmin() || isProvider(actor, b) {
		return nil
	}
	return utils.NewForbiddenError(fmt.Sprintf("only the provider can %s this booking", action))
}

// scheduleReminder queues a reminder for both parties ahead of the start time.
// Reminders are best effort.
func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking, now time.Time) {
	if s.Reminders == nil {
		return
	}
	start, err := startInstant(b, s.Settings.Location)
	if err != nil {
		s.Logger.Warn("cannot schedule reminder for booking with unparseable start", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	fireAt := start.Add(-s.Settings.ReminderLead)
	if !fireAt.After(now) {
		return
	}

	payload := models.ReminderPayload{
		BookingID:  b.ID,
		BookingRef: b.BookingRef,
		Title:      "Upcoming booking",
		Body:       fmt.Sprintf("Booking %s starts at %s on %s.", b.BookingRef, b.StartTime, b.Date),
		FireDate:   fireAt.Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
	defer cancel()
	if err := s.Reminders.ScheduleBookingReminder(ctx, payload, fireAt); err != nil {
		s.Logger.Warn("failed to schedule booking reminder", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notifyTimeout() time.Duration {
	if s.Settings.NotifyTimeout <= 0 {
		return 5 * time.Second
	}
	return s.Settings.NotifyTimeout
}
