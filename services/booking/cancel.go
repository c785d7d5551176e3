package booking

import (
	"context"
	"fmt"
	"time"

	"carenest/models"
	"carenest/utils"

	"go.uber.org/zap"
)

// CancelBooking cancels a booking that has not started yet. Parties cannot
// cancel once the start is within the cancellation cutoff.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, actor, b, reason, "")
}

func (s *DefaultBookingService) cancel(ctx context.Context, actor models.Actor, b *models.Booking, reason string, onBehalfOf models.CancelledBy) (*models.Booking, error) {
	if b.Status.Terminal() {
		return nil, utils.NewStateError(fmt.Sprintf("booking is already %s", b.Status))
	}

	by := cancelledBy(actor, b, onBehalfOf)
	now := s.now()
	if by != models.CancelledByAdmin {
		start, err := startInstant(b, s.Settings.Location)
		if err != nil {
			return nil, utils.NewValidationError("booking has an invalid start date or time")
		}
		if start.Sub(now) <= s.Settings.CancellationCutoff {
			return nil, utils.NewStateError(fmt.Sprintf(
				"bookings cannot be cancelled within %s of the start time", humanDuration(s.Settings.CancellationCutoff)))
		}
	}

	b.Status = models.StatusCancelled
	b.Cancellation = &models.Cancellation{
		CancelledBy: by,
		Reason:      reason,
		CancelledAt: now,
	}
	b.Completion.OTP = ""
	b.Completion.OTPExpiresAt = nil
	b.Completion.QRToken = nil
	b.Completion.QRExpiresAt = nil
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingId", b.ID),
		zap.String("cancelledBy", string(by)),
		zap.String("actor", actor.UserID))

	s.refundIfPaid(ctx, b, reason)

	body := fmt.Sprintf("Booking %s for %s has been cancelled.", b.BookingRef, describeWindow(b))
	switch by {
	case models.CancelledByParent:
		s.notify(b.NannyID, "booking_cancelled", "Booking cancelled", body, b)
	case models.CancelledByNanny:
		s.notify(b.ParentID, "booking_cancelled", "Booking cancelled", body, b)
	default:
		s.notify(b.ParentID, "booking_cancelled", "Booking cancelled", body, b)
		s.notify(b.NannyID, "booking_cancelled", "Booking cancelled", body, b)
	}
	return b, nil
}

func cancelledBy(actor models.Actor, b *models.Booking, onBehalfOf models.CancelledBy) models.CancelledBy {
	switch {
	case actor.IsAdmin():
		if onBehalfOf == models.CancelledByParent || onBehalfOf == models.CancelledByNanny {
			return onBehalfOf
		}
		return models.CancelledByAdmin
	case isParent(actor, b):
		return models.CancelledByParent
	default:
		return models.CancelledByNanny
	}
}

// refundIfPaid returns an online payment after cancellation. The cancellation
// stands even when the refund fails.
func (s *DefaultBookingService) refundIfPaid(ctx context.Context, b *models.Booking, reason string) {
	p := b.Payment
	if s.Refunder == nil || p.Status != models.PaymentPaid || p.Method != models.PaymentOnline || p.PaymentIntentID == "" {
		return
	}

	refundID, err := s.Refunder.Refund(ctx, p.PaymentIntentID, reason)
	if err != nil {
		s.Logger.Error("refund failed for cancelled booking", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}

	refundedAt := s.now()
	b.Payment.Status = models.PaymentRefunded
	b.Payment.RefundedAt = &refundedAt
	b.Payment.RefundID = refundID
	if err := s.Repo.Update(ctx, b); err != nil {
		s.Logger.Error("failed to record refund", zap.String("bookingId", b.ID), zap.String("refundId", refundID), zap.Error(err))
	}
}

func humanDuration(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
