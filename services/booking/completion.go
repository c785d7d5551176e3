package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carenest/database"
	"carenest/models"
	"carenest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// commitCompletion marks b completed and credits the provider in one atomic
// commit. Whichever completion attempt commits first wins; the others fail on
// the version guard.
func (s *DefaultBookingService) commitCompletion(ctx context.Context, b *models.Booking, now time.Time) error {
	if !b.Status.Completable() {
		return utils.NewStateError(fmt.Sprintf("booking cannot be completed while %s", b.Status))
	}

	b.Status = models.StatusCompleted
	b.CompletedAt = &now
	if b.Completion.VerifiedAt == nil {
		b.Completion.VerifiedAt = &now
	}
	b.Completion.OTPVerified = true
	b.Completion.OTP = ""
	b.Completion.OTPExpiresAt = nil
	b.Completion.QRToken = nil
	b.Completion.QRExpiresAt = nil
	if b.Payment.Status != models.PaymentPaid {
		b.Payment.Status = models.PaymentPaid
		b.Payment.PaidAt = &now
	}

	earning := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      b.NannyID,
		Kind:        models.TransactionEarning,
		Amount:      b.TotalAmount,
		Status:      "completed",
		Description: fmt.Sprintf("Earnings for booking %s", b.BookingRef),
		BookingID:   b.ID,
		BookingRef:  b.BookingRef,
		CreatedAt:   now,
	}

	if err := s.Repo.Complete(ctx, b, earning); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return utils.NewStateError("booking has already been completed")
		}
		return s.storeError("complete booking", err)
	}

	s.Logger.Info("booking completed",
		zap.String("bookingId", b.ID),
		zap.String("nannyId", b.NannyID),
		zap.Float64("earning", earning.Amount))
	return nil
}

func (s *DefaultBookingService) notifyCompleted(b *models.Booking) {
	body := fmt.Sprintf("Booking %s has been completed.", b.BookingRef)
	s.notify(b.ParentID, "booking_completed", "Session completed", body, b)
	s.notify(b.NannyID, "booking_completed", "Session completed", body, b)
}
