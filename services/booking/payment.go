package booking

import (
	"context"
	"fmt"

	"carenest/models"
	"carenest/utils"

	"go.uber.org/zap"
)

// RecordPayment marks a booking as paid online or from the wallet. Payment is
// tracked independently of the booking status.
func (s *DefaultBookingService) RecordPayment(ctx context.Context, actor models.Actor, id string, req models.PaymentRequest) (*models.Booking, error) {
	if req.Method != models.PaymentOnline && req.Method != models.PaymentWallet {
		return nil, utils.NewValidationError("method must be online or wallet")
	}
	if req.Method == models.PaymentOnline && req.PaymentIntentID == "" && req.TransactionID == "" {
		return nil, utils.NewValidationError("online payments need a paymentIntentId or transactionId")
	}

	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !isParent(actor, b) {
		return nil, utils.NewForbiddenError("only the parent can record a payment")
	}
	if b.Status == models.StatusCancelled || b.Status == models.StatusRejected {
		return nil, utils.NewStateError(fmt.Sprintf("cannot record a payment for a %s booking", b.Status))
	}
	switch b.Payment.Status {
	case models.PaymentPaid:
		return nil, utils.NewConflictError("booking is already paid")
	case models.PaymentRefunded:
		return nil, utils.NewStateError("booking payment has been refunded")
	}

	now := s.now()
	b.Payment.Status = models.PaymentPaid
	b.Payment.Method = req.Method
	b.Payment.PaidAt = &now
	b.Payment.TransactionID = req.TransactionID
	b.Payment.PaymentIntentID = req.PaymentIntentID
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking payment recorded",
		zap.String("bookingId", b.ID),
		zap.String("method", string(req.Method)))
	s.notify(b.NannyID, "booking_paid", "Payment received",
		fmt.Sprintf("Payment for booking %s has been received.", b.BookingRef), b)
	return b, nil
}
