package booking

import (
	"context"
	"fmt"

	"carenest/models"
	"carenest/utils"
)

// RateBooking stores the caller's rating of a completed booking. Each side
// rates once.
func (s *DefaultBookingService) RateBooking(ctx context.Context, actor models.Actor, id string, req models.RatingRequest) (*models.Booking, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, utils.NewValidationError("score must be between 1 and 5")
	}
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCompleted {
		return nil, utils.NewStateError("only completed bookings can be rated")
	}

	entry := &models.RatingEntry{Score: req.Score, Review: req.Review, RatedAt: s.now()}
	switch {
	case isParent(actor, b):
		if b.Rating.Parent != nil {
			return nil, utils.NewConflictError("you have already rated this booking")
		}
		b.Rating.Parent = entry
	case isProvider(actor, b):
		if b.Rating.Nanny != nil {
			return nil, utils.NewConflictError("you have already rated this booking")
		}
		b.Rating.Nanny = entry
	default:
		return nil, utils.NewForbiddenError("only the parties of a booking can rate it")
	}

	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	other := b.NannyID
	if isProvider(actor, b) {
		other = b.ParentID
	}
	s.notify(other, "booking_rated", "New rating",
		fmt.Sprintf("You received a %d-star rating for booking %s.", req.Score, b.BookingRef), b)
	return b, nil
}
