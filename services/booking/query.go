package booking

import (
	"context"

	"carenest/models"
	"carenest/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ListBookings returns the caller's bookings, newest first.
func (s *DefaultBookingService) ListBookings(ctx context.Context, actor models.Actor, q models.BookingQuery) (*models.BookingPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if q.Status != "" && !q.Status.Valid() {
		return nil, utils.NewValidationError("unknown booking status " + string(q.Status))
	}

	filter := models.BookingFilter{Status: q.Status}
	switch {
	case actor.IsAdmin():
		filter.ParentID = q.ParentID
		filter.NannyID = q.NannyID
	case q.As == "parent":
		filter.ParentID = actor.UserID
	case q.As == "nanny" || actor.Role.IsProvider():
		filter.NannyID = actor.UserID
	default:
		filter.ParentID = actor.UserID
	}

	bookings, total, err := s.Repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, s.storeError("list bookings", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return &models.BookingPage{
		Bookings:   bookings,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// GetBooking is a pure read; repeated calls return the same representation
// until the booking is mutated.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.loadVisible(ctx, actor, id)
}
