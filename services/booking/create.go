package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carenest/database"
	"carenest/models"
	"carenest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRefAttempts = 3

// CreateBooking validates the request and stores a pending booking unless the
// provider already has an overlapping pending or confirmed booking that day.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	parentID := actor.UserID
	if actor.IsAdmin() && req.ParentID != "" {
		parentID = req.ParentID
	}
	if parentID == "" {
		return nil, utils.NewValidationError("parentId is required")
	}
	if req.NannyID == parentID {
		return nil, utils.NewValidationError("cannot book yourself")
	}

	if _, err := parseDate(req.Date, s.Settings.Location); err != nil {
		return nil, utils.NewValidationError("date must be in YYYY-MM-DD format")
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid startTime: %v", err))
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid endTime: %v", err))
	}
	if start.minutes() >= end.minutes() {
		return nil, utils.NewValidationError("startTime must be before endTime")
	}
	if req.TotalHours <= 0 {
		return nil, utils.NewValidationError("totalHours must be greater than zero")
	}
	if req.HourlyRate < 0 || req.TotalAmount < 0 {
		return nil, utils.NewValidationError("amounts cannot be negative")
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	if !method.Valid() {
		return nil, utils.NewValidationError("paymentMethod must be cash, online or wallet")
	}

	if _, err := s.lookupUser(ctx, parentID, "parent"); err != nil {
		return nil, err
	}
	provider, err := s.lookupUser(ctx, req.NannyID, "provider")
	if err != nil {
		return nil, err
	}
	if !provider.IsProvider() {
		return nil, utils.NewValidationError("selected user is not a care provider")
	}

	now := s.now()
	b := &models.Booking{
		ID:          uuid.New().String(),
		ParentID:    parentID,
		NannyID:     provider.ID,
		Date:        strings.TrimSpace(req.Date),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		TotalHours:  req.TotalHours,
		HourlyRate:  req.HourlyRate,
		TotalAmount: req.TotalAmount,
		Notes:       req.Notes,
		Address:     req.Address,
		Status:      models.StatusPending,
		Payment: models.Payment{
			Status: models.PaymentPending,
			Method: method,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	check := overlapCheck(newHourSpan(start, end))
	for attempt := 1; ; attempt++ {
		ref, err := newBookingRef()
		if err != nil {
			return nil, utils.NewInternalError("generate booking reference failed", err)
		}
		b.BookingRef = ref

		err = s.Repo.CreateExclusive(ctx, b, check)
		if err == nil {
			break
		}
		if errors.Is(err, database.ErrDuplicate) && attempt < maxRefAttempts {
			s.Logger.Warn("booking reference collision, retrying", zap.String("bookingRef", ref))
			continue
		}
		return nil, s.storeError("create booking", err)
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("bookingRef", b.BookingRef),
		zap.String("parentId", b.ParentID),
		zap.String("nannyId", b.NannyID))

	s.notify(b.NannyID, "booking_request", "New booking request",
		fmt.Sprintf("You have a new booking request for %s.", describeWindow(b)), b)
	return b, nil
}
