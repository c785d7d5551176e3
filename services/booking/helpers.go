package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"carenest/database"
	"carenest/models"
	"carenest/utils"

	"go.uber.org/zap"
)

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newBookingRef returns "BK" followed by 10 random uppercase alphanumerics.
func newBookingRef() (string, error) {
	buf := make([]byte, 10)
	alphabetLen := big.NewInt(int64(len(refAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = refAlphabet[n.Int64()]
	}
	return "BK" + string(buf), nil
}

// loadVisible fetches a booking the actor is allowed to see.
func (s *DefaultBookingService) loadVisible(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	if id == "" {
		return nil, utils.NewValidationError("booking id is required")
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("load booking", err)
	}
	if !actor.IsAdmin() && !b.IsParty(actor.UserID) {
		return nil, utils.NewForbiddenError("you are not a party to this booking")
	}
	return b, nil
}

// save persists b under its read version.
func (s *DefaultBookingService) save(ctx context.Context, b *models.Booking) error {
	if err := s.Repo.Update(ctx, b); err != nil {
		return s.storeError("update booking", err)
	}
	return nil
}

// storeError maps repository failures onto the error taxonomy.
func (s *DefaultBookingService) storeError(op string, err error) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, database.ErrNotFound):
		return utils.NewNotFoundError("booking not found")
	case errors.Is(err, database.ErrStateChanged):
		return utils.NewStateError("booking was modified by another request, reload and try again")
	case errors.Is(err, database.ErrDuplicate):
		return utils.NewConflictError("booking already exists")
	}
	s.Logger.Error("booking store failure", zap.String("op", op), zap.Error(err))
	return utils.NewInternalError(op+" failed", err)
}

func (s *DefaultBookingService) lookupUser(ctx context.Context, id, label string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError(label + " not found")
		}
		return nil, utils.NewInternalError("load "+label+" failed", err)
	}
	return u, nil
}

// notify publishes a booking event. Delivery happens on the queue worker.
func (s *DefaultBookingService) notify(recipientID, kind, title, body string, b *models.Booking) {
	if recipientID == "" {
		return
	}
	s.Notifier.Publish(models.Notification{
		RecipientID: recipientID,
		Type:        kind,
		Title:       title,
		Body:        body,
		Data: map[string]string{
			"bookingId":  b.ID,
			"bookingRef": b.BookingRef,
			"status":     string(b.Status),
			"date":       b.Date,
			"startTime":  b.StartTime,
		},
	})
}

func describeWindow(b *models.Booking) string {
	return fmt.Sprintf("%s %s-%s", b.Date, b.StartTime, b.EndTime)
}

func isProvider(actor models.Actor, b *models.Booking) bool {
	return actor.UserID != "" && actor.UserID == b.NannyID
}

func isParent(actor models.Actor, b *models.Booking) bool {
	return actor.UserID != "" && actor.UserID == b.ParentID
}
