package bookingRepo

import (
	"context"
	"time"

	"carenest/models"
)

// OverlapCheck inspects the provider's blocking bookings on the requested date
// and returns an error when the new booking must not be inserted.
type OverlapCheck func(existing []models.Booking) error

type BookingRepository interface {
	// CreateExclusive inserts b after check accepts the provider's current
	// pending/confirmed bookings for b.Date. Check and insert are serialized
	// per provider and date.
	CreateExclusive(ctx context.Context, b *models.Booking, check OverlapCheck) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByQRToken(ctx context.Context, token string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter, page, limit int) ([]models.Booking, int64, error)
	FindBlocking(ctx context.Context, nannyID, date string) ([]models.Booking, error)
	// Update replaces the stored booking if it is still at b.Version and bumps
	// the version. It returns database.ErrStateChanged otherwise.
	Update(ctx context.Context, b *models.Booking) error
	// Complete saves the completed booking under the same version guard as
	// Update, credits the provider and appends the earning, all or nothing.
	Complete(ctx context.Context, b *models.Booking, earning *models.Transaction) error
	ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}
