package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "carenest/database/repository/booking"
	"carenest/models"
	"carenest/services/notification"
	"carenest/services/payment"
	"carenest/services/storage"
	"carenest/services/tasks"

	"go.uber.org/zap"
)

// BookingService drives the booking lifecycle: creation, listing, status
// transitions, cancellation and the two completion handshakes.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor, q models.BookingQuery) (*models.BookingPage, error)
	GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req models.StatusUpdateRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)

	IssueCompletionOTP(ctx context.Context, actor models.Actor, id string) (*models.CompletionOTPResponse, error)
	VerifyCompletionOTP(ctx context.Context, actor models.Actor, id, otp string) (*models.Booking, error)
	CompleteWithProof(ctx context.Context, actor models.Actor, id string, proof models.ProofInput) (*models.Booking, error)
	GenerateQR(ctx context.Context, actor models.Actor, id string) (*models.QRCodeResponse, error)
	RedeemQR(ctx context.Context, actor models.Actor, token string) (*models.Booking, error)

	RateBooking(ctx context.Context, actor models.Actor, id string, req models.RatingRequest) (*models.Booking, error)
	RecordPayment(ctx context.Context, actor models.Actor, id string, req models.PaymentRequest) (*models.Booking, error)
}

// UserReader resolves parties of a booking.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Settings are the tunable booking rules.
type Settings struct {
	CancellationCutoff    time.Duration
	CompletionOTPTTL      time.Duration
	QRTokenTTL            time.Duration
	ReminderLead          time.Duration
	AllowDirectCompletion bool
	// ExposeCodes echoes completion codes in responses. Never set in production.
	ExposeCodes   bool
	Location      *time.Location
	NotifyTimeout time.Duration
}

// DefaultSettings returns the production rules.
func DefaultSettings() Settings {
	return Settings{
		CancellationCutoff: 4 * time.Hour,
		CompletionOTPTTL:   10 * time.Minute,
		QRTokenTTL:         24 * time.Hour,
		ReminderLead:       time.Hour,
		Location:           time.UTC,
		NotifyTimeout:      5 * time.Second,
	}
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Users     UserReader
	Notifier  notification.Publisher
	SMS       notification.SMSSender
	Reminders tasks.ReminderScheduler
	// Storage and Refunder are optional.
	Storage  storage.StorageService
	Refunder payment.Refunder
	Settings Settings
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewBookingService(
	repo bookingRepo.BookingRepository,
	users UserReader,
	notifier notification.Publisher,
	sms notification.SMSSender,
	reminders tasks.ReminderScheduler,
	store storage.StorageService,
	refunder payment.Refunder,
	settings Settings,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if repo == nil || users == nil || notifier == nil || sms == nil || logger == nil {
		return nil, fmt.Errorf("booking service initialization error: missing dependencies")
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &DefaultBookingService{
		Repo:      repo,
		Users:     users,
		Notifier:  notifier,
		SMS:       sms,
		Reminders: reminders,
		Storage:   store,
		Refunder:  refunder,
		Settings:  settings,
		Logger:    logger,
		Now:       time.Now,
	}, nil
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
