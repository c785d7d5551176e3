package user

import (
	"context"
	"fmt"
	"time"

	"carenest/models"
	"carenest/services/notification"

	"go.uber.org/zap"
)

type UserService interface {
	// Authentication
	RequestLoginOTP(ctx context.Context, phone string) (*models.LoginOTPResponse, error)
	VerifyLoginOTP(ctx context.Context, req models.LoginVerifyRequest) (*models.AuthResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
	ListTransactions(ctx context.Context, userID string, page, limit int) (*models.TransactionPage, error)
}

// UserStore is the subset of the user repository the service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, req models.UserUpdateRequest) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

// TransactionLister reads a user's earnings log.
type TransactionLister interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Transaction, int64, error)
}

// AuthSettings tune the login flow.
type AuthSettings struct {
	OTPTTL         time.Duration
	MaxAttempts    int
	TokenTTL       time.Duration
	ExposeCodes    bool
	SendSMSTimeout time.Duration
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo         UserStore
	Transactions TransactionLister
	Codes        CodeStore
	SMS          notification.SMSSender
	Settings     AuthSettings
	Logger       *zap.Logger
}

func NewUserService(repo UserStore, txns TransactionLister, codes CodeStore, sms notification.SMSSender, settings AuthSettings, logger *zap.Logger) (*DefaultUserService, error) {
	if repo == nil || txns == nil || codes == nil || sms == nil || logger == nil {
		return nil, fmt.Errorf("user service initialization error: missing dependencies")
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 5
	}
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = 30 * 24 * time.Hour
	}
	if settings.SendSMSTimeout <= 0 {
		settings.SendSMSTimeout = 5 * time.Second
	}
	return &DefaultUserService{
		Repo:         repo,
		Transactions: txns,
		Codes:        codes,
		SMS:          sms,
		Settings:     settings,
		Logger:       logger,
	}, nil
}
