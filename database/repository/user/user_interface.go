package userRepo

import (
	"context"

	"carenest/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateProfile applies the non-nil fields of req.
	UpdateProfile(ctx context.Context, id string, req models.UserUpdateRequest) (*models.User, error)
	// UpdateFCMToken stores the device push token of a user.
	UpdateFCMToken(ctx context.Context, id, token string) error
	// EnsureIndexes creates the collection indexes.
	EnsureIndexes(ctx context.Context) error
}
