package user

import (
	"context"
	"errors"

	"carenest/database"
	"carenest/models"
	"carenest/utils"
)

func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, userError("load user", err)
	}
	return u, nil
}

// UpdateProfile changes the name, email or provider profile of a user. Only
// providers carry a provider profile, and its type always follows the role.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error) {
	current, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, userError("load user", err)
	}
	if req.Provider != nil {
		if !current.IsProvider() {
			return nil, utils.NewValidationError("only providers have a provider profile")
		}
		profile := *req.Provider
		profile.ProviderType = current.Role
		if current.Provider != nil {
			profile.Verified = current.Provider.Verified
		}
		if profile.Skills == nil {
			profile.Skills = []string{}
		}
		req.Provider = &profile
	}

	u, err := s.Repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, userError("update user", err)
	}
	return u, nil
}

func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return utils.NewValidationError("token is required")
	}
	if err := s.Repo.UpdateFCMToken(ctx, userID, token); err != nil {
		return userError("update fcm token", err)
	}
	return nil
}

func (s *DefaultUserService) ListTransactions(ctx context.Context, userID string, page, limit int) (*models.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	txns, total, err := s.Transactions.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, userError("list transactions", err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return &models.TransactionPage{
		Transactions: txns,
		Pagination:   models.NewPagination(page, limit, total),
	}, nil
}

func userError(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewNotFoundError("user not found")
	}
	return utils.NewInternalError(op+" failed", err)
}
