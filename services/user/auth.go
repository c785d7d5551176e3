package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"carenest/database"
	"carenest/models"
	"carenest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// normalizePhone strips formatting characters from a phone number.
func normalizePhone(raw string) (string, error) {
	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	if !phonePattern.MatchString(phone) {
		return "", utils.NewValidationError("phone must be 7 to 15 digits with an optional leading +")
	}
	return phone, nil
}

func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestLoginOTP sends a fresh login code to phone. Only its bcrypt hash is
// stored and any earlier code is replaced.
func (s *DefaultUserService) RequestLoginOTP(ctx context.Context, rawPhone string) (*models.LoginOTPResponse, error) {
	phone, err := normalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	code, err := generateLoginCode()
	if err != nil {
		return nil, utils.NewInternalError("failed to generate login code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternalError("failed to hash login code", err)
	}
	if err := s.Codes.Save(ctx, phone, string(hash), s.Settings.OTPTTL); err != nil {
		s.Logger.Error("RequestLoginOTP: failed to store code", zap.Error(err))
		return nil, utils.NewInternalError("failed to initiate login", err)
	}

	smsCtx, cancel := context.WithTimeout(ctx, s.Settings.SendSMSTimeout)
	defer cancel()
	msg := fmt.Sprintf("Your CareNest login code is %s. It expires in %d minutes.", code, int(s.Settings.OTPTTL.Minutes()))
	if err := s.SMS.SendSMS(smsCtx, phone, msg); err != nil {
		s.Logger.Error("RequestLoginOTP: failed to send code", zap.String("phone", phone), zap.Error(err))
		return nil, utils.NewInternalError("failed to send login code", err)
	}

	resp := &models.LoginOTPResponse{Phone: phone, ExpiresAt: time.Now().Add(s.Settings.OTPTTL)}
	if s.Settings.ExposeCodes {
		resp.Code = code
	}
	return resp, nil
}

// VerifyLoginOTP checks a login code and signs the user in, creating the
// account on first login.
func (s *DefaultUserService) VerifyLoginOTP(ctx context.Context, req models.LoginVerifyRequest) (*models.AuthResponse, error) {
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	hash, _, err := s.Codes.Get(ctx, phone)
	if errors.Is(err, ErrCodeNotFound) {
		return nil, utils.NewExpiredError("login code expired or not requested")
	}
	if err != nil {
		return nil, utils.NewInternalError("failed to verify login code", err)
	}

	// Every attempt takes a slot before the compare, so concurrent guesses
	// cannot exceed MaxAttempts.
	attempt, err := s.Codes.IncrementAttempts(ctx, phone)
	if errors.Is(err, ErrCodeNotFound) {
		return nil, utils.NewExpiredError("login code expired or not requested")
	}
	if err != nil {
		return nil, utils.NewInternalError("failed to verify login code", err)
	}
	if attempt > s.Settings.MaxAttempts {
		if err := s.Codes.Delete(ctx, phone); err != nil {
			s.Logger.Warn("VerifyLoginOTP: failed to drop locked code", zap.Error(err))
		}
		return nil, utils.NewStateError("too many failed attempts, request a new code")
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(req.Code))) != nil {
		return nil, utils.NewInvalidCodeError("invalid login code")
	}

	if err := s.Codes.Delete(ctx, phone); err != nil {
		s.Logger.Warn("VerifyLoginOTP: failed to delete used code", zap.Error(err))
	}

	u, isNew, err := s.findOrCreate(ctx, phone, req)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(u.ID, u.Role, s.Settings.TokenTTL)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue session token", err)
	}

	s.Logger.Info("user signed in", zap.String("userId", u.ID), zap.String("role", string(u.Role)), zap.Bool("newUser", isNew))
	return &models.AuthResponse{Token: token, User: u, IsNewUser: isNew}, nil
}

func (s *DefaultUserService) findOrCreate(ctx context.Context, phone string, req models.LoginVerifyRequest) (*models.User, bool, error) {
	existing, err := s.Repo.GetByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, utils.NewInternalError("failed to load user", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleParent
	}
	if !role.Valid() || role == models.RoleAdmin {
		return nil, false, utils.NewValidationError("role must be parent, nanny, daycare or eldercare")
	}

	u := &models.User{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Role:  role,
	}
	if role.IsProvider() {
		u.Provider = models.DefaultProviderProfile(role)
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// A concurrent first login created the account.
			existing, getErr := s.Repo.GetByPhone(ctx, phone)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, utils.NewInternalError("failed to create user", err)
	}
	return u, true, nil
}
