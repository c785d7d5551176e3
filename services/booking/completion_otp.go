package booking

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"os"
	"strings"

	"carenest/models"
	"carenest/services/storage"
	"carenest/utils"

	"go.uber.org/zap"
)

// newCompletionCode returns a uniformly random 6-digit code.
func newCompletionCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IssueCompletionOTP replaces any previous code with a fresh one and resets
// verification. The parent receives the code and reads it to the provider.
func (s *DefaultBookingService) IssueCompletionOTP(ctx context.Context, actor models.Actor, id string) (*models.CompletionOTPResponse, error) {
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireProvider(actor, b, "request a completion code for"); err != nil {
		return nil, err
	}
	if !b.Status.Completable() {
		return nil, utils.NewStateError(fmt.Sprintf("completion code cannot be issued while booking is %s", b.Status))
	}

	code, err := newCompletionCode()
	if err != nil {
		return nil, utils.NewInternalError("generate completion code failed", err)
	}
	expiresAt := s.now().Add(s.Settings.CompletionOTPTTL)
	b.Completion.OTP = code
	b.Completion.OTPExpiresAt = &expiresAt
	b.Completion.OTPVerified = false
	b.Completion.VerifiedAt = nil
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.deliverCompletionCode(ctx, b, code)

	resp := &models.CompletionOTPResponse{BookingID: b.ID, ExpiresAt: expiresAt}
	if s.Settings.ExposeCodes {
		resp.Code = code
	}
	return resp, nil
}

func (s *DefaultBookingService) deliverCompletionCode(ctx context.Context, b *models.Booking, code string) {
	minutes := int(s.Settings.CompletionOTPTTL.Minutes())
	msg := fmt.Sprintf("Your completion code for booking %s is %s. It expires in %d minutes.", b.BookingRef, code, minutes)

	parent, err := s.Users.GetByID(ctx, b.ParentID)
	if err != nil {
		s.Logger.Warn("could not load parent for completion code", zap.String("bookingId", b.ID), zap.Error(err))
	} else if parent.Phone != "" {
		smsCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
		if err := s.SMS.SendSMS(smsCtx, parent.Phone, msg); err != nil {
			s.Logger.Warn("failed to send completion code", zap.String("bookingId", b.ID), zap.Error(err))
		}
		cancel()
	}

	s.notify(b.ParentID, "completion_code", "Completion code",
		fmt.Sprintf("Share the completion code sent to you with your provider to close booking %s.", b.BookingRef), b)
}

// VerifyCompletionOTP checks the code against the latest issued one. It does
// not change the booking status.
func (s *DefaultBookingService) VerifyCompletionOTP(ctx context.Context, actor models.Actor, id, otp string) (*models.Booking, error) {
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Completion.OTP == "" || b.Completion.OTPExpiresAt == nil {
		return nil, utils.NewValidationError("no completion code has been issued for this booking")
	}
	if !b.Status.Completable() {
		return nil, utils.NewStateError(fmt.Sprintf("booking cannot be verified while %s", b.Status))
	}
	now := s.now()
	if now.After(*b.Completion.OTPExpiresAt) {
		return nil, utils.NewExpiredError("completion code has expired, request a new one")
	}
	if subtle.ConstantTimeCompare([]byte(b.Completion.OTP), []byte(otp)) != 1 {
		return nil, utils.NewInvalidCodeError("invalid completion code")
	}

	b.Completion.OTPVerified = true
	b.Completion.VerifiedAt = &now
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	s.Logger.Info("completion code verified", zap.String("bookingId", b.ID), zap.String("actor", actor.UserID))
	return b, nil
}

// CompleteWithProof closes a booking whose completion code has been verified.
func (s *DefaultBookingService) CompleteWithProof(ctx context.Context, actor models.Actor, id string, proof models.ProofInput) (*models.Booking, error) {
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireProvider(actor, b, "complete"); err != nil {
		return nil, err
	}
	if !b.Status.Completable() {
		return nil, utils.NewStateError(fmt.Sprintf("booking cannot be completed while %s", b.Status))
	}
	if !b.Completion.OTPVerified {
		return nil, utils.NewStateError("completion code has not been verified")
	}
	if proof.FilePath == "" && strings.TrimSpace(proof.URL) == "" {
		return nil, utils.NewValidationError("proof image is required")
	}

	proofURL, err := s.storeProof(ctx, b, proof)
	if err != nil {
		return nil, err
	}
	b.Completion.ProofImage = proofURL

	if err := s.commitCompletion(ctx, b, s.now()); err != nil {
		return nil, err
	}
	s.notifyCompleted(b)
	return b, nil
}

func (s *DefaultBookingService) storeProof(ctx context.Context, b *models.Booking, proof models.ProofInput) (string, error) {
	if proof.FilePath == "" {
		return strings.TrimSpace(proof.URL), nil
	}
	defer os.Remove(proof.FilePath)

	if s.Storage == nil {
		return "", utils.NewValidationError("proof image uploads are not available, send proofImageUrl instead")
	}
	url, err := s.Storage.UploadFile(ctx, proof.FilePath, storage.ProofFolder)
	if err != nil {
		s.Logger.Error("proof image upload failed", zap.String("bookingId", b.ID), zap.Error(err))
		return "", utils.NewInternalError("upload proof image failed", err)
	}
	return url, nil
}
