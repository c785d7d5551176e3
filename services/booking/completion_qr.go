package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carenest/database"
	"carenest/models"
	"carenest/services/storage"
	"carenest/utils"

	"github.com/yeqown/go-qrcode"
	"go.uber.org/zap"
)

func newQRToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateQR issues a one-time completion token. Redeeming it completes the
// booking, so it replaces any earlier token.
func (s *DefaultBookingService) GenerateQR(ctx context.Context, actor models.Actor, id string) (*models.QRCodeResponse, error) {
	b, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.Completable() {
		return nil, utils.NewStateError(fmt.Sprintf("QR code cannot be generated while booking is %s", b.Status))
	}

	token, err := newQRToken()
	if err != nil {
		return nil, utils.NewInternalError("generate QR token failed", err)
	}
	expiresAt := s.now().Add(s.Settings.QRTokenTTL)
	b.Completion.QRToken = &token
	b.Completion.QRExpiresAt = &expiresAt
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	resp := &models.QRCodeResponse{
		BookingID: b.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		ImageURL:  s.renderQR(ctx, b, token),
	}
	s.Logger.Info("completion QR generated", zap.String("bookingId", b.ID), zap.String("actor", actor.UserID))
	return resp, nil
}

// renderQR uploads a QR image of token. The token stays valid without an image.
func (s *DefaultBookingService) renderQR(ctx context.Context, b *models.Booking, token string) string {
	if s.Storage == nil {
		return ""
	}
	qrc, err := qrcode.New(token)
	if err != nil {
		s.Logger.Warn("failed to encode QR code", zap.String("bookingId", b.ID), zap.Error(err))
		return ""
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("qr-%s-%s.jpeg", b.ID, token[:8]))
	if err := qrc.Save(path); err != nil {
		s.Logger.Warn("failed to save QR image", zap.String("path", path), zap.Error(err))
		return ""
	}
	defer os.Remove(path)

	url, err := s.Storage.UploadFile(ctx, path, storage.QRFolder)
	if err != nil {
		s.Logger.Warn("failed to upload QR image", zap.String("bookingId", b.ID), zap.Error(err))
		return ""
	}
	return url
}

// RedeemQR completes the booking that owns token. The token is the only
// input; it is cleared on success so a second scan fails.
func (s *DefaultBookingService) RedeemQR(ctx context.Context, actor models.Actor, token string) (*models.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, utils.NewValidationError("token is required")
	}

	b, err := s.Repo.GetByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewInvalidCodeError("invalid or expired QR code")
		}
		return nil, s.storeError("load booking by QR token", err)
	}
	if !actor.IsAdmin() && !b.IsParty(actor.UserID) {
		return nil, utils.NewForbiddenError("you are not a party to this booking")
	}

	now := s.now()
	if b.Completion.QRExpiresAt == nil || now.After(*b.Completion.QRExpiresAt) {
		return nil, utils.NewExpiredError("QR code has expired, generate a new one")
	}
	if !b.Status.Completable() {
		return nil, utils.NewStateError(fmt.Sprintf("booking cannot be completed while %s", b.Status))
	}

	if err := s.commitCompletion(ctx, b, now); err != nil {
		return nil, err
	}
	s.notifyCompleted(b)
	return b, nil
}
