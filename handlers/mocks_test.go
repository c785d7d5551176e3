package handlers

import (
	"context"

	"carenest/models"
)

type MockBookingService struct {
	CreateBookingFunc       func(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error)
	ListBookingsFunc        func(ctx context.Context, actor models.Actor, q models.BookingQuery) (*models.BookingPage, error)
	GetBookingFunc          func(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	UpdateStatusFunc        func(ctx context.Context, actor models.Actor, id string, req models.StatusUpdateRequest) (*models.Booking, error)
	CancelBookingFunc       func(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)
	IssueCompletionOTPFunc  func(ctx context.Context, actor models.Actor, id string) (*models.CompletionOTPResponse, error)
	VerifyCompletionOTPFunc func(ctx context.Context, actor models.Actor, id, otp string) (*models.Booking, error)
	CompleteWithProofFunc   func(ctx context.Context, actor models.Actor, id string, proof models.ProofInput) (*models.Booking, error)
	GenerateQRFunc          func(ctx context.Context, actor models.Actor, id string) (*models.QRCodeResponse, error)
	RedeemQRFunc            func(ctx context.Context, actor models.Actor, token string) (*models.Booking, error)
	RateBookingFunc         func(ctx context.Context, actor models.Actor, id string, req models.RatingRequest) (*models.Booking, error)
	RecordPaymentFunc       func(ctx context.Context, actor models.Actor, id string, req models.PaymentRequest) (*models.Booking, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	return m.CreateBookingFunc(ctx, actor, req)
}

func (m *MockBookingService) ListBookings(ctx context.Context, actor models.Actor, q models.BookingQuery) (*models.BookingPage, error) {
	return m.ListBookingsFunc(ctx, actor, q)
}

func (m *MockBookingService) GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return m.GetBookingFunc(ctx, actor, id)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req models.StatusUpdateRequest) (*models.Booking, error) {
	return m.UpdateStatusFunc(ctx, actor, id, req)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	return m.CancelBookingFunc(ctx, actor, id, reason)
}

func (m *MockBookingService) IssueCompletionOTP(ctx context.Context, actor models.Actor, id string) (*models.CompletionOTPResponse, error) {
	return m.IssueCompletionOTPFunc(ctx, actor, id)
}

func (m *MockBookingService) VerifyCompletionOTP(ctx context.Context, actor models.Actor, id, otp string) (*models.Booking, error) {
	return m.VerifyCompletionOTPFunc(ctx, actor, id, otp)
}

func (m *MockBookingService) CompleteWithProof(ctx context.Context, actor models.Actor, id string, proof models.ProofInput) (*models.Booking, error) {
	return m.CompleteWithProofFunc(ctx, actor, id, proof)
}

func (m *MockBookingService) GenerateQR(ctx context.Context, actor models.Actor, id string) (*models.QRCodeResponse, error) {
	return m.GenerateQRFunc(ctx, actor, id)
}

func (m *MockBookingService) RedeemQR(ctx context.Context, actor models.Actor, token string) (*models.Booking, error) {
	return m.RedeemQRFunc(ctx, actor, token)
}

func (m *MockBookingService) RateBooking(ctx context.Context, actor models.Actor, id string, req models.RatingRequest) (*models.Booking, error) {
	return m.RateBookingFunc(ctx, actor, id, req)
}

func (m *MockBookingService) RecordPayment(ctx context.Context, actor models.Actor, id string, req models.PaymentRequest) (*models.Booking, error) {
	return m.RecordPaymentFunc(ctx, actor, id, req)
}

type MockUserService struct {
	RequestLoginOTPFunc  func(ctx context.Context, phone string) (*models.LoginOTPResponse, error)
	VerifyLoginOTPFunc   func(ctx context.Context, req models.LoginVerifyRequest) (*models.AuthResponse, error)
	GetProfileFunc       func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc    func(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error)
	UpdateFCMTokenFunc   func(ctx context.Context, userID, token string) error
	ListTransactionsFunc func(ctx context.Context, userID string, page, limit int) (*models.TransactionPage, error)
}

func (m *MockUserService) RequestLoginOTP(ctx context.Context, phone string) (*models.LoginOTPResponse, error) {
	return m.RequestLoginOTPFunc(ctx, phone)
}

func (m *MockUserService) VerifyLoginOTP(ctx context.Context, req models.LoginVerifyRequest) (*models.AuthResponse, error) {
	return m.VerifyLoginOTPFunc(ctx, req)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, userID, req)
}

func (m *MockUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	return m.UpdateFCMTokenFunc(ctx, userID, token)
}

func (m *MockUserService) ListTransactions(ctx context.Context, userID string, page, limit int) (*models.TransactionPage, error) {
	return m.ListTransactionsFunc(ctx, userID, page, limit)
}
