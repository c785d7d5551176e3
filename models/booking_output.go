package models

import "time"

// CompletionOTPResponse is returned when a completion code is issued. Code is
// only populated outside production.
type CompletionOTPResponse struct {
	BookingID string    `json:"bookingId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Code      string    `json:"code,omitempty"`
}

// QRCodeResponse carries a freshly generated completion QR token.
type QRCodeResponse struct {
	BookingID string    `json:"bookingId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}
