package models

import "time"

type LoginOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// LoginOTPResponse acknowledges a login code request. Code is only populated
// outside production.
type LoginOTPResponse struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
	Code      string    `json:"code,omitempty"`
}

type LoginVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	// Name and Role are used on first login only.
	Name string `json:"name,omitempty" binding:"max=120"`
	Role Role   `json:"role,omitempty"`
}

// AuthResponse carries the session token and the signed-in user.
type AuthResponse struct {
	Token     string `json:"token"`
	User      *User  `json:"user"`
	IsNewUser bool   `json:"isNewUser"`
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
