package handlers

import (
	"context"
	"net/http"
	"testing"

	"carenest/models"
	"carenest/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(svc *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(svc)
	r.POST("/api/auth/otp/request", h.RequestOTPHandler)
	r.POST("/api/auth/otp/verify", h.VerifyOTPHandler)
	return r
}

func TestVerifyOTPHandler(t *testing.T) {
	svc := &MockUserService{
		VerifyLoginOTPFunc: func(ctx context.Context, req models.LoginVerifyRequest) (*models.AuthResponse, error) {
			switch req.Code {
			case "111111":
				return &models.AuthResponse{Token: "tok", User: &models.User{ID: "u-1"}, IsNewUser: true}, nil
			case "222222":
				return &models.AuthResponse{Token: "tok", User: &models.User{ID: "u-2"}}, nil
			}
			return nil, utils.NewInvalidCodeError("invalid login code")
		},
	}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/auth/otp/verify", map[string]string{"phone": "+254700000001", "code": "111111"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/otp/verify", map[string]string{"phone": "+254700000001", "code": "222222"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/otp/verify", map[string]string{"phone": "+254700000001", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid login code", decodeEnvelope(t, w).Message)

	w = doJSON(r, http.MethodPost, "/api/auth/otp/verify", map[string]string{"phone": "+254700000001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestOTPHandler(t *testing.T) {
	var gotPhone string
	svc := &MockUserService{
		RequestLoginOTPFunc: func(ctx context.Context, phone string) (*models.LoginOTPResponse, error) {
			gotPhone = phone
			return &models.LoginOTPResponse{Phone: phone}, nil
		},
	}

	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/otp/request", map[string]string{"phone": "+254700000001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+254700000001", gotPhone)
	assert.True(t, decodeEnvelope(t, w).Success)
}
