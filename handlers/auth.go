package handlers

import (
	"net/http"

	"carenest/models"
	"carenest/services/user"
	"carenest/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the phone OTP login flow.
type AuthHandler struct {
	UserService user.UserService
}

func NewAuthHandler(userService user.UserService) *AuthHandler {
	return &AuthHandler{UserService: userService}
}

// RequestOTPHandler sends a login code to the given phone.
func (h *AuthHandler) RequestOTPHandler(c *gin.Context) {
	var req models.LoginOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.UserService.RequestLoginOTP(c.Request.Context(), req.Phone)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Login code sent", resp)
}

// VerifyOTPHandler exchanges a login code for a session token.
func (h *AuthHandler) VerifyOTPHandler(c *gin.Context) {
	var req models.LoginVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.UserService.VerifyLoginOTP(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	status := http.StatusOK
	if resp.IsNewUser {
		status = http.StatusCreated
	}
	utils.Success(c, status, "Signed in successfully", resp)
}
