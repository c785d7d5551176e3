package handlers

import (
	"net/http"
	"strconv"

	"carenest/models"
	"carenest/services/user"
	"carenest/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(userService user.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// GetProfileHandler returns the authenticated user's profile.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	profile, err := h.UserService.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfileHandler updates the authenticated user's profile.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.UserService.UpdateProfile(c.Request.Context(), actor.UserID, req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Profile updated", updated)
}

func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.UserService.UpdateFCMToken(c.Request.Context(), actor.UserID, req.Token); err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Push token updated", nil)
}

// ListTransactionsHandler pages through the caller's earnings log.
func (h *UserHandler) ListTransactionsHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.UserService.ListTransactions(c.Request.Context(), actor.UserID, page, limit)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Transactions retrieved", result)
}
