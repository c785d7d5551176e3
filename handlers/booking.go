package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"carenest/models"
	"carenest/services/booking"
	"carenest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxProofImageSize = 10 << 20

type BookingHandler struct {
	BookingService booking.BookingService
}

func NewBookingHandler(bookingService booking.BookingService) *BookingHandler {
	return &BookingHandler{BookingService: bookingService}
}

// CreateBookingHandler books a provider for a time window.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	getLogger(c).Info("booking created", zap.String("bookingId", b.ID), zap.String("bookingRef", b.BookingRef))
	utils.Success(c, http.StatusCreated, "Booking created successfully", b)
}

func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var q models.BookingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.BookingService.ListBookings(c.Request.Context(), actor, q)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Bookings retrieved", page)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	b, err := h.BookingService.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Booking retrieved", b)
}

// UpdateStatusHandler moves a booking through its lifecycle.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Booking status updated to "+string(b.Status), b)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	// The body is optional.
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.CancelBooking(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Booking cancelled successfully", b)
}

func (h *BookingHandler) RateBookingHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.RateBooking(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Rating submitted", b)
}

func (h *BookingHandler) RecordPaymentHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.RecordPayment(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Payment recorded", b)
}

// IssueCompletionOTPHandler sends a fresh completion code to the parent.
func (h *BookingHandler) IssueCompletionOTPHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	resp, err := h.BookingService.IssueCompletionOTP(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Completion code sent to the parent", resp)
}

func (h *BookingHandler) VerifyCompletionOTPHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.VerifyCompletionOTP(c.Request.Context(), actor, c.Param("id"), req.OTP)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Completion code verified", b)
}

// CompleteWithProofHandler completes an OTP verified booking. The proof is
// either a multipart "proofImage" file or a JSON "proofImageUrl".
func (h *BookingHandler) CompleteWithProofHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	proof, cleanup, err := readProof(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	defer cleanup()

	b, err := h.BookingService.CompleteWithProof(c.Request.Context(), actor, c.Param("id"), proof)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Booking completed successfully", b)
}

var errProofRequired = errors.New("proof image is required")

func readProof(c *gin.Context) (models.ProofInput, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body struct {
			ProofImageURL string `json:"proofImageUrl" binding:"omitempty,url"`
		}
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			return models.ProofInput{}, noop, err
		}
		if body.ProofImageURL == "" {
			return models.ProofInput{}, noop, errProofRequired
		}
		return models.ProofInput{URL: body.ProofImageURL}, noop, nil
	}

	file, err := c.FormFile("proofImage")
	if errors.Is(err, http.ErrMissingFile) {
		url := strings.TrimSpace(c.PostForm("proofImageUrl"))
		if url == "" {
			return models.ProofInput{}, noop, errProofRequired
		}
		return models.ProofInput{URL: url}, noop, nil
	}
	if err != nil {
		return models.ProofInput{}, noop, err
	}
	if file.Size > maxProofImageSize {
		return models.ProofInput{}, noop, errors.New("proof image must be at most 10MB")
	}

	tmp, err := os.CreateTemp("", "proof-*"+filepath.Ext(file.Filename))
	if err != nil {
		return models.ProofInput{}, noop, err
	}
	path := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(path) }

	if err := c.SaveUploadedFile(file, path); err != nil {
		cleanup()
		return models.ProofInput{}, noop, err
	}
	return models.ProofInput{FilePath: path}, cleanup, nil
}

// GenerateQRHandler issues a single use completion QR code.
func (h *BookingHandler) GenerateQRHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	resp, err := h.BookingService.GenerateQR(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "QR code generated", resp)
}

func (h *BookingHandler) RedeemQRHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.RedeemQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.BookingService.RedeemQR(c.Request.Context(), actor, req.Token)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	utils.Success(c, http.StatusOK, "Booking completed successfully", b)
}
