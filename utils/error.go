package utils

import (
	"errors"
	"fmt"
	"net/http"

	"carenest/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindExpired     ErrorKind = "expired"
	KindInvalidCode ErrorKind = "invalid_code"
	KindState       ErrorKind = "state"
	KindForbidden   ErrorKind = "forbidden"
	KindInternal    ErrorKind = "internal"
)

// AppError is a business rule violation with a user-facing message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error  { return &AppError{Kind: KindValidation, Message: msg} }
func NewNotFoundError(msg string) error    { return &AppError{Kind: KindNotFound, Message: msg} }
func NewConflictError(msg string) error    { return &AppError{Kind: KindConflict, Message: msg} }
func NewExpiredError(msg string) error     { return &AppError{Kind: KindExpired, Message: msg} }
func NewInvalidCodeError(msg string) error { return &AppError{Kind: KindInvalidCode, Message: msg} }
func NewStateError(msg string) error       { return &AppError{Kind: KindState, Message: msg} }
func NewForbiddenError(msg string) error   { return &AppError{Kind: KindForbidden, Message: msg} }

// NewInternalError wraps an unexpected fault.
func NewInternalError(msg string, err error) error {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating anything untyped as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindConflict, KindExpired, KindInvalidCode, KindState:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success writes a success envelope.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Failure writes a failure envelope. details are dropped in production.
func Failure(c *gin.Context, status int, message string, details interface{}) {
	resp := Response{Success: false, Message: message}
	if details != nil && !config.IsProduction() {
		resp.Errors = details
	}
	c.JSON(status, resp)
}

// RespondError translates err into a failure envelope.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
	}

	status := StatusFor(appErr.Kind)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		var details interface{}
		if appErr.Err != nil {
			details = appErr.Err.Error()
		}
		Failure(c, status, "Internal Server Error", details)
		return
	}

	logger.Debug("request rejected", zap.String("kind", string(appErr.Kind)), zap.String("message", appErr.Message))
	Failure(c, status, appErr.Message, nil)
}

// ErrorHandler recovers panics and answers with a generic failure envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))
				Failure(c, http.StatusInternalServerError, "Internal Server Error",
					"An unexpected error occurred. Please try again later.")
				c.Abort()
			}
		}()
		c.Next()
	}
}
