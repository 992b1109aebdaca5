package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/middleware"
	"github.com/elvongray/shipping-labels/internal/service"
)

// TimeFormat is the standard time format for API responses (RFC3339)
const TimeFormat = time.RFC3339

// Machine-readable error codes carried in the error envelope.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeInvalidFile     = "INVALID_FILE"
	CodeNotFound        = "NOT_FOUND"
	CodePurchasedLocked = "PURCHASED_LOCKED"
	CodeUnknownAction   = "UNKNOWN_ACTION"
	CodeTermsRequired   = "TERMS_REQUIRED"
	CodeEmptyImport     = "EMPTY_IMPORT"
	CodeNotReady        = "NOT_READY"
	CodeInternal        = "INTERNAL"
)

// ErrorBody is the error envelope returned by every failing endpoint.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body under an "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error writes an error envelope with the given status and code.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// ErrorWithDetails writes an error envelope carrying structured details.
func ErrorWithDetails(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// ServiceError maps a service-layer error onto the right HTTP status and
// error code. Unknown errors become a logged 500.
func ServiceError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidationError, "validation failed", verrs)
		return
	}

	switch {
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrShipmentNotFound),
		errors.Is(err, service.ErrPresetNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrPurchasedLocked):
		Error(c, http.StatusConflict, CodePurchasedLocked, err.Error())
	case errors.Is(err, service.ErrUnknownAction):
		Error(c, http.StatusBadRequest, CodeUnknownAction, err.Error())
	case errors.Is(err, service.ErrInvalidPayload):
		Error(c, http.StatusBadRequest, CodeValidationError, err.Error())
	case errors.Is(err, service.ErrTermsRequired):
		Error(c, http.StatusBadRequest, CodeTermsRequired, err.Error())
	case errors.Is(err, service.ErrEmptyImport):
		Error(c, http.StatusBadRequest, CodeEmptyImport, err.Error())
	case errors.Is(err, service.ErrNotReady):
		Error(c, http.StatusBadRequest, CodeNotReady, err.Error())
	case errors.Is(err, service.ErrNoDataRows):
		Error(c, http.StatusBadRequest, CodeInvalidFile, err.Error())
	default:
		logger.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		Error(c, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
