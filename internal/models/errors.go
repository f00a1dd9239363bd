package models

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// Status overrides the status derived from Code (upstream failures).
	Status int
	frames []uintptr
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Stack renders the call frames captured when the error was constructed.
func (e *AppError) Stack() string {
	if len(e.frames) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.frames)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func newAppError(code, message string, err error) *AppError {
	pcs := make([]uintptr, 16)
	// skip runtime.Callers, newAppError and the exported constructor
	n := runtime.Callers(3, pcs)
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		frames:  pcs[:n],
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s with ID %v not found", resource, id), nil)
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message, nil)
}

// NewConflictError reports a duplicate unique value or a repeated relation toggle.
// It maps to 400, not 409.
func NewConflictError(message string) *AppError {
	return newAppError(CodeConflict, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return newAppError(CodeForbidden, message, nil)
}

// NewUpstreamError wraps a failure reported by an external provider. A status
// of zero or outside the error range becomes 500.
func NewUpstreamError(message string, status int, err error) *AppError {
	appErr := newAppError(CodeUpstream, message, err)
	if status < 400 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	appErr.Status = status
	return appErr
}

func NewInternalError(err error) *AppError {
	return newAppError(CodeInternal, "Internal server error", err)
}

// StatusFor maps an error to the HTTP status it should be reported with.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Status != 0 {
			return appErr.Status
		}
		switch appErr.Code {
		case CodeValidation, CodeConflict:
			return fiber.StatusBadRequest
		case CodeUnauthorized:
			return fiber.StatusUnauthorized
		case CodeForbidden:
			return fiber.StatusForbidden
		case CodeNotFound:
			return fiber.StatusNotFound
		default:
			return fiber.StatusInternalServerError
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// RespondWithError creates a standardized error response. Cause details and the
// captured stack are only written when verbose is set.
func RespondWithError(c *fiber.Ctx, status int, err error, verbose bool) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		if verbose {
			if appErr.Err != nil {
				response.Details = appErr.Err.Error()
			}
			response.Stack = appErr.Stack()
		}
	} else {
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			response = ErrorResponse{Message: fiberErr.Message}
		case verbose:
			response = ErrorResponse{Message: err.Error()}
		default:
			response = ErrorResponse{Message: "Internal server error"}
		}
	}

	return c.Status(status).JSON(response)
}
