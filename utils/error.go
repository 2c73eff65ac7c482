package utils

import (
	"errors"
	"fmt"
	"net/http"

	"clinicbook/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures for the HTTP envelope.
type ErrorKind int

const (
	KindServer ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
)

// AppError is the error type returned by services. Handlers translate it into
// the uniform JSON envelope.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status. Conflicts reuse 400.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(format string, args ...any) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewServerError(message string, err error) error {
	return &AppError{Kind: KindServer, Message: message, Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondOK writes a successful envelope.
func RespondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// RespondError writes a failure envelope. Server errors carry a generic
// message in production; crafted messages always pass through.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindServer, Message: "Internal server error", Err: err}
	}

	status := appErr.Status()
	resp := Response{Success: false, Message: appErr.Message}

	if status >= http.StatusInternalServerError {
		GetLogger().Error(appErr.Message,
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
		if config.IsProduction() {
			resp.Message = "Internal server error"
		} else if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
	} else {
		GetLogger().Warn(appErr.Message, zap.String("path", c.FullPath()))
	}

	c.JSON(status, resp)
}

// JSONError sends a standardized failure envelope with an explicit status.
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	resp := Response{Success: false, Message: message}
	if !config.IsProduction() {
		resp.Error = details
	}
	c.JSON(status, resp)
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
					Success: false,
					Message: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
