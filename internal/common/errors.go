package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"bizsuite/internal/logger"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error kinds. A DomainError unwraps to exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
)

// DomainError is a business-rule failure carrying a stable code for clients.
type DomainError struct {
	Kind    error
	Code    string
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *DomainError) Unwrap() error { return e.Kind }

// NewDomainError builds an error of the given kind
func NewDomainError(kind error, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// NewFieldError is a validation failure on one field
func NewFieldError(field, message string) *DomainError {
	return NewFieldErrors(map[string]string{field: message})
}

// NewFieldErrors is a validation failure on several fields
func NewFieldErrors(fields map[string]string) *DomainError {
	return &DomainError{Kind: ErrValidation, Code: "VALIDATION_ERROR", Message: "Validation failed", Fields: fields}
}

func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Kind: ErrNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: ErrConflict, Code: code, Message: message}
}

// NewStateError reports an operation that is not allowed in the current state
func NewStateError(code, message string) *DomainError {
	return &DomainError{Kind: ErrInvalidState, Code: code, Message: message}
}

// FieldErrors accumulates field messages and converts to an error only when non-empty.
type FieldErrors map[string]string

func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return NewFieldErrors(f)
}

// IsNotFound reports whether err means a missing row or resource
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound)
}

// HandleServiceError maps a service error onto the JSON error envelope.
func HandleServiceError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		switch {
		case errors.Is(domainErr, ErrValidation):
			return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse(domainErr.Code, domainErr.Message, domainErr.Fields))
		case errors.Is(domainErr, ErrNotFound):
			return c.JSON(http.StatusNotFound, CreateErrorResponse(domainErr.Code, domainErr.Message, nil))
		case errors.Is(domainErr, ErrConflict):
			return c.JSON(http.StatusConflict, CreateErrorResponse(domainErr.Code, domainErr.Message, domainErr.Fields))
		case errors.Is(domainErr, ErrInvalidState):
			return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse(domainErr.Code, domainErr.Message, domainErr.Fields))
		case errors.Is(domainErr, ErrForbidden):
			return c.JSON(http.StatusForbidden, CreateErrorResponse(domainErr.Code, domainErr.Message, nil))
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", "Resource not found", nil))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return c.JSON(http.StatusConflict, CreateErrorResponse("RESOURCE_IN_USE", "The resource is referenced by other records", nil))
	}

	logger.FromContext(c.Request().Context()).Error("unhandled service error",
		zap.Error(err),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
	)
	return SendServerError(c, "An unexpected error occurred")
}

// NewHTTPErrorHandler renders errors that escape handlers in the same envelope.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			message := http.StatusText(httpErr.Code)
			if m, ok := httpErr.Message.(string); ok && m != "" {
				message = m
			}
			_ = c.JSON(httpErr.Code, CreateErrorResponse(codeForStatus(httpErr.Code), message, nil))
			return
		}

		_ = HandleServiceError(c, err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "CLIENT_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= 500 {
			return "SERVER_ERROR"
		}
		return "ERROR"
	}
}
