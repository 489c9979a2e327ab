package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	Stage     string `json:"stage,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errFromDomain maps render and lookup failures onto HTTP statuses.
func errFromDomain(c *fiber.Ctx, err error) error {
	status, code := 500, "internal_error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = 404, "not_found"
	case errors.Is(err, domain.ErrInput):
		status, code = 400, "bad_request"
	case errors.Is(err, domain.ErrGeometry):
		status, code = 422, "unprocessable_geometry"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = 504, "timeout"
	}

	apiErr := APIError{Status: status, Code: code, Message: err.Error()}
	var renderErr *domain.RenderError
	if errors.As(err, &renderErr) {
		apiErr.Stage = renderErr.Stage
	}
	if status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("request failed", "error", err)
	}
	apiErr.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(status).JSON(apiErr)
}
