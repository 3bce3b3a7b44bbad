package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/weibeld/github-projects-dashboard/internal/app"
)

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Data:    data,
		Meta:    meta(c),
	})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{
		Error: &APIError{Code: code, Message: message},
		Meta:  meta(c),
	})
}

func meta(c *fiber.Ctx) *Meta {
	id, _ := c.Locals(requestIDKey).(string)
	if id == "" {
		return nil
	}
	return &Meta{RequestID: id}
}

// StatusFor maps an application error onto an HTTP status.
func StatusFor(err error) int {
	switch app.Classify(err) {
	case app.KindValidation:
		return fiber.StatusBadRequest
	case app.KindNotFound:
		return fiber.StatusNotFound
	case app.KindConflict:
		return fiber.StatusConflict
	case app.KindAuth:
		return fiber.StatusUnauthorized
	case app.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every error a handler returns in the envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	status, code := describe(err)
	return fail(c, status, code, err.Error())
}

func describe(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, "http"
	}
	var be *badRequest
	if errors.As(err, &be) {
		return fiber.StatusBadRequest, app.KindValidation.String()
	}
	return StatusFor(err), app.Classify(err).String()
}

// badRequest is a malformed request rejected before reaching a service.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func invalid(msg string) error { return &badRequest{msg: msg} }
