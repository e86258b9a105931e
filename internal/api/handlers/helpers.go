package handlers

import (
	"context"
	"errors"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/obs"
	"route-finder-service/internal/services"

	"github.com/gofiber/fiber/v2"
)

// APIError is the JSON error envelope.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Stage     string `json:"stage,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Query     string `json:"query,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func newError(c *fiber.Ctx, status int, code, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// Classify maps a pipeline or provider error to an HTTP status and error code.
func Classify(err error) (int, string) {
	var (
		nf *domain.NotFoundError
		de *domain.DecodeError
		ne *domain.NetworkError
	)
	switch {
	case errors.Is(err, services.ErrSuperseded):
		return fiber.StatusConflict, "superseded"
	case errors.Is(err, services.ErrInvalidRequest):
		return fiber.StatusBadRequest, "bad_request"
	case errors.As(err, &nf):
		return fiber.StatusNotFound, "place_not_found"
	case errors.Is(err, domain.ErrRouteNotFound):
		return fiber.StatusNotFound, "route_not_found"
	case errors.As(err, &de):
		return fiber.StatusBadGateway, "decode_error"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "upstream_timeout"
	case errors.As(err, &ne):
		return fiber.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.Canceled):
		return fiber.StatusServiceUnavailable, "canceled"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// writeError renders err with the stage/endpoint details of a PipelineError.
func writeError(c *fiber.Ctx, err error) error {
	status, code := Classify(err)
	reqID, _ := c.Locals("requestid").(string)

	body := APIError{
		Status:    status,
		Code:      code,
		Message:   err.Error(),
		RequestID: reqID,
	}

	var pe *services.PipelineError
	if errors.As(err, &pe) {
		body.Stage = string(pe.Stage)
		body.Endpoint = string(pe.Endpoint)
		body.Query = pe.Query
	}

	if status >= fiber.StatusInternalServerError {
		obs.Logger(c.UserContext()).Error("request failed", "code", code, "err", err)
	}

	return c.Status(status).JSON(body)
}
