package api

import (
	"errors"
	"fmt"
	"log/slog"
	"route-finder-service/internal/platform/obs"
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestContext copies the fiber request id into the user context so that
// provider calls log and trace under it.
func requestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}
		c.SetUserContext(obs.WithRequestID(c.UserContext(), rid))
		return c.Next()
	}
}

// accessLog logs end-to-end request duration and response size.
func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Int("bytes", len(c.Response().Body())),
			slog.Int64("dur_ms", time.Since(start).Milliseconds()),
		}
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			attrs = append(attrs, slog.String("req_id", rid))
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), level, fmt.Sprintf("%s %s", method, path), attrs...)
		return err
	}
}

// errorHandler renders errors escaping handlers in the APIError envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
		switch status {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestTimeout:
			code = "timeout"
		default:
			if status < 500 {
				code = "bad_request"
			}
		}
	} else {
		obs.Logger(c.UserContext()).Error("unhandled error", "err", err)
	}

	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(fiber.Map{
		"status":     status,
		"code":       code,
		"message":    msg,
		"request_id": reqID,
	})
}
