package handlers

import (
	"errors"
	"fmt"
	"route-finder-service/internal/api/dto"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/services"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// HeaderSessionID selects the client session whose latest request wins.
const HeaderSessionID = "X-Session-ID"

type RouteHandler struct {
	Pipeline *services.Pipeline
	// Sessions may be nil, in which case X-Session-ID is ignored.
	Sessions *services.SessionRegistry
	Validate *validator.Validate
}

// Get handles GET /v1/route?from=..&to=..
func (h *RouteHandler) Get(c *fiber.Ctx) error {
	req, err := routeRequestFromQuery(c)
	if err != nil {
		return errBadRequest(c, err.Error())
	}

	res, err := h.run(c, req)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return c.JSON(dto.NewRouteResponse(res))
}

// Post handles POST /v1/route with a JSON body.
func (h *RouteHandler) Post(c *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid json body")
	}

	res, err := h.run(c, req)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return c.JSON(dto.NewRouteResponse(res))
}

// GeoJSON handles GET /v1/route.geojson.
func (h *RouteHandler) GeoJSON(c *fiber.Ctx) error {
	req, err := routeRequestFromQuery(c)
	if err != nil {
		return errBadRequest(c, err.Error())
	}

	res, err := h.run(c, req)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	b, err := dto.NewRouteFeatureCollection(res).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(b)
}

// run validates req and executes it. A nil result with a nil error means the
// error response has already been written.
func (h *RouteHandler) run(c *fiber.Ctx, req dto.RouteRequest) (*domain.PipelineResult, error) {
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)

	if err := h.Validate.Struct(req); err != nil {
		return nil, errBadRequest(c, validationMessage(err))
	}
	if req.Swap {
		req.From, req.To = req.To, req.From
	}

	svcReq := services.RouteRequest{
		From: req.From,
		To:   req.To,
		Options: domain.RouteOptions{
			Mode:       domain.TravelMode(req.Mode),
			Preference: domain.Preference(req.Preference),
		},
		StraightLine: req.StraightLine,
		PaddingPx:    req.Padding,
	}

	submit := h.Pipeline.Run
	if id := c.Get(HeaderSessionID); id != "" && h.Sessions != nil {
		submit = h.Sessions.Get(id).Submit
	}

	res, err := submit(c.UserContext(), svcReq)
	if err != nil {
		return nil, writeError(c, err)
	}
	return res, nil
}

func routeRequestFromQuery(c *fiber.Ctx) (dto.RouteRequest, error) {
	req := dto.RouteRequest{
		From:         c.Query("from"),
		To:           c.Query("to"),
		Mode:         c.Query("mode"),
		Preference:   c.Query("preference"),
		StraightLine: c.QueryBool("straight_line"),
		Swap:         c.QueryBool("swap"),
	}

	if raw := c.Query("padding"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return dto.RouteRequest{}, fmt.Errorf("padding must be an integer, got %q", raw)
		}
		req.Padding = &n
	}
	return req, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
