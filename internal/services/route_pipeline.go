package services

import (
	"context"
	"errors"
	"fmt"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
	"route-finder-service/internal/platform/metrics"
	"route-finder-service/internal/platform/obs"
	"route-finder-service/internal/ports"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidRequest marks requests rejected before any provider call.
var ErrInvalidRequest = errors.New("invalid request")

// State of a single pipeline run.
type State int

const (
	StateIdle State = iota
	StateResolvingEndpoints
	StateFetchingRoute
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingEndpoints:
		return "resolving_endpoints"
	case StateFetchingRoute:
		return "fetching_route"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool { return s == StateReady || s == StateFailed }

type Stage string

const (
	StageResolve Stage = "resolve"
	StageRoute   Stage = "route"
	StageFit     Stage = "fit"
)

type Endpoint string

const (
	EndpointOrigin      Endpoint = "origin"
	EndpointDestination Endpoint = "destination"
)

// PipelineError names the stage that failed and, for resolution failures,
// which endpoint and query could not be resolved.
type PipelineError struct {
	Stage    Stage
	Endpoint Endpoint
	Query    string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Stage == StageResolve {
		return fmt.Sprintf("resolve %s %q: %v", e.Endpoint, e.Query, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Transition is reported to the observer on every state change.
type Transition struct {
	Generation uint64
	From       State
	To         State
	Err        error
}

// RouteRequest carries the two place queries of one user request.
type RouteRequest struct {
	From    string
	To      string
	Options domain.RouteOptions
	// StraightLine skips the routing service and uses the great-circle segment.
	StraightLine bool
	// PaddingPx overrides the pipeline's default viewport padding when set.
	PaddingPx *int
}

type PipelineConfig struct {
	Geocoder ports.Geocoder
	Router   ports.RouteClient
	Fitter   geo.Fitter
	// Default viewport padding in pixels.
	PaddingPx int
	// Provider names echoed in results.
	GeocoderName string
	RouterName   string
	OnTransition func(Transition)
}

// Pipeline resolves two place queries, fetches the route between them and
// fits a viewport around it. A Pipeline holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	geocoder     ports.Geocoder
	router       ports.RouteClient
	fitter       geo.Fitter
	padding      int
	geocoderName string
	routerName   string
	onTransition func(Transition)
}

func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Geocoder == nil {
		return nil, errors.New("new pipeline: geocoder is nil")
	}
	if cfg.Router == nil {
		return nil, errors.New("new pipeline: route client is nil")
	}
	if cfg.Fitter == (geo.Fitter{}) {
		cfg.Fitter = geo.DefaultFitter
	}
	if cfg.PaddingPx < 0 {
		return nil, fmt.Errorf("new pipeline: padding %d must not be negative", cfg.PaddingPx)
	}

	return &Pipeline{
		geocoder:     cfg.Geocoder,
		router:       cfg.Router,
		fitter:       cfg.Fitter,
		padding:      cfg.PaddingPx,
		geocoderName: cfg.GeocoderName,
		routerName:   cfg.RouterName,
		onTransition: cfg.OnTransition,
	}, nil
}

// Geocoder exposes the configured geocoder for single lookups.
func (p *Pipeline) Geocoder() ports.Geocoder { return p.geocoder }

// Providers returns the configured geocoder and router names.
func (p *Pipeline) Providers() (geocoder, router string) { return p.geocoderName, p.routerName }

// Run executes one request outside of any Session.
func (p *Pipeline) Run(ctx context.Context, req RouteRequest) (*domain.PipelineResult, error) {
	return p.run(ctx, 0, req)
}

func (p *Pipeline) validate(req RouteRequest) error {
	switch req.Options.Mode {
	case "", domain.TravelModeDriving:
	default:
		return fmt.Errorf("%w: unsupported travel mode %q", ErrInvalidRequest, req.Options.Mode)
	}
	switch req.Options.Preference {
	case domain.PreferenceDefault, domain.PreferenceFastest, domain.PreferenceShortest:
	default:
		return fmt.Errorf("%w: unsupported preference %q", ErrInvalidRequest, req.Options.Preference)
	}
	if req.PaddingPx != nil && *req.PaddingPx < 0 {
		return fmt.Errorf("%w: padding must not be negative", ErrInvalidRequest)
	}
	return nil
}

// run is one pass through the state machine. It always ends in Ready or Failed.
func (p *Pipeline) run(ctx context.Context, generation uint64, req RouteRequest) (_ *domain.PipelineResult, err error) {
	ctx, done := obs.Start(ctx, "pipeline.Run")
	defer done(&err)

	r := &runTracker{pipeline: p, ctx: ctx, generation: generation, state: StateIdle}

	if err = p.validate(req); err != nil {
		r.fail(err)
		return nil, err
	}

	r.advance(StateResolvingEndpoints, nil)
	origin, destination, err := p.resolveEndpoints(ctx, req.From, req.To)
	if err != nil {
		r.fail(err)
		return nil, err
	}

	r.advance(StateFetchingRoute, nil)
	straight := req.StraightLine
	if sl, ok := p.router.(ports.StraightLineRouter); ok && sl.StraightLine() {
		straight = true
	}

	var route domain.Route
	if req.StraightLine {
		route = domain.Route{
			Points:         []domain.Coordinates{origin.Coordinates, destination.Coordinates},
			DistanceMeters: geo.DistanceKm(origin.Coordinates, destination.Coordinates) * 1000,
		}
	} else {
		route, err = p.router.FetchRoute(ctx, origin.Coordinates, destination.Coordinates, req.Options)
		if err != nil {
			err = &PipelineError{Stage: StageRoute, Err: err}
			r.fail(err)
			return nil, err
		}
	}
	if len(route.Points) < 2 {
		route.Points = []domain.Coordinates{origin.Coordinates, destination.Coordinates}
	}
	if route.DistanceMeters <= 0 {
		// Provider gave geometry without a length.
		route.DistanceMeters = geo.PathLengthKm(route.Points) * 1000
	}

	padding := p.padding
	if req.PaddingPx != nil {
		padding = *req.PaddingPx
	}
	bounds, viewport, err := p.fitter.Fit(route.Points, padding)
	if err != nil {
		err = &PipelineError{Stage: StageFit, Err: err}
		r.fail(err)
		return nil, err
	}

	result := &domain.PipelineResult{
		Generation:     generation,
		Origin:         origin,
		Destination:    destination,
		Route:          route,
		DistanceKm:     route.DistanceMeters / 1000,
		DistanceSource: domain.DistanceSourceRouted,
		Bounds:         bounds,
		Viewport:       viewport,
		Geocoder:       p.geocoderName,
		Router:         p.routerName,
	}
	if straight {
		result.DistanceKm = geo.DistanceKm(origin.Coordinates, destination.Coordinates)
		result.DistanceSource = domain.DistanceSourceGreatCircle
	}

	r.advance(StateReady, nil)
	return result, nil
}

// resolveEndpoints resolves both queries concurrently. The first failure
// cancels the other call and its result is discarded.
func (p *Pipeline) resolveEndpoints(ctx context.Context, from, to string) (origin, destination domain.ResolvedPlace, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		origin, err = p.resolve(gctx, EndpointOrigin, from)
		return err
	})
	g.Go(func() error {
		var err error
		destination, err = p.resolve(gctx, EndpointDestination, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.ResolvedPlace{}, domain.ResolvedPlace{}, err
	}
	return origin, destination, nil
}

// resolve accepts "lat, lon" literals directly and geocodes anything else.
func (p *Pipeline) resolve(ctx context.Context, endpoint Endpoint, query string) (domain.ResolvedPlace, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.ResolvedPlace{}, &PipelineError{
			Stage:    StageResolve,
			Endpoint: endpoint,
			Query:    query,
			Err:      &domain.NotFoundError{Query: query},
		}
	}

	c, ok, err := domain.ParseLiteral(q)
	if ok {
		if err != nil {
			return domain.ResolvedPlace{}, &PipelineError{
				Stage:    StageResolve,
				Endpoint: endpoint,
				Query:    query,
				Err:      fmt.Errorf("%w: %v", ErrInvalidRequest, err),
			}
		}
		return domain.ResolvedPlace{Query: query, Coordinates: c}, nil
	}

	c, err = p.geocoder.Resolve(ctx, q)
	if err != nil {
		return domain.ResolvedPlace{}, &PipelineError{Stage: StageResolve, Endpoint: endpoint, Query: query, Err: err}
	}
	return domain.ResolvedPlace{Query: query, Coordinates: c}, nil
}

// runTracker records the transitions of a single run.
type runTracker struct {
	pipeline   *Pipeline
	ctx        context.Context
	generation uint64
	state      State
}

func (r *runTracker) advance(to State, err error) {
	from := r.state
	r.state = to

	logger := obs.Logger(r.ctx)
	if err != nil {
		logger.Info("pipeline transition", "generation", r.generation, "from", from.String(), "to", to.String(), "err", err)
	} else {
		logger.Debug("pipeline transition", "generation", r.generation, "from", from.String(), "to", to.String())
	}

	if to.Terminal() {
		metrics.PipelineRuns.WithLabelValues(to.String()).Inc()
	}
	if r.pipeline.onTransition != nil {
		r.pipeline.onTransition(Transition{Generation: r.generation, From: from, To: to, Err: err})
	}
}

func (r *runTracker) fail(err error) {
	stage := "unknown"
	var pe *PipelineError
	switch {
	case errors.As(err, &pe):
		stage = string(pe.Stage)
	case errors.Is(err, ErrInvalidRequest):
		stage = "validate"
	}
	metrics.PipelineFailures.WithLabelValues(stage, ErrorKind(err)).Inc()
	r.advance(StateFailed, err)
}

// ErrorKind classifies err into a short stable label.
func ErrorKind(err error) string {
	var (
		nf *domain.NotFoundError
		de *domain.DecodeError
		ne *domain.NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.As(err, &nf):
		return "not_found"
	case errors.Is(err, domain.ErrRouteNotFound):
		return "route_not_found"
	case errors.As(err, &de):
		return "decode"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &ne):
		return "network"
	default:
		return "internal"
	}
}
