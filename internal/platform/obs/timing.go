package obs

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	loggerKey    ctxKey = "logger"
)

var callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "routefinder",
	Subsystem: "provider",
	Name:      "call_duration_seconds",
	Help:      "Duration of outbound provider calls and pipeline stages",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
}, []string{"op", "outcome"})

var tracer = otel.Tracer("route-finder-service")

// WithRequestID stores the request id and a request-scoped logger in ctx.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, reqID)
	return context.WithValue(ctx, loggerKey, slog.Default().With("req_id", reqID))
}

// Logger returns the request-scoped logger, or the default logger.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Start opens a span named name and returns a completion func that records the
// duration, outcome and error. Typical use:
//
//	ctx, done := obs.Start(ctx, "osrm.FetchRoute")
//	defer done(&err)
func Start(ctx context.Context, name string) (context.Context, func(errp *error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, name)
	logger := Logger(ctx)

	return ctx, func(errp *error) {
		dur := time.Since(start)
		defer span.End()

		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
			callDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			logger.Warn("op failed", "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		callDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		logger.Debug("op done", "op", name, "dur_ms", dur.Milliseconds())
	}
}

// Time is Start for callers that do not need the span context.
func Time(ctx context.Context, name string) func(errp *error) {
	_, done := Start(ctx, name)
	return done
}
