package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"route-finder-service/internal/adapters"
	"route-finder-service/internal/api/dto"
	"route-finder-service/internal/config"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/logging"
	"route-finder-service/internal/services"
	"syscall"

	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: routetool --from <place> --to <place> [flags]")

// routetool runs a single route request against the configured providers and
// prints the result as JSON.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run writes the result document to stdout and everything else, logs
// included, to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("routetool", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "", "origin place name or \"lat, lon\"")
	to := fs.String("to", "", "destination place name or \"lat, lon\"")
	preference := fs.String("preference", "", "route preference: fastest or shortest")
	straight := fs.Bool("straight-line", false, "skip the routing service and use the great-circle segment")
	padding := fs.Int("padding", -1, "viewport padding in pixels (default from config)")
	asGeoJSON := fs.Bool("geojson", false, "print a GeoJSON FeatureCollection")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *from == "" || *to == "" {
		fmt.Fprintln(stderr, errUsage)
		fs.PrintDefaults()
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logging.New(stderr, cfg.Log.Level, "text"))

	pipeline, err := adapters.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	req := services.RouteRequest{
		From:         *from,
		To:           *to,
		Options:      domain.RouteOptions{Preference: domain.Preference(*preference)},
		StraightLine: *straight,
	}
	if *padding >= 0 {
		req.PaddingPx = padding
	}

	res, err := pipeline.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}

	var out any = dto.NewRouteResponse(res)
	if *asGeoJSON {
		out = dto.NewRouteFeatureCollection(res)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
