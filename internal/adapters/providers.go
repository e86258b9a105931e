// Package adapters wires the configured geocoding and routing providers.
package adapters

import (
	"fmt"
	"net/http"
	"route-finder-service/internal/adapters/geocoding"
	"route-finder-service/internal/adapters/routing"
	"route-finder-service/internal/config"
	"route-finder-service/internal/geo"
	"route-finder-service/internal/platform/httpclient"
	"route-finder-service/internal/ports"
	"route-finder-service/internal/services"
)

func newHTTPClient(hc config.HTTPConfig, authorization string) *httpclient.Client {
	opts := httpclient.Options{
		Timeout:     hc.Timeout,
		MaxAttempts: hc.MaxAttempts,
		UserAgent:   hc.UserAgent,
	}
	if authorization != "" {
		opts.Header = http.Header{"Authorization": []string{authorization}}
	}
	return httpclient.New(opts)
}

// NewGeocoder returns the Geocoder selected by cfg.Provider.
func NewGeocoder(cfg config.GeocoderConfig, hc config.HTTPConfig) (ports.Geocoder, error) {
	switch cfg.Provider {
	case "", config.GeocoderNominatim:
		return geocoding.NewNominatimGeocoder(newHTTPClient(hc, ""), cfg.BaseURL), nil
	case config.GeocoderORS:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("new geocoder: ORS api key is empty")
		}
		return geocoding.NewORSGeocoder(newHTTPClient(hc, cfg.APIKey), cfg.BaseURL), nil
	case config.GeocoderGoogle:
		return geocoding.NewGoogleGeocoder(cfg.APIKey, cfg.BaseURL, newHTTPClient(hc, "").HTTPClient())
	default:
		return nil, fmt.Errorf("new geocoder: unknown provider %q", cfg.Provider)
	}
}

// NewRouteClient returns the RouteClient selected by cfg.Provider.
func NewRouteClient(cfg config.RouterConfig, hc config.HTTPConfig) (ports.RouteClient, error) {
	switch cfg.Provider {
	case "", config.RouterOSRM:
		return routing.NewOSRMRouteClient(newHTTPClient(hc, ""), cfg.BaseURL, cfg.Geometry)
	case config.RouterORS:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("new route client: ORS api key is empty")
		}
		return routing.NewORSRouteClient(newHTTPClient(hc, cfg.APIKey), cfg.BaseURL, cfg.Units)
	case config.RouterGoogle:
		return routing.NewGoogleRouteClient(cfg.APIKey, cfg.BaseURL, newHTTPClient(hc, "").HTTPClient())
	case config.RouterStraight:
		return routing.NewStraightLineRouteClient(), nil
	default:
		return nil, fmt.Errorf("new route client: unknown provider %q", cfg.Provider)
	}
}

// NewPipeline builds the route pipeline from the full configuration.
func NewPipeline(cfg *config.Config) (*services.Pipeline, error) {
	geocoder, err := NewGeocoder(cfg.Geocoder, cfg.HTTP)
	if err != nil {
		return nil, err
	}
	router, err := NewRouteClient(cfg.Router, cfg.HTTP)
	if err != nil {
		return nil, err
	}

	return services.NewPipeline(services.PipelineConfig{
		Geocoder: geocoder,
		Router:   router,
		Fitter: geo.Fitter{
			WidthPx:  cfg.Viewport.Width,
			HeightPx: cfg.Viewport.Height,
			MaxZoom:  cfg.Viewport.MaxZoom,
		},
		PaddingPx:    cfg.Viewport.Padding,
		GeocoderName: cfg.Geocoder.Provider,
		RouterName:   cfg.Router.Provider,
	})
}
