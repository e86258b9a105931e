package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Router    RouterConfig    `mapstructure:"router"`
	Viewport  ViewportConfig  `mapstructure:"viewport"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// Upper bound on concurrently tracked X-Session-ID sessions.
	MaxSessions int `mapstructure:"max_sessions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig controls outbound provider calls.
type HTTPConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type GeocoderConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
}

type RouterConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	// OSRM geometry encoding: geojson or polyline.
	Geometry string `mapstructure:"geometry"`
	// ORS distance unit: m, km or mi.
	Units string `mapstructure:"units"`
}

type ViewportConfig struct {
	Width   int `mapstructure:"width"`
	Height  int `mapstructure:"height"`
	MaxZoom int `mapstructure:"max_zoom"`
	Padding int `mapstructure:"padding"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
}

const (
	GeocoderNominatim = "nominatim"
	GeocoderORS       = "ors"
	GeocoderGoogle    = "google"

	RouterOSRM     = "osrm"
	RouterORS      = "ors"
	RouterGoogle   = "google"
	RouterStraight = "straight"
)

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (if present), an optional config.yaml and ROUTEFINDER_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found (using environment variables)")
	}

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.max_sessions", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.max_attempts", 1)
	v.SetDefault("http.user_agent", "route-finder-service/1.0")
	v.SetDefault("geocoder.provider", GeocoderNominatim)
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("router.provider", RouterOSRM)
	v.SetDefault("router.base_url", "")
	v.SetDefault("router.api_key", "")
	v.SetDefault("router.geometry", "geojson")
	v.SetDefault("router.units", "m")
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)
	v.SetDefault("viewport.max_zoom", 18)
	v.SetDefault("viewport.padding", 30)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "route-finder-service")
	v.SetDefault("telemetry.endpoint", "localhost:4317")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Get("ROUTEFINDER_CONFIG_DIR", "."))
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// ROUTEFINDER_ROUTER_PROVIDER -> router.provider
	v.SetEnvPrefix("ROUTEFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Geocoder.Provider = strings.ToLower(strings.TrimSpace(cfg.Geocoder.Provider))
	cfg.Router.Provider = strings.ToLower(strings.TrimSpace(cfg.Router.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		errs = append(errs, "server.max_sessions must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}
	if c.HTTP.MaxAttempts < 1 {
		errs = append(errs, "http.max_attempts must be at least 1")
	}

	switch c.Geocoder.Provider {
	case GeocoderNominatim:
	case GeocoderORS, GeocoderGoogle:
		if c.Geocoder.APIKey == "" {
			errs = append(errs, fmt.Sprintf("geocoder.api_key is required for provider %q", c.Geocoder.Provider))
		}
	default:
		errs = append(errs, fmt.Sprintf("geocoder.provider %q is not one of nominatim, ors, google", c.Geocoder.Provider))
	}

	switch c.Router.Provider {
	case RouterOSRM, RouterStraight:
	case RouterORS, RouterGoogle:
		if c.Router.APIKey == "" {
			errs = append(errs, fmt.Sprintf("router.api_key is required for provider %q", c.Router.Provider))
		}
	default:
		errs = append(errs, fmt.Sprintf("router.provider %q is not one of osrm, ors, google, straight", c.Router.Provider))
	}

	if c.Router.Geometry != "geojson" && c.Router.Geometry != "polyline" {
		errs = append(errs, fmt.Sprintf("router.geometry must be geojson or polyline, got %q", c.Router.Geometry))
	}
	switch c.Router.Units {
	case "m", "km", "mi":
	default:
		errs = append(errs, fmt.Sprintf("router.units must be m, km or mi, got %q", c.Router.Units))
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, "viewport.width and viewport.height must be positive")
	}
	if c.Viewport.MaxZoom < 0 || c.Viewport.MaxZoom > 22 {
		errs = append(errs, fmt.Sprintf("viewport.max_zoom must be 0-22, got %d", c.Viewport.MaxZoom))
	}
	if c.Viewport.Padding < 0 {
		errs = append(errs, "viewport.padding must not be negative")
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
