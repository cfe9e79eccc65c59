package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
)

// Config is the console configuration
type Config struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	Server    ServerConfig    `yaml:"server"`
	Render    RenderConfig    `yaml:"render"`
	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EndpointConfig describes the remote SPARQL endpoint
type EndpointConfig struct {
	URL          string        `yaml:"url"`
	QueryPath    string        `yaml:"query_path"`
	DatasetsPath string        `yaml:"datasets_path"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP console
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// RenderConfig holds renderer defaults
type RenderConfig struct {
	PageSize         int `yaml:"page_size"`
	MaxGraphBindings int `yaml:"max_graph_bindings"`
}

// HistoryConfig configures query history storage and pruning
type HistoryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Path          string        `yaml:"path"`
	Retention     time.Duration `yaml:"retention"`
	PruneSchedule string        `yaml:"prune_schedule"`
}

// TelemetryConfig configures OpenTelemetry export
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:          "https://lod.b3kat.de",
			QueryPath:    "/sparql",
			DatasetsPath: "/sparql",
			Timeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Listen: "localhost:8080",
		},
		Render: RenderConfig{
			PageSize:         render.DefaultPageSize,
			MaxGraphBindings: render.DefaultMaxBindings,
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "./sparqlconsole_data",
			Retention:     720 * time.Hour,
			PruneSchedule: "@hourly",
		},
		Telemetry: TelemetryConfig{
			Service: "sparqlconsole",
		},
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML data on cfg and validates the result. Unknown keys
// are rejected.
func (c *Config) Decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return errors.New("endpoint.url is required")
	}
	if !render.ValidPageSize(c.Render.PageSize) {
		return fmt.Errorf("render.page_size must be one of %v, got %d", render.PageSizes, c.Render.PageSize)
	}
	if c.Render.MaxGraphBindings <= 0 {
		return fmt.Errorf("render.max_graph_bindings must be positive, got %d", c.Render.MaxGraphBindings)
	}
	if c.Endpoint.Timeout < 0 {
		return fmt.Errorf("endpoint.timeout must not be negative, got %s", c.Endpoint.Timeout)
	}
	if c.History.Enabled {
		if c.History.Path == "" {
			return errors.New("history.path is required when history is enabled")
		}
		if c.History.Retention <= 0 {
			return fmt.Errorf("history.retention must be positive, got %s", c.History.Retention)
		}
	}
	return nil
}

// RenderOptions returns the renderer options of the config
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		PageSize:         c.Render.PageSize,
		MaxGraphBindings: c.Render.MaxGraphBindings,
	}
}
