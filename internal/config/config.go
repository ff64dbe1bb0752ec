package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the backend location, the local web UI, and storage paths.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Web     WebConfig     `yaml:"web"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type APIConfig struct {
	// Base URL of the WhatsUp REST backend, e.g. http://127.0.0.1:8000/api
	// If empty, read from env WHATSUP_API_URL.
	BaseURL string `yaml:"baseURL"`
	// Request timeout in seconds. Zero means the default (15s).
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

type WebConfig struct {
	// Listen address for the local web UI, e.g. ":8081".
	Listen string `yaml:"listen"`
	// Origins allowed by the CORS middleware.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type StorageConfig struct {
	// Path of the SQLite file holding the persisted session.
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	// Address of the /metrics endpoint; empty disables the server.
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		API:     APIConfig{BaseURL: "http://127.0.0.1:8000/api", TimeoutSeconds: 15},
		Web:     WebConfig{Listen: ":8081", AllowedOrigins: []string{"http://localhost:8081"}},
		Storage: StorageConfig{DBPath: "./whatsup.db"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("WHATSUP_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("WHATSUP_LISTEN"); v != "" {
		c.Web.Listen = v
	}
	if v := os.Getenv("WHATSUP_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
