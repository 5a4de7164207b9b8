// Package config loads dashboard settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the dashboard needs to start.
type Config struct {
	Server    ServerConfig
	Optimizer OptimizerConfig
	Progress  ProgressConfig
	Chart     ChartConfig
}

type ServerConfig struct {
	Address        string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type OptimizerConfig struct {
	URL     string
	Timeout time.Duration
}

type ProgressConfig struct {
	URL   string
	Event string
}

type ChartConfig struct {
	Width  int
	Height int
}

// ErrMissingEndpoint marks a required endpoint URL that is not configured.
var ErrMissingEndpoint = errors.New("endpoint not configured")

// LoadEnvFile reads a .env file into the process environment. A missing file
// is not an error; the returned bool reports whether one was loaded.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file %q: %w", path, err)
	}
	return true, nil
}

// Load reads the configuration from environment variables.
// Missing endpoint URLs are not an error here; see Problems.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        Get("SERVER_ADDRESS", ":8080"),
			AllowedOrigins: GetList("ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:    GetDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   GetDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Optimizer: OptimizerConfig{
			URL:     strings.TrimSpace(os.Getenv("OPTIMIZER_URL")),
			Timeout: GetDuration("OPTIMIZER_TIMEOUT", 5*time.Minute),
		},
		Progress: ProgressConfig{
			URL:   strings.TrimSpace(os.Getenv("PROGRESS_URL")),
			Event: Get("PROGRESS_EVENT", "ReceiveProgress"),
		},
		Chart: ChartConfig{
			Width:  GetInt("CHART_WIDTH", 900),
			Height: GetInt("CHART_HEIGHT", 600),
		},
	}
}

// Problems lists configuration errors that should be shown to the user.
// They do not stop the process from starting.
func (c *Config) Problems() []error {
	var out []error
	if err := checkURL("OPTIMIZER_URL", c.Optimizer.URL, "http", "https"); err != nil {
		out = append(out, err)
	}
	if err := checkURL("PROGRESS_URL", c.Progress.URL, "ws", "wss", "http", "https"); err != nil {
		out = append(out, err)
	}
	return out
}

func checkURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s: %w", key, ErrMissingEndpoint)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url %q: %w", key, raw, err)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s: url %q must use one of %s", key, raw, strings.Join(schemes, ", "))
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func GetList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
