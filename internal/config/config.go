package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/thesavant42/rvspecs/internal/links"
	"github.com/titanous/json5"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "rvspecs.json5"

// Validation errors
var (
	ErrMissingOutputDir   = errors.New("output_dir is required")
	ErrMissingMappings    = errors.New("mappings_file is required")
	ErrInvalidFetcher     = errors.New("fetcher must be 'http' or 'browser'")
	ErrInvalidYear        = errors.New("default_year must be a four digit year")
	ErrInvalidRetries     = errors.New("retries must be non-negative")
	ErrInvalidRestarts    = errors.New("max_restarts must be non-negative")
	ErrInvalidConcurrency = errors.New("links.concurrency must be non-negative")
	ErrInvalidLogLevel    = errors.New("log_level must be one of: debug, info, warn, error")
	ErrEmptyLinkGroup     = errors.New("every link group needs a selector and at least one page")
)

// Fetcher kinds
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// Environment variables read for form automation
const (
	EnvFormUser     = "RVSPECS_FORM_USER"
	EnvFormPassword = "RVSPECS_FORM_PASSWORD"
)

// LinksConfig controls link discovery
type LinksConfig struct {
	Concurrency int           `json:"concurrency"`
	Rate        float64       `json:"rate"`
	Groups      []links.Group `json:"groups"`
}

// FormConfig points the populate command at the data-entry form
type FormConfig struct {
	URL      string `json:"url"`
	LoginURL string `json:"login_url"`
	Headless bool   `json:"headless"`
}

// Config holds every tunable of a run
type Config struct {
	OutputDir           string      `json:"output_dir"`
	MappingsFile        string      `json:"mappings_file"`
	SynonymsFile        string      `json:"synonyms_file"`
	BackupDir           string      `json:"backup_dir"`
	Database            string      `json:"database"`
	DefaultYear         string      `json:"default_year"`
	Fetcher             string      `json:"fetcher"`
	WaitSelector        string      `json:"wait_selector"`
	Retries             int         `json:"retries"`
	TimeoutSeconds      int         `json:"timeout_seconds"`
	MagickBin           string      `json:"magick"`
	MaxRestarts         int         `json:"max_restarts"`
	RestartDelaySeconds int         `json:"restart_delay_seconds"`
	LogLevel            string      `json:"log_level"`
	Accessible          bool        `json:"accessible"`
	URLs                []string    `json:"urls"`
	Links               LinksConfig `json:"links"`
	Form                FormConfig  `json:"form"`
}

// Defaults returns the values used for anything a config file leaves unset
func Defaults() Config {
	return Config{
		OutputDir:           "output",
		MappingsFile:        "domainMappings.json",
		SynonymsFile:        "synonyms.json",
		BackupDir:           "backups",
		DefaultYear:         strconv.Itoa(time.Now().Year()),
		Fetcher:             FetcherHTTP,
		Retries:             2,
		TimeoutSeconds:      30,
		MagickBin:           "magick",
		MaxRestarts:         2,
		RestartDelaySeconds: 1,
		LogLevel:            "info",
		Links: LinksConfig{
			Concurrency: links.DefaultConcurrency,
			Rate:        links.DefaultRate,
		},
	}
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// LocalPath returns the overlay file for name: rvspecs.json5 -> rvspecs.local.json5
func LocalPath(name string) string {
	prefix, ext := splitExt(name)
	return prefix + ".local" + ext
}

// Load reads name and its .local overlay (overlay wins), fills defaults and validates.
// Neither file existing is not an error; the defaults are returned.
func Load(name string) (*Config, error) {
	var cfg Config

	for _, path := range []string{name, LocalPath(name)} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var layer Config
		if err := json5.Unmarshal(data, &layer); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := mergo.Merge(&cfg, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrMissingOutputDir
	}
	if strings.TrimSpace(c.MappingsFile) == "" {
		return ErrMissingMappings
	}
	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherBrowser {
		return ErrInvalidFetcher
	}
	if y, err := strconv.Atoi(c.DefaultYear); err != nil || y < 1900 || y > 2999 {
		return ErrInvalidYear
	}
	if c.Retries < 0 {
		return ErrInvalidRetries
	}
	if c.MaxRestarts < 0 {
		return ErrInvalidRestarts
	}
	if c.Links.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	for i, g := range c.Links.Groups {
		if strings.TrimSpace(g.Selector) == "" || len(g.Pages) == 0 {
			return fmt.Errorf("%w: links.groups[%d]", ErrEmptyLinkGroup, i)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// Timeout returns the per-request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RestartDelay returns the pause between supervised restarts
func (c *Config) RestartDelay() time.Duration {
	return time.Duration(c.RestartDelaySeconds) * time.Second
}

// LoadEnv loads a .env file if it exists (silently ignore if not found)
func LoadEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// FormCredentials returns the form login from the environment
func FormCredentials() (user, password string) {
	return os.Getenv(EnvFormUser), os.Getenv(EnvFormPassword)
}
