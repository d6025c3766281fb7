// Package config loads project settings from transcreate.yml, a .env file
// and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/transcreate/internal/reasoning"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Graph backends.
const (
	BackendMemory = "memory"
	BackendKuzu   = "kuzu"
)

// Environment variables that override the YAML file.
const (
	EnvProvider = "LLM_PROVIDER"
	EnvAPIKey   = "LLM_API_KEY"
	EnvModel    = "LLM_MODEL"
	EnvBaseURL  = "LLM_BASE_URL"
)


// ProjectConfig holds project-level settings loaded from transcreate.yml.
type ProjectConfig struct {
	Graph       GraphConfig  `yaml:"graph,omitempty"`
	LLM         LLMConfig    `yaml:"llm,omitempty"`
	Server      ServerConfig `yaml:"server,omitempty"`
	Concurrency int          `yaml:"concurrency,omitempty"`
	ArchivePath string       `yaml:"archive,omitempty"`
	Verbose     bool         `yaml:"verbose,omitempty"`
}

// GraphConfig selects the knowledge graph and its storage backend.
type GraphConfig struct {
	Path    string `yaml:"path,omitempty"`
	Backend string `yaml:"backend,omitempty"` // memory (default) or kuzu
	DBPath  string `yaml:"dbPath,omitempty"`  // kuzu database directory; empty means in-memory
}

// LLMConfig configures the reasoning service client.
type LLMConfig struct {
	Provider    string        `yaml:"provider,omitempty"`
	APIKey      string        `yaml:"apiKey,omitempty"`
	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"baseURL,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxAttempts int           `yaml:"maxAttempts,omitempty"`
	Backoff     time.Duration `yaml:"backoff,omitempty"`
	Temperature *float64      `yaml:"temperature,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// ErrInvalidBackend is returned for an unknown graph.backend value.
var ErrInvalidBackend = errors.New("config: unknown graph backend")

// Load reads transcreate.yml or transcreate.yaml from dir, then applies
// dir/.env and the process environment on top. A missing config file or .env
// yields defaults, not an error; real environment variables win over .env.
func Load(dir string) (*ProjectConfig, error) {
	cfg, err := loadFile(dir)
	if err != nil {
		return nil, err
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"transcreate.yml", "transcreate.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// ApplyEnv overrides LLM settings with non-empty values from lookup.
func (c *ProjectConfig) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, EnvProvider)
	set(&c.LLM.APIKey, EnvAPIKey)
	set(&c.LLM.Model, EnvModel)
	set(&c.LLM.BaseURL, EnvBaseURL)
}

// Validate rejects settings no component can honor.
func (c *ProjectConfig) Validate() error {
	switch strings.ToLower(c.Graph.Backend) {
	case "", BackendMemory, BackendKuzu:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Graph.Backend)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// BackendName returns the normalized graph backend name.
func (g GraphConfig) BackendName() string {
	if g.Backend == "" {
		return BackendMemory
	}
	return strings.ToLower(g.Backend)
}

// Reasoning converts the LLM section into a reasoning client config.
func (l LLMConfig) Reasoning() reasoning.Config {
	return reasoning.Config{
		Provider:    l.Provider,
		APIKey:      l.APIKey,
		Model:       l.Model,
		BaseURL:     l.BaseURL,
		Timeout:     l.Timeout,
		MaxAttempts: l.MaxAttempts,
		Backoff:     l.Backoff,
		Temperature: l.Temperature,
	}
}
