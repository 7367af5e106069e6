package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentgraph/logging"
)

// Environment variables read by Load.
const (
	EnvProvider         = "AGENTGRAPH_PROVIDER"
	EnvModel            = "AGENTGRAPH_MODEL"
	EnvTemperature      = "AGENTGRAPH_TEMPERATURE"
	EnvMaxTokens        = "AGENTGRAPH_MAX_TOKENS"
	EnvMaxSteps         = "AGENTGRAPH_MAX_STEPS"
	EnvLogLevel         = "AGENTGRAPH_LOG_LEVEL"
	EnvLogFormat        = "AGENTGRAPH_LOG_FORMAT"
	EnvMaxInputAttempts = "AGENTGRAPH_MAX_INPUT_ATTEMPTS"
)

// Config holds the application settings.
type Config struct {
	Provider     string        `yaml:"provider" validate:"oneof=openai anthropic mock"`
	Model        string        `yaml:"model"` // empty selects the provider default
	Temperature  float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens    int64         `yaml:"max_tokens" validate:"gte=1"`
	ModelTimeout time.Duration `yaml:"model_timeout" validate:"gte=0"`
	ModelRetries int           `yaml:"model_retries" validate:"gte=1,lte=10"`
	MaxSteps     int           `yaml:"max_steps" validate:"gte=0"`

	Log     LogConfig     `yaml:"log"`
	Runner  RunnerConfig  `yaml:"runner"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// RunnerConfig configures the interactive loop.
type RunnerConfig struct {
	MaxInputAttempts int    `yaml:"max_input_attempts" validate:"gte=1"`
	FallbackPrompt   string `yaml:"fallback_prompt" validate:"required"`
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Provider:     "openai",
		Temperature:  0,
		MaxTokens:    1024,
		ModelTimeout: 60 * time.Second,
		ModelRetries: 3,
		MaxSteps:     25,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Runner: RunnerConfig{
			MaxInputAttempts: 3,
			FallbackPrompt:   "What do you know about LangGraph?",
		},
	}
}

// Load builds the configuration. path may be empty; a non-empty path must
// exist. A missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	if v, ok := lookup(EnvProvider); ok {
		c.Provider = v
	}
	if v, ok := lookup(EnvModel); ok {
		c.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvTemperature); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTemperature, err)
		}
		c.Temperature = f
	}
	if v, ok := lookup(EnvMaxTokens); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxTokens, err)
		}
		c.MaxTokens = n
	}
	for key, dst := range map[string]*int{
		EnvMaxSteps:         &c.MaxSteps,
		EnvMaxInputAttempts: &c.Runner.MaxInputAttempts,
	} {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// NewLogger builds the structured logger described by the Log section.
func (c *Config) NewLogger(w io.Writer) *logging.GraphLogger {
	level, ok := logging.ParseLevel(c.Log.Level)
	if !ok {
		level = logging.LogLevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: c.Log.Format,
		Output: w,
	})
}
