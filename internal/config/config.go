package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the immutable process configuration. It is built once at
// startup and passed by reference into each component.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Telex    TelexConfig    `yaml:"telex"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

type ServerConfig struct {
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT"`
	Debug    bool   `yaml:"debug" envconfig:"DEBUG"`
	LogLevel string `yaml:"logLevel" envconfig:"LOG_LEVEL"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider" envconfig:"LLM_PROVIDER"`
	APIKey         string `yaml:"apiKey" envconfig:"LLM_API_KEY"`
	APIBase        string `yaml:"apiBase" envconfig:"LLM_API_BASE"`
	Model          string `yaml:"model" envconfig:"LLM_MODEL"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" envconfig:"LLM_TIMEOUT_SECONDS"`
}

type TelexConfig struct {
	APIURL        string `yaml:"apiUrl" envconfig:"TELEX_API_URL"`
	APIKey        string `yaml:"apiKey" envconfig:"TELEX_API_KEY"`
	BotID         string `yaml:"botId" envconfig:"TELEX_BOT_ID"`
	WebhookSecret string `yaml:"webhookSecret" envconfig:"TELEX_WEBHOOK_SECRET"`
}

type DispatchConfig struct {
	Workers   int `yaml:"workers" envconfig:"DISPATCH_WORKERS"`
	QueueSize int `yaml:"queueSize" envconfig:"DISPATCH_QUEUE_SIZE"`
}

// Defaults returns a config with sensible defaults for every field that has
// one. Credentials have no default and must come from the file or env.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8000,
			LogLevel: "info",
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 30,
		},
		Telex: TelexConfig{
			APIURL: "https://api.telex.im/v1",
		},
		Dispatch: DispatchConfig{
			Workers:   4,
			QueueSize: 64,
		},
	}
}

// Load builds the configuration: defaults, then the optional YAML file at
// path (with ${VAR} expansion), then environment variables. A .env file in
// the working directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
		data = []byte(ExpandEnvVars(string(data)))
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset
// or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	switch strings.ToLower(cfg.Server.LogLevel) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "server.logLevel must be one of: debug, info, warn, error")
	}

	switch cfg.LLM.Provider {
	case "openai", "gemini":
		// valid
	default:
		errs = append(errs, fmt.Sprintf("llm.provider must be one of: openai, gemini (got %q)", cfg.LLM.Provider))
	}
	if cfg.LLM.TimeoutSeconds < 1 {
		errs = append(errs, "llm.timeoutSeconds must be >= 1")
	}

	if cfg.Telex.APIURL == "" {
		errs = append(errs, "telex.apiUrl must not be empty")
	}

	if cfg.Dispatch.Workers < 1 || cfg.Dispatch.Workers > 64 {
		errs = append(errs, "dispatch.workers must be between 1 and 64")
	}
	if cfg.Dispatch.QueueSize < 1 {
		errs = append(errs, "dispatch.queueSize must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// SlogLevel maps the configured log level onto a slog level.
// Unknown values fall back to info.
func (s ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
