package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is the Claude model used when none is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultAddr is the HTTP listen address of the serve command.
	DefaultAddr = ":8080"
	// DefaultMaxUploadBytes caps résumé uploads.
	DefaultMaxUploadBytes = 10 << 20
	// DefaultSessionTTLMinutes is how long an idle session survives.
	DefaultSessionTTLMinutes = 120

	// BackendMemory keeps sessions in process memory.
	BackendMemory = "memory"
	// BackendFile keeps one JSON document per session on disk.
	BackendFile = "file"
	// BackendRedis keeps sessions in redis.
	BackendRedis = "redis"
)

// ErrMissingAPIKey is returned by Validate when no Anthropic key is configured.
var ErrMissingAPIKey = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string         `json:"anthropic_api_key"            yaml:"anthropic_api_key"  env:"ANTHROPIC_API_KEY"`
	AnthropicURL    string         `json:"anthropic_base_url,omitempty" yaml:"anthropic_base_url" env:"ANTHROPIC_BASE_URL"`
	Model           string         `json:"model,omitempty"              yaml:"model"              env:"CLAUDE_MODEL"`
	LogMode         string         `json:"log_mode,omitempty"           yaml:"log_mode"           env:"LOG_MODE"`
	Server          ServerConfig   `json:"server"                       yaml:"server"`
	Sessions        SessionsConfig `json:"sessions"                     yaml:"sessions"`
	Retry           RetryConfig    `json:"retry"                        yaml:"retry"`
	Tokens          TokensConfig   `json:"tokens"                       yaml:"tokens"`
	Pandoc          PandocConfig   `json:"pandoc"                       yaml:"pandoc"`
	Defaults        DefaultConfig  `json:"defaults"                     yaml:"defaults"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string   `json:"addr"             yaml:"addr"             env:"LISTEN_ADDR"`
	CookieSecure   bool     `json:"cookie_secure"    yaml:"cookie_secure"    env:"COOKIE_SECURE"`
	CORSOrigins    []string `json:"cors_origins"     yaml:"cors_origins"     env:"CORS_ORIGINS" envSeparator:","`
	MaxUploadBytes int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// SessionsConfig selects and configures the session store.
type SessionsConfig struct {
	Backend    string `json:"backend"     yaml:"backend"     env:"SESSION_BACKEND"`
	Dir        string `json:"dir"         yaml:"dir"         env:"SESSION_DIR"`
	RedisAddr  string `json:"redis_addr"  yaml:"redis_addr"  env:"REDIS_ADDR"`
	TTLMinutes int    `json:"ttl_minutes" yaml:"ttl_minutes" env:"SESSION_TTL_MINUTES"`
}

// RetryConfig controls retries of the generation API.
type RetryConfig struct {
	MaxAttempts    int `json:"max_attempts"     yaml:"max_attempts"     env:"MAX_RETRIES"`
	InitialDelayMS int `json:"initial_delay_ms" yaml:"initial_delay_ms" env:"RETRY_DELAY_MS"`
}

// TokensConfig holds the max_tokens value of each generation stage.
type TokensConfig struct {
	Extraction  int `json:"extraction"   yaml:"extraction"`
	GapAnalysis int `json:"gap_analysis" yaml:"gap_analysis"`
	Objectives  int `json:"objectives"   yaml:"objectives"`
	Outline     int `json:"outline"      yaml:"outline"`
	Week        int `json:"week"         yaml:"week"`
}

// PandocConfig holds pandoc-related configuration.
type PandocConfig struct {
	Binary       string `json:"binary"                  yaml:"binary"        env:"PANDOC_BINARY"`
	ReferenceDoc string `json:"reference_doc,omitempty" yaml:"reference_doc" env:"PANDOC_REFERENCE_DOC"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir" yaml:"output_dir" env:"OUTPUT_DIR"`
}

// DefaultPath is the config file used when none is given.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".learning-designer", "config.json")
	return path, err
}

// Load reads configuration from file, then .env, then the environment.
// A missing file is an error only when configPath was given explicitly.
func Load(configPath string) (cfg Config, err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	err = readFile(path, &cfg)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) || configPath != "" {
			return cfg, err
		}
		err = nil
	}

	// .env never overrides variables already set in the environment
	err = godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			err = errors.Wrap(err, "failed to load .env")
			return cfg, err
		}
		err = nil
	}

	err = env.Parse(&cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to parse environment")
		return cfg, err
	}

	cfg.ApplyDefaults()

	return cfg, err
}

func readFile(path string, cfg *Config) (err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.WithMessagef(err, "config file not found: %s (run 'learning-designer init' to create)", path)
			return err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return err
	}

	return err
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.LogMode == "" {
		c.LogMode = "development"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = BackendMemory
	}
	if c.Sessions.TTLMinutes <= 0 {
		c.Sessions.TTLMinutes = DefaultSessionTTLMinutes
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialDelayMS <= 0 {
		c.Retry.InitialDelayMS = 1000
	}
	if c.Tokens.Extraction <= 0 {
		c.Tokens.Extraction = 2000
	}
	if c.Tokens.GapAnalysis <= 0 {
		c.Tokens.GapAnalysis = 1500
	}
	if c.Tokens.Objectives <= 0 {
		c.Tokens.Objectives = 4000
	}
	if c.Tokens.Outline <= 0 {
		c.Tokens.Outline = 4000
	}
	if c.Tokens.Week <= 0 {
		c.Tokens.Week = 3000
	}
	if c.Pandoc.Binary == "" {
		c.Pandoc.Binary = "pandoc"
	}
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./curricula"
	}
}

// Validate checks that all required configuration is present.
// The API key is checked last so callers can tell it apart with errors.Is.
func (c *Config) Validate() (err error) {
	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Sessions.Dir == "" {
			err = errors.New("sessions.dir is required for the file session backend")
			return err
		}
	case BackendRedis:
		if c.Sessions.RedisAddr == "" {
			err = errors.New("sessions.redis_addr is required for the redis session backend")
			return err
		}
	default:
		err = errors.Errorf("unknown sessions.backend %q (want memory, file or redis)", c.Sessions.Backend)
		return err
	}

	if c.Retry.MaxAttempts < 1 {
		err = errors.New("retry.max_attempts must be at least 1")
		return err
	}

	if c.AnthropicAPIKey == "" {
		err = ErrMissingAPIKey
		return err
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		Sessions: SessionsConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(homeDir, ".learning-designer", "sessions"),
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Curricula"),
		},
	}
	defaultConfig.ApplyDefaults()

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(defaultConfig)
	default:
		data, err = json.MarshalIndent(defaultConfig, "", "  ")
	}
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
