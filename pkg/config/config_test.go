package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "CLAUDE_MODEL", "LOG_MODE",
		"LISTEN_ADDR", "COOKIE_SECURE", "CORS_ORIGINS", "MAX_UPLOAD_BYTES",
		"SESSION_BACKEND", "SESSION_DIR", "REDIS_ADDR", "SESSION_TTL_MINUTES",
		"MAX_RETRIES", "RETRY_DELAY_MS", "PANDOC_BINARY", "PANDOC_REFERENCE_DOC", "OUTPUT_DIR",
	} {
		t.Setenv(key, "")
	}
	// keep godotenv away from any .env in the package directory
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		AnthropicAPIKey: "test-key",
		Model:           "claude-test",
		Sessions: SessionsConfig{
			Backend: BackendFile,
			Dir:     tmpDir,
		},
		Defaults: DefaultConfig{
			OutputDir: "./test-output",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != testConfig.AnthropicAPIKey {
		t.Errorf("Expected API key %s, got %s", testConfig.AnthropicAPIKey, cfg.AnthropicAPIKey)
	}

	if cfg.Model != "claude-test" {
		t.Errorf("Expected model claude-test, got %s", cfg.Model)
	}

	if cfg.Sessions.Dir != tmpDir {
		t.Errorf("Expected sessions dir %s, got %s", tmpDir, cfg.Sessions.Dir)
	}

	if cfg.Tokens.Week != 3000 {
		t.Errorf("Expected default week tokens 3000, got %d", cfg.Tokens.Week)
	}

	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.InitialDelayMS != 1000 {
		t.Errorf("Expected default retry 3/1000, got %d/%d", cfg.Retry.MaxAttempts, cfg.Retry.InitialDelayMS)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `anthropic_api_key: yaml-key
server:
  addr: ":9090"
  cors_origins:
    - http://localhost:3000
sessions:
  backend: redis
  redis_addr: localhost:6379
tokens:
  week: 1234
`
	err := os.WriteFile(configPath, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "yaml-key" {
		t.Errorf("Expected yaml-key, got %s", cfg.AnthropicAPIKey)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected :9090, got %s", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("Unexpected CORS origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.Sessions.Backend != BackendRedis {
		t.Errorf("Expected redis backend, got %s", cfg.Sessions.Backend)
	}
	if cfg.Tokens.Week != 1234 {
		t.Errorf("Expected week tokens 1234, got %d", cfg.Tokens.Week)
	}
	if cfg.Tokens.Outline != 4000 {
		t.Errorf("Expected default outline tokens 4000, got %d", cfg.Tokens.Outline)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(configPath, []byte(`{"anthropic_api_key":"file-key","model":"file-model"}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("Expected env override, got %s", cfg.AnthropicAPIKey)
	}
	if cfg.Model != "file-model" {
		t.Errorf("Expected unset env var to keep file value, got %s", cfg.Model)
	}
	if cfg.Sessions.Backend != BackendFile {
		t.Errorf("Expected file backend, got %s", cfg.Sessions.Backend)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	err := os.WriteFile(".env", []byte("CLAUDE_MODEL=dotenv-model\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "config.json")
	err = os.WriteFile(configPath, []byte(`{}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// godotenv only fills variables that are unset
	err = os.Unsetenv("CLAUDE_MODEL")
	if err != nil {
		t.Fatalf("Failed to unset CLAUDE_MODEL: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Model != "dotenv-model" {
		t.Errorf("Expected model from .env, got %s", cfg.Model)
	}
}

func TestLoadNonexistent(t *testing.T) {
	clearEnv(t)

	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Error("Expected error loading nonexistent config, got nil")
	}
}

func TestLoadDefaultPathOptional(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected missing default config to be tolerated, got %v", err)
	}

	if cfg.Sessions.Backend != BackendMemory {
		t.Errorf("Expected memory backend by default, got %s", cfg.Sessions.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		wantKey bool
	}{
		{
			name:   "valid memory config",
			config: Config{AnthropicAPIKey: "test-key", Sessions: SessionsConfig{Backend: BackendMemory}, Retry: RetryConfig{MaxAttempts: 3}},
		},
		{
			name:    "missing api key",
			config:  Config{Sessions: SessionsConfig{Backend: BackendMemory}, Retry: RetryConfig{MaxAttempts: 3}},
			wantErr: true,
			wantKey: true,
		},
		{
			name:    "file backend without dir",
			config:  Config{AnthropicAPIKey: "k", Sessions: SessionsConfig{Backend: BackendFile}, Retry: RetryConfig{MaxAttempts: 3}},
			wantErr: true,
		},
		{
			name:    "redis backend without addr",
			config:  Config{AnthropicAPIKey: "k", Sessions: SessionsConfig{Backend: BackendRedis}, Retry: RetryConfig{MaxAttempts: 3}},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			config:  Config{AnthropicAPIKey: "k", Sessions: SessionsConfig{Backend: "sqlite"}, Retry: RetryConfig{MaxAttempts: 3}},
			wantErr: true,
		},
		{
			name:    "zero attempts",
			config:  Config{AnthropicAPIKey: "k", Sessions: SessionsConfig{Backend: BackendMemory}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantKey && !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("Expected ErrMissingAPIKey, got %v", err)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "sub", "config.json")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read written config: %v", err)
	}

	var cfg Config
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		t.Fatalf("Written config is not valid JSON: %v", err)
	}

	if cfg.Sessions.Backend != BackendFile {
		t.Errorf("Expected file backend in default config, got %s", cfg.Sessions.Backend)
	}

	err = InitConfig(configPath)
	if err == nil {
		t.Error("Expected error when config already exists")
	}
}
