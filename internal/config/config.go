// Package config loads application configuration from command-line flags,
// environment variables, a .env file and defaults, in that order.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Auth   AuthConfig
	OpenAI OpenAIConfig
	Search SearchConfig
	Chat   ChatConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates the database and the token key.
type DataConfig struct {
	Path string
}

// DatabasePath is the SQLite file inside the data directory.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.Path, "librarian.db")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration // generation is slow, keep this generous
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes), set by auth.LoadOrGenerateKey in main
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
	AdminEmail          string
	RatePerMinute       int // login and register attempts per client IP
}

// OpenAIConfig holds the text-generation gateway configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Enabled reports whether an API key was configured.
func (o OpenAIConfig) Enabled() bool {
	return o.APIKey != ""
}

// SearchConfig holds the web search configuration.
type SearchConfig struct {
	URL     string
	Timeout time.Duration
}

// ChatConfig holds chat limits.
type ChatConfig struct {
	RatePerMinute int
}

// LoadConfig loads configuration from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

// Load parses args and resolves every key with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file (only fills variables that are unset).
// 4. Default values (lowest priority).
func Load(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("librarian", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and token key (default: ~/Librarian)")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")
	adminEmail := fs.String("admin-email", "", "Email that is granted the admin role on registration")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", *envFile, err)
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	r := &resolver{lookup: lookup}

	cfg := &Config{
		App:    AppConfig{Environment: r.str(*env, "ENV", "development")},
		Logger: LoggerConfig{Level: r.str(*logLevel, "LOG_LEVEL", "info")},
		Data:   DataConfig{Path: r.str(*dataPath, "DATA_PATH", "")},
		Server: ServerConfig{
			Port:           r.str(*port, "SERVER_PORT", "8080"),
			ReadTimeout:    r.duration(*readTimeout, "SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   r.duration(*writeTimeout, "SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:    r.duration(*idleTimeout, "SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: splitList(r.str("", "CORS_ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			AccessTokenDuration: r.duration(*accessTokenDuration, "ACCESS_TOKEN_DURATION", 24*time.Hour),
			AdminEmail:          strings.TrimSpace(r.str(*adminEmail, "ADMIN_EMAIL", "")),
			RatePerMinute:       r.integer("", "AUTH_RATE_PER_MINUTE", 20),
		},
		OpenAI: OpenAIConfig{
			APIKey:  r.str("", "OPENAI_API_KEY", ""),
			Model:   r.str("", "OPENAI_MODEL", "gpt-4o"),
			BaseURL: r.str("", "OPENAI_BASE_URL", ""),
			Timeout: r.duration("", "OPENAI_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			URL:     r.str("", "SEARCH_URL", "https://api.duckduckgo.com/"),
			Timeout: r.duration("", "SEARCH_TIMEOUT", 5*time.Second),
		},
		Chat: ChatConfig{
			RatePerMinute: r.integer("", "CHAT_RATE_PER_MINUTE", 30),
		},
	}
	if r.err != nil {
		return nil, r.err
	}

	if cfg.Data.Path, err = expandPath(cfg.Data.Path, defaultDataPath); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty")
	}
	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	if c.Chat.RatePerMinute < 0 || c.Auth.RatePerMinute < 0 {
		return errors.New("rate limits cannot be negative")
	}
	return nil
}

// resolver reads typed values and keeps the first parse error.
type resolver struct {
	lookup func(string) string
	err    error
}

func (r *resolver) str(flagValue, key, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := r.lookup(key); v != "" {
		return v
	}
	return def
}

func (r *resolver) duration(flagValue, key string, def time.Duration) time.Duration {
	s := r.str(flagValue, key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d
}

func (r *resolver) integer(flagValue, key string, def int) int {
	s := r.str(flagValue, key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultDataPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Librarian"), nil
}

// expandPath expands ~ and makes the path absolute. An empty path takes
// the default.
func expandPath(path string, def func() (string, error)) (string, error) {
	if path == "" {
		return def()
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// readEnvFile parses KEY=value lines; blank lines and # comments are skipped
// and surrounding quotes are removed.
func readEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	return values, scanner.Err()
}
