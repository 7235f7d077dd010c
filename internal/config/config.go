package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultImageRoot    = "image"
	DefaultBackupSuffix = "_backup"
	DefaultLogLevel     = "info"
	DefaultDBFileName   = ".mdimg.db"
	DefaultHistory      = true

	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeoutSeconds    = 10
	DefaultMaxRetries        = 3
	DefaultRetryDelaySeconds = 5
	DefaultMaxBytes          = int64(50 * 1024 * 1024)

	configFileName           = ".mdimg.toml"
	configDirEnvKey          = "MDIMG_CONFIG_DIR"
	trustProjectConfigEnvKey = "MDIMG_TRUST_PROJECT_CONFIG"

	imageRootEnvKey   = "MDIMG_IMAGE_ROOT"
	dbPathEnvKey      = "MDIMG_DB"
	historyEnvKey     = "MDIMG_HISTORY"
	userAgentEnvKey   = "MDIMG_USER_AGENT"
	httpTimeoutEnvKey = "MDIMG_HTTP_TIMEOUT"
)

// FetchConfig controls how remote images are retrieved.
type FetchConfig struct {
	UserAgent         string `toml:"user_agent"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRetries        int    `toml:"max_retries"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	MaxBytes          int64  `toml:"max_bytes"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RetryDelay returns the fixed pause between attempts.
func (f FetchConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelaySeconds) * time.Second
}

// Config defines runtime configuration for mdimg.
type Config struct {
	ImageRoot                string      `toml:"image_root"`
	BackupSuffix             string      `toml:"backup_suffix"`
	LogLevel                 string      `toml:"log_level"`
	DBPath                   string      `toml:"db_path"`
	History                  bool        `toml:"history"`
	Fetch                    FetchConfig `toml:"fetch"`
	TrustedProjectConfigPath string      `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		ImageRoot:    DefaultImageRoot,
		BackupSuffix: DefaultBackupSuffix,
		LogLevel:     DefaultLogLevel,
		DBPath:       "",
		History:      DefaultHistory,
		Fetch: FetchConfig{
			UserAgent:         DefaultUserAgent,
			TimeoutSeconds:    DefaultTimeoutSeconds,
			MaxRetries:        DefaultMaxRetries,
			RetryDelaySeconds: DefaultRetryDelaySeconds,
			MaxBytes:          DefaultMaxBytes,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"image_root",
	"backup_suffix",
	"log_level",
	"db_path",
	"history",
	"fetch.user_agent",
	"fetch.timeout_seconds",
	"fetch.max_retries",
	"fetch.retry_delay_seconds",
	"fetch.max_bytes",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "image_root":
		return c.ImageRoot, nil
	case "backup_suffix":
		return c.BackupSuffix, nil
	case "log_level":
		return c.LogLevel, nil
	case "db_path":
		return c.DBPath, nil
	case "history":
		return strconv.FormatBool(c.History), nil
	case "fetch.user_agent":
		return c.Fetch.UserAgent, nil
	case "fetch.timeout_seconds":
		return strconv.Itoa(c.Fetch.TimeoutSeconds), nil
	case "fetch.max_retries":
		return strconv.Itoa(c.Fetch.MaxRetries), nil
	case "fetch.retry_delay_seconds":
		return strconv.Itoa(c.Fetch.RetryDelaySeconds), nil
	case "fetch.max_bytes":
		return strconv.FormatInt(c.Fetch.MaxBytes, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if root := strings.TrimSpace(os.Getenv(imageRootEnvKey)); root != "" {
		cfg.ImageRoot = root
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if raw := strings.TrimSpace(os.Getenv(historyEnvKey)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.History = parsed
		}
	}
	if ua := strings.TrimSpace(os.Getenv(userAgentEnvKey)); ua != "" {
		cfg.Fetch.UserAgent = ua
	}
	if timeout, ok := httpTimeoutFromEnv(); ok {
		cfg.Fetch.TimeoutSeconds = timeout
	}

	cfg.normalize()

	return &cfg, nil
}

// httpTimeoutFromEnv accepts either a Go duration ("45s") or integer seconds.
func httpTimeoutFromEnv() (int, bool) {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return 0, false
	}
	if duration, err := time.ParseDuration(value); err == nil && duration >= time.Second {
		return int(duration / time.Second), true
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return seconds, true
	}
	return 0, false
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "fetch.timeout_seconds", "fetch.max_retries":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "fetch.retry_delay_seconds":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", key)
		}
		return parsed, nil
	case "fetch.max_bytes":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "history":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "image_root":
		if value == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.ImageRoot) == "" {
		c.ImageRoot = DefaultImageRoot
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.BackupSuffix == "" {
		c.BackupSuffix = DefaultBackupSuffix
	}
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Fetch.MaxRetries <= 0 {
		c.Fetch.MaxRetries = DefaultMaxRetries
	}
	if c.Fetch.RetryDelaySeconds < 0 {
		c.Fetch.RetryDelaySeconds = DefaultRetryDelaySeconds
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = DefaultMaxBytes
	}
}
