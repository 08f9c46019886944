package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the backend origin used when nothing else is configured
const DefaultBaseURL = "http://localhost:8000"

// BaseURLEnv selects the backend origin
const BaseURLEnv = "LOGSCOPE_BASE_URL"

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Backend connection
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for various commands
type DefaultsConfig struct {
	// Number of anomalies shown in the dashboard "recent" table
	RecentLimit int `mapstructure:"recent_limit"`

	// Default severity filter for reports: all, low, medium, high, critical
	ReportSeverity string `mapstructure:"report_severity"`

	// Rows requested from /logs/parsed
	ParsedLimit int `mapstructure:"parsed_limit"`

	// Monitor command defaults
	MonitorListen   string `mapstructure:"monitor_listen"`
	MonitorInterval string `mapstructure:"monitor_interval"`
}

// Meta records where configuration values came from
type Meta struct {
	ConfigFile string
	DotEnvFile string
	EnvKeys    []string
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "auto",
		Quiet:   false,
		Verbose: false,
		BaseURL: DefaultBaseURL,
		Timeout: "30s",
		Defaults: DefaultsConfig{
			RecentLimit:     8,
			ReportSeverity:  "all",
			ParsedLimit:     100,
			MonitorListen:   ":9464",
			MonitorInterval: "30s",
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.logscope.yaml or ./.logscope.yml
// 2. ~/.logscope.yaml or ~/.logscope.yml
// 3. $XDG_CONFIG_HOME/logscope/config.yaml (or ~/.config/logscope/config.yaml)
// 4. /etc/logscope/config.yaml
func Load() (*Config, error) {
	cfg, _, err := LoadWithMeta()
	return cfg, err
}

// LoadWithMeta loads configuration and reports which sources contributed
func LoadWithMeta() (*Config, *Meta, error) {
	cfg := Default()
	meta := &Meta{}

	configFile := findConfigFile()
	if configFile != "" {
		if err := readInto(configFile, cfg); err != nil {
			return nil, nil, err
		}
		meta.ConfigFile = configFile
	}

	dotenv, dotenvPath, err := readDotEnv()
	if err != nil {
		return nil, nil, err
	}
	meta.DotEnvFile = dotenvPath

	meta.EnvKeys = applyEnvOverrides(cfg, envLookup(dotenv))

	return cfg, meta, nil
}

func readInto(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".logscope.yaml", ".logscope.yml", "logscope.yaml", "logscope.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	var searchPaths []string

	// 1. Current directory
	cwd, err := os.Getwd()
	if err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	// 2. Home directory
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}

	// 3. Config directory (e.g., ~/.config/logscope/)
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "logscope"))
	}

	// 4. System config
	searchPaths = append(searchPaths, "/etc/logscope")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		if dir == cwd || dir == home {
			continue
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// readDotEnv reads ./.env without touching the process environment
func readDotEnv() (map[string]string, string, error) {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", err
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return values, abs, nil
}

// envLookup prefers the real environment and falls back to .env values
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies environment variable overrides to config and
// returns the keys that took effect
func applyEnvOverrides(cfg *Config, getenv func(string) string) []string {
	var applied []string
	set := func(key string, fn func(v string) bool) {
		if v := getenv(key); v != "" && fn(v) {
			applied = append(applied, key)
		}
	}

	set(BaseURLEnv, func(v string) bool { cfg.BaseURL = strings.TrimSpace(v); return true })
	set("LOGSCOPE_TIMEOUT", func(v string) bool { cfg.Timeout = v; return true })
	set("LOGSCOPE_FORMAT", func(v string) bool { cfg.Format = v; return true })
	set("LOGSCOPE_QUIET", func(v string) bool {
		if truthy(v) {
			cfg.Quiet = true
			return true
		}
		return false
	})
	set("LOGSCOPE_VERBOSE", func(v string) bool {
		if truthy(v) {
			cfg.Verbose = true
			return true
		}
		return false
	})
	set("LOGSCOPE_MONITOR_LISTEN", func(v string) bool { cfg.Defaults.MonitorListen = v; return true })

	return applied
}

func truthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// Duration parses value, returning fallback when it is empty or invalid
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := readInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
