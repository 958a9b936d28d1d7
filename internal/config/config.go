// Package config handles application configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

// EnvPrefix namespaces environment overrides, e.g. REPORTVIEW_SERVER_PORT
const EnvPrefix = "REPORTVIEW"

// Storage backends of the history index
const (
	StorageMemory = "memory"
	StorageBuntDB = "buntdb"
	StorageSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Report  ReportConfig
	Chart   ChartConfig
	History HistoryConfig
	Log     LogConfig
}

// ServerConfig holds dashboard server settings
type ServerConfig struct {
	Host  string
	Port  int
	Debug bool
	// ServeTimeout stops the server after the given time, zero serves forever
	ServeTimeout time.Duration
}

// ReportConfig locates the current report and past runs
type ReportConfig struct {
	Dir        string
	RunsRoot   string
	HistoryDir string
}

// ChartConfig holds chart composition settings
type ChartConfig struct {
	Height     int
	Indicators []string
}

// HistoryConfig holds history indexing settings
type HistoryConfig struct {
	Schedule    string
	BackoffMax  time.Duration
	MaxAttempts int
	Storage     string
	StoragePath string
}

// LogConfig holds logging settings
type LogConfig struct {
	Backend string
	Level   string
	JSON    bool
	Colored bool
	File    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 5555)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.serve_timeout", "0s")

	v.SetDefault("report.dir", ".")
	v.SetDefault("report.runs_root", ".")
	v.SetDefault("report.history_dir", "backtesting")

	v.SetDefault("chart.height", 360)
	v.SetDefault("chart.indicators", []string{})

	v.SetDefault("history.schedule", "@every 30s")
	v.SetDefault("history.backoff_max", "2s")
	v.SetDefault("history.max_attempts", 3)
	v.SetDefault("history.storage", StorageMemory)
	v.SetDefault("history.storage_path", "reportview.db")

	v.SetDefault("log.backend", "zerolog")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.colored", true)
	v.SetDefault("log.file", "")
}

// Load reads the configuration from defaults, an optional YAML file and
// REPORTVIEW_* environment variables, in increasing priority. Variables
// from .env files are loaded first; missing .env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	serveTimeout, err := duration(v, "server.serve_timeout")
	if err != nil {
		return nil, err
	}
	backoffMax, err := duration(v, "history.backoff_max")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			Debug:        v.GetBool("server.debug"),
			ServeTimeout: serveTimeout,
		},
		Report: ReportConfig{
			Dir:        v.GetString("report.dir"),
			RunsRoot:   v.GetString("report.runs_root"),
			HistoryDir: v.GetString("report.history_dir"),
		},
		Chart: ChartConfig{
			Height:     v.GetInt("chart.height"),
			Indicators: indicators(v),
		},
		History: HistoryConfig{
			Schedule:    v.GetString("history.schedule"),
			BackoffMax:  backoffMax,
			MaxAttempts: v.GetInt("history.max_attempts"),
			Storage:     strings.ToLower(v.GetString("history.storage")),
			StoragePath: v.GetString("history.storage_path"),
		},
		Log: LogConfig{
			Backend: strings.ToLower(v.GetString("log.backend")),
			Level:   v.GetString("log.level"),
			JSON:    v.GetBool("log.json"),
			Colored: v.GetBool("log.colored"),
			File:    v.GetString("log.file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// duration accepts Go durations plus day and week units ("1d12h")
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" || raw == "0" {
		return 0, nil
	}

	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

// indicators reads a YAML list or a space separated env value
func indicators(v *viper.Viper) []string {
	var specs []string
	for _, spec := range v.GetStringSlice("chart.indicators") {
		if spec = strings.TrimSpace(spec); spec != "" {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	if c.Chart.Height <= 0 {
		return fmt.Errorf("chart.height: must be positive, got %d", c.Chart.Height)
	}
	switch c.History.Storage {
	case StorageMemory, StorageBuntDB, StorageSQLite:
	default:
		return fmt.Errorf("history.storage: unknown backend %q", c.History.Storage)
	}
	switch c.Log.Backend {
	case "zerolog", "logrus":
	default:
		return fmt.Errorf("log.backend: unknown backend %q", c.Log.Backend)
	}
	return nil
}

// Address returns the host:port the dashboard listens on
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the dashboard base URL
func (c ServerConfig) URL() string {
	return "http://" + c.Address() + "/"
}
