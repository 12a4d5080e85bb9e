package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines tracker configuration.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	DB          DBConfig        `yaml:"db"`
	Log         LogConfig       `yaml:"log"`
	Sync        SyncConfig      `yaml:"sync"`
	Extract     ExtractConfig   `yaml:"extract"`
	Credentials []string        `yaml:"credentials"`
	Projects    []ProjectConfig `yaml:"projects"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration so YAML values like "30m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SyncConfig controls working-copy synchronization.
type SyncConfig struct {
	DataDir    string   `yaml:"data_dir"`
	GitBaseURL string   `yaml:"git_base_url"`
	Interval   Duration `yaml:"interval"`
	GitTimeout Duration `yaml:"git_timeout"`
}

// ExtractConfig controls word and page count extraction.
type ExtractConfig struct {
	TexcountPath      string   `yaml:"texcount_path"`
	PdflatexPath      string   `yaml:"pdflatex_path"`
	CountBibliography bool     `yaml:"count_bibliography"`
	CountTimeout      Duration `yaml:"count_timeout"`
	TypesetTimeout    Duration `yaml:"typeset_timeout"`
}

// ProjectConfig declares a tracked project. The registry persists these;
// entries listed here are registered at startup if missing.
type ProjectConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "texwatch.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Sync: SyncConfig{
			DataDir:    "data/projects",
			GitBaseURL: "https://git.overleaf.com",
			Interval:   Duration(time.Hour),
			GitTimeout: Duration(2 * time.Minute),
		},
		Extract: ExtractConfig{
			TexcountPath:   "texcount",
			PdflatexPath:   "pdflatex",
			CountTimeout:   Duration(30 * time.Second),
			TypesetTimeout: Duration(2 * time.Minute),
		},
	}

	if path := os.Getenv("TEXWATCH_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TEXWATCH_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TEXWATCH_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEXWATCH_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("TEXWATCH_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TEXWATCH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if dataDir := os.Getenv("TEXWATCH_DATA_DIR"); dataDir != "" {
		cfg.Sync.DataDir = dataDir
	}
	if intervalStr := os.Getenv("TEXWATCH_SYNC_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEXWATCH_SYNC_INTERVAL: %w", err)
		}
		cfg.Sync.Interval = Duration(interval)
	}
	// Comma-separated token list; order determines probe order.
	if tokens := os.Getenv("TEXWATCH_TOKENS"); tokens != "" {
		cfg.Credentials = splitTokens(tokens)
	}

	if cfg.Sync.Interval <= 0 {
		return Config{}, fmt.Errorf("sync interval must be positive, got %s", cfg.Sync.Interval.Std())
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitTokens(raw string) []string {
	var tokens []string
	for _, part := range strings.Split(raw, ",") {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
