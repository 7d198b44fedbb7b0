package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultMetricsPath = "/metrics"

// Load reads a YAML file from the given path and returns a new ConfigManager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		if err := saveDefaultConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		slog.Info("Default configuration created successfully", "path", path)
		applyEnv(defaultCfg)
		return NewManager(defaultCfg), nil
	}

	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	return NewManager(cfg), nil
}

// Read decodes and validates the file at path without touching any manager.
// It is used both at startup and when the file changes on disk.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	// Override with environment variables if set
	applyEnv(&cfg)

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field tags and the settings required by the selected provider.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterStructValidation(providerStructLevel, Provider{})
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func providerStructLevel(sl validator.StructLevel) {
	p := sl.Current().Interface().(Provider)
	switch p.Type {
	case "webdav":
		if p.WebDAV.URL == "" {
			sl.ReportError(p.WebDAV.URL, "webdav.url", "URL", "required", "")
		}
	case "seafile":
		if p.Seafile.Base == "" {
			sl.ReportError(p.Seafile.Base, "seafile.base", "Base", "required", "")
		}
		if p.Seafile.Token == "" {
			sl.ReportError(p.Seafile.Token, "seafile.token", "Token", "required", "")
		}
		if p.Seafile.RepoID == "" {
			sl.ReportError(p.Seafile.RepoID, "seafile.repo_id", "RepoID", "required", "")
		}
	}
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("ANNIL_ADMIN_TOKEN"); token != "" {
		cfg.Admin.Token = token
	}
	if token := os.Getenv("SEAFILE_TOKEN"); token != "" {
		cfg.Provider.Seafile.Token = token
	}
	if password := os.Getenv("WEBDAV_PASSWORD"); password != "" {
		cfg.Provider.WebDAV.Password = password
	}
}

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}
