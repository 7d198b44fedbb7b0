package config

import (
	"encoding/json"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Manager holds the application configuration and provides thread-safe access to it.
// A Config handed out by Get is never mutated, Update swaps in a new one.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"provider_type_changed", oldConfig.Provider.Type != config.Provider.Type,
			"webdav_changed", oldConfig.Provider.WebDAV != config.Provider.WebDAV,
			"seafile_changed", oldConfig.Provider.Seafile != config.Provider.Seafile,
			"admin_token_changed", oldConfig.Admin.Token != config.Admin.Token,
			"logger_level_changed", oldConfig.Logger.Level != config.Logger.Level,
		)
	}
}

// redactedCfg gets a redacted copy of the Config
func (m *Manager) redactedCfg() Config {
	cfgCpy := *m.Get()
	if cfgCpy.Admin.Token != "" {
		cfgCpy.Admin.Token = redacted
	}
	if cfgCpy.Provider.WebDAV.Password != "" {
		cfgCpy.Provider.WebDAV.Password = redacted
	}
	if cfgCpy.Provider.Seafile.Token != "" {
		cfgCpy.Provider.Seafile.Token = redacted
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetYAML returns the current configuration as YAML, secrets redacted.
func (m *Manager) GetYAML() string {
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
