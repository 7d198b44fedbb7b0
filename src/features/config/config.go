package config

// Config holds the application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"logger"`
	Admin    Admin    `yaml:"admin"`
	Metrics  Metrics  `yaml:"metrics"`
	Watch    Watch    `yaml:"watch"`
	Provider Provider `yaml:"provider"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port" validate:"required,max=65535"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Admin protects the administrative endpoints. An empty token disables them.
type Admin struct {
	Token string `yaml:"token"`
}

// Metrics holds the configuration for the prometheus endpoint
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// Watch enables reloading the provider when the config file changes.
type Watch struct {
	Enabled bool `yaml:"enabled"`
}

// Provider selects and configures the storage backend.
type Provider struct {
	Type    string  `yaml:"type" validate:"required,oneof=webdav seafile"`
	WebDAV  WebDAV  `yaml:"webdav"`
	Seafile Seafile `yaml:"seafile"`
}

// WebDAV holds the configuration of a WebDAV share.
type WebDAV struct {
	URL      string `yaml:"url" validate:"omitempty,url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Covers   bool   `yaml:"covers"`
}

// Seafile holds the configuration of a Seafile library.
type Seafile struct {
	Base   string `yaml:"base" validate:"omitempty,url"`
	Token  string `yaml:"token"`
	RepoID string `yaml:"repo_id"`
}
