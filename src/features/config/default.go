package config

var defaultConfig = Config{
	Server: Server{
		PrintRoutes: false,
		Port:        3614,
	},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Admin: Admin{
		Token: "", // Set ANNIL_ADMIN_TOKEN to enable /admin
	},
	Metrics: Metrics{
		Enabled: true,
		Path:    defaultMetricsPath,
	},
	Watch: Watch{
		Enabled: true,
	},
	Provider: Provider{
		Type: "webdav",
		WebDAV: WebDAV{
			URL:      "http://localhost:8080/music",
			Username: "",
			Password: "", // Or WEBDAV_PASSWORD
			Covers:   false,
		},
		Seafile: Seafile{
			Base:   "",
			Token:  "", // Or SEAFILE_TOKEN
			RepoID: "",
		},
	},
}
