package config

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const seafileConfig = `
server:
  port: 3614
admin:
  token: file-token
provider:
  type: seafile
  seafile:
    base: https://seafile.example.com
    token: file-seafile-token
    repo_id: repo-1
`

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	if manager.Get().Provider.Type != "webdav" {
		t.Errorf("expected default webdav provider, got %s", manager.Get().Provider.Type)
	}

	// The written default must load back cleanly.
	if _, err := Read(path); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestRead_EnvOverrides(t *testing.T) {
	t.Setenv("ANNIL_ADMIN_TOKEN", "env-token")
	t.Setenv("SEAFILE_TOKEN", "env-seafile-token")

	cfg, err := Read(writeConfig(t, seafileConfig))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Admin.Token != "env-token" {
		t.Errorf("expected admin token from env, got %s", cfg.Admin.Token)
	}
	if cfg.Provider.Seafile.Token != "env-seafile-token" {
		t.Errorf("expected seafile token from env, got %s", cfg.Provider.Seafile.Token)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got %s", cfg.Metrics.Path)
	}
}

func TestRead_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "unknown provider",
			content: "server:\n  port: 1\nprovider:\n  type: ftp\n",
			field:   "Type",
		},
		{
			name:    "webdav without url",
			content: "server:\n  port: 1\nprovider:\n  type: webdav\n",
			field:   "webdav.url",
		},
		{
			name:    "seafile without repo",
			content: "server:\n  port: 1\nprovider:\n  type: seafile\n  seafile:\n    base: https://s.example\n    token: x\n",
			field:   "seafile.repo_id",
		},
		{
			name:    "missing port",
			content: "provider:\n  type: webdav\n  webdav:\n    url: http://dav.example\n",
			field:   "Port",
		},
		{
			name:    "bad log level",
			content: "server:\n  port: 1\nlogger:\n  level: loud\nprovider:\n  type: webdav\n  webdav:\n    url: http://dav.example\n",
			field:   "Level",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to mention %s, got %v", tc.field, err)
			}
		})
	}
}

func TestManager_RedactsSecrets(t *testing.T) {
	cfg, err := Read(writeConfig(t, seafileConfig))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	manager := NewManager(cfg)

	for name, out := range map[string]string{"json": manager.GetJSON(), "yaml": manager.GetYAML()} {
		if strings.Contains(out, "file-token") || strings.Contains(out, "file-seafile-token") {
			t.Errorf("%s output leaks a secret: %s", name, out)
		}
	}
	if manager.Get().Admin.Token != "file-token" {
		t.Error("expected redaction to leave the live config untouched")
	}
}

func TestManager_UpdateSwapsSnapshot(t *testing.T) {
	first := &Config{Provider: Provider{Type: "webdav"}}
	manager := NewManager(first)
	held := manager.Get()

	manager.Update(&Config{Provider: Provider{Type: "seafile"}})

	if held.Provider.Type != "webdav" {
		t.Error("expected the held snapshot to stay unchanged")
	}
	if manager.Get().Provider.Type != "seafile" {
		t.Errorf("expected new snapshot, got %s", manager.Get().Provider.Type)
	}
}

func TestGetConfigRoute(t *testing.T) {
	cfg, err := Read(writeConfig(t, seafileConfig))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	app := fiber.New()
	RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() }, NewManager(cfg))

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/config?format=yaml", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "repo_id: repo-1") {
		t.Errorf("expected yaml body, got %s", body)
	}
}
