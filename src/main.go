package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/contre95/annil/src/features/config"
	"github.com/contre95/annil/src/features/hosting"
	"github.com/contre95/annil/src/features/logging"
	"github.com/contre95/annil/src/features/metrics"
	"github.com/contre95/annil/src/features/serving"
	"github.com/contre95/annil/src/infra/providers"
	"github.com/contre95/annil/src/infra/watcher"
	"github.com/contre95/annil/src/music"
)

// version is set via ldflags at build time
var version = "dev"

var CLI struct {
	Config  string `help:"Path to the YAML configuration file" default:"config.yaml" type:"path"`
	Version bool   `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("annil"),
		kong.Description("Serve a FLAC music collection from WebDAV or Seafile storage."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)
	if CLI.Version {
		fmt.Println("annil", version)
		os.Exit(0)
	}

	// Load configuration
	cfgManager, err := config.Load(CLI.Config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	slog.SetDefault(logging.SetupLogger(cfgManager))

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConnsPerHost:   16,
		},
	}
	provider, err := newProvider(cfgManager, client)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}
	slog.Info("Provider ready", "provider", provider.Name())

	var recorder *metrics.Recorder
	if cfgManager.Get().Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}
	servingService := serving.NewService(provider, recorder, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfgManager.Get().Watch.Enabled {
		events := make(chan watcher.FileEvent, 1)
		configWatcher, err := watcher.NewWatcher(events, watcher.DefaultDebounce)
		if err != nil {
			log.Fatalf("failed to create config watcher: %v", err)
		}
		if err := configWatcher.Start(ctx, CLI.Config); err != nil {
			log.Fatalf("failed to watch config: %v", err)
		}
		defer configWatcher.Stop()
		go reloadOnChange(ctx, events, cfgManager, servingService)
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, servingService, recorder)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
			stop()
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	<-ctx.Done()
	slog.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}

// newProvider builds the backend selected in the config. Its options are
// read from the config manager again on every reload.
func newProvider(cfg *config.Manager, client *http.Client) (music.Provider, error) {
	switch kind := cfg.Get().Provider.Type; kind {
	case "webdav":
		return providers.NewWebDAVProvider(client, func() providers.WebDAVOptions {
			c := cfg.Get().Provider.WebDAV
			return providers.WebDAVOptions{URL: c.URL, Username: c.Username, Password: c.Password, Covers: c.Covers}
		}), nil
	case "seafile":
		return providers.NewSeafileProvider(client, func() providers.SeafileOptions {
			c := cfg.Get().Provider.Seafile
			return providers.SeafileOptions{Base: c.Base, Token: c.Token, RepoID: c.RepoID}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", kind)
	}
}

// reloadOnChange re-reads the config file after every debounced change and
// reloads the provider session. An invalid file keeps the running config.
func reloadOnChange(ctx context.Context, events <-chan watcher.FileEvent, cfg *config.Manager, service *serving.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if event.EventType == watcher.FileRemoved {
				slog.Warn("Config file removed, keeping the running configuration", "path", event.Path)
				continue
			}
			next, err := config.Read(event.Path)
			if err != nil {
				slog.Error("Ignoring invalid config change", "path", event.Path, "error", err)
				continue
			}
			if next.Provider.Type != cfg.Get().Provider.Type {
				slog.Warn("Provider type changed, restart to apply it", "from", cfg.Get().Provider.Type, "to", next.Provider.Type)
				next.Provider.Type = cfg.Get().Provider.Type
			}
			cfg.Update(next)
			slog.SetDefault(logging.SetupLogger(cfg))

			reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := service.Reload(reloadCtx); err != nil {
				slog.Error("Provider reload after config change failed", "error", err)
			}
			cancel()
		}
	}
}
