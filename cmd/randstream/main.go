// Package main implements the randstream process: it loads the platform
// configuration, connects to NATS and runs the configured record stream
// processors until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/componentregistry"
	"github.com/c360/randstream/config"
	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/metric"
	"github.com/c360/randstream/natsclient"
	"github.com/c360/randstream/pkg/retry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "randstream"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "components", cfg.EnabledComponents())
		return nil
	}
	slog.Debug("Configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the group context also ends when the metrics server dies
	g, ctx := errgroup.WithContext(ctx)

	metricsRegistry := metric.NewMetricsRegistry()
	metricsServer := startMetricsServer(g, cfg.Metrics, metricsRegistry)

	natsClient, err := newNATSClient(cfg, metricsRegistry)
	if err != nil {
		stopMetricsServer(metricsServer)
		return fmt.Errorf("create NATS client: %w", err)
	}

	registry := component.NewRegistry()
	if err := componentregistry.Register(registry); err != nil {
		stopMetricsServer(metricsServer)
		return fmt.Errorf("register components: %w", err)
	}
	slog.Info("Component factories registered", "factories", registry.ListComponentTypes())

	host := newHost(registry, component.Dependencies{
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Logger:          slog.Default(),
		Platform:        cfg.PlatformMeta(),
	})

	runErr := connectToNATS(ctx, natsClient)
	if runErr == nil {
		runErr = host.createAll(cfg)
	}
	if runErr == nil {
		runErr = host.startAll(ctx)
	}
	if runErr == nil {
		slog.Info("randstream running", "components", host.names())
		<-ctx.Done()
		slog.Info("Stop requested", "cause", context.Cause(ctx))
	}

	shutdown(host, natsClient, metricsServer, cliCfg.ShutdownTimeout)
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s (build %s)\n", appName, Version, BuildTime)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		return nil, true, nil
	}

	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting randstream",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	loader.AddLayer(path)
	loader.EnableValidation(true)
	return loader.Load()
}

// startMetricsServer serves the registry on the group when enabled
func startMetricsServer(g *errgroup.Group, cfg config.MetricsConfig, registry *metric.MetricsRegistry) *metric.Server {
	if !cfg.Enabled {
		slog.Info("Metrics endpoint disabled")
		return nil
	}

	server := metric.NewServer(cfg.Port, cfg.Path, registry)
	g.Go(func() error {
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err, "address", server.Address())
			return err
		}
		return nil
	})
	slog.Info("Metrics endpoint started", "address", server.Address(), "path", cfg.Path)
	return server
}

func stopMetricsServer(server *metric.Server) {
	if server == nil {
		return
	}
	if err := server.Stop(); err != nil {
		slog.Warn("Metrics server stop failed", "error", err)
	}
}

func newNATSClient(cfg *config.Config, registry *metric.MetricsRegistry) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(slog.Default()),
		natsclient.WithMetrics(registry.CoreMetrics()),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithName(fmt.Sprintf("%s-%s-%s", appName, cfg.GetOrg(), cfg.GetPlatform())),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	// nats.Connect accepts a comma separated server list
	return natsclient.NewClient(strings.Join(cfg.NATS.URLs, ","), opts...)
}

// connectToNATS establishes NATS connection and waits for it to be ready
func connectToNATS(ctx context.Context, natsClient *natsclient.Client) error {
	slog.Info("Connecting to NATS", "url", natsClient.URL())
	err := retry.Do(ctx, retry.Quick(), func() error {
		err := natsClient.Connect(ctx)
		if errors.Is(err, errors.ErrCircuitOpen) {
			return retry.NonRetryable(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := natsClient.WaitForConnection(connCtx); err != nil {
		return fmt.Errorf("NATS connection timeout: %w", err)
	}

	return nil
}

func shutdown(h *host, natsClient *natsclient.Client, metricsServer *metric.Server, timeout time.Duration) {
	slog.Info("Shutting down", "timeout", timeout)

	h.stopAll(timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := natsClient.Close(ctx); err != nil {
		slog.Warn("NATS close failed", "error", err)
	}

	stopMetricsServer(metricsServer)

	slog.Info("Shutdown complete")
}
