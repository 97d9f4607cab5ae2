package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/crmcal/internal/config"
	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/mcp"
	"github.com/rpggio/crmcal/internal/metrics"
	"github.com/rpggio/crmcal/internal/notify"
	"github.com/rpggio/crmcal/internal/platform"
	"github.com/rpggio/crmcal/internal/repository"
	"github.com/rpggio/crmcal/internal/sqlite"
	"github.com/rpggio/crmcal/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Error("invalid calendar timezone", "timezone", cfg.Calendar.Timezone, "error", err)
		os.Exit(1)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiKeys := sqlite.NewAPIKeyRepository(db)
	if cfg.Auth.BootstrapKey != "" {
		if err := apiKeys.Create(ctx, cfg.Auth.DefaultTenant, cfg.Auth.BootstrapKey, "bootstrap"); err != nil && !errors.Is(err, repository.ErrConflict) {
			logger.Error("failed to register bootstrap api key", "error", err)
			os.Exit(1)
		}
	}

	var m *metrics.Metrics
	var observer calendar.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	client := platform.NewClient(ctx, platform.Config{
		BaseURL:      cfg.Platform.BaseURL,
		TokenURL:     cfg.Platform.TokenURL,
		ClientID:     cfg.Platform.ClientID,
		ClientSecret: cfg.Platform.ClientSecret,
		Scopes:       cfg.Platform.Scopes,
		Timeout:      cfg.Platform.Timeout,
	}, logger)
	appURL := cfg.Platform.AppURL
	if appURL == "" {
		appURL = cfg.Platform.BaseURL
	}

	notifier := notify.NewContextNotifier(notify.NewLogNotifier(logger))

	sourceSvc := source.NewService(sqlite.NewSourceStore(db, logger), client, notifier, logger)
	settingsSvc := settings.NewService(sqlite.NewKVStore(db), settings.Defaults{
		DayCap:        cfg.Calendar.DayCap,
		DefaultObject: cfg.Calendar.DefaultObject,
	}, logger)
	calendarSvc := calendar.NewService(calendar.Config{
		Sources:     sourceSvc,
		Settings:    settingsSvc,
		Query:       client,
		Notifier:    notifier,
		Observer:    observer,
		Location:    loc,
		Concurrency: cfg.Calendar.Concurrency,
		Logger:      logger,
	})
	navigationSvc := navigation.NewAdapter(sourceSvc, client, settingsSvc, platform.NewPageNavigator(appURL), logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	services := mcp.Services{
		Sources:    sourceSvc,
		Settings:   settingsSvc,
		Calendar:   calendarSvc,
		Navigation: navigationSvc,
		Activity:   activitySvc,
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      apiKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultTenant: cfg.Auth.DefaultTenant,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, cancel, logger, mcpServer)
		return
	}

	authMiddleware := transport.StaticTenant(cfg.Auth.DefaultTenant)
	if cfg.Auth.Enabled {
		authMiddleware = transport.AuthMiddleware(apiKeys)
	}
	opts := []transport.Option{
		transport.WithStreamableMCP(sdkmcp.NewStreamableHTTPHandler(
			func(r *http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{
				Stateless:      false,
				SessionTimeout: 30 * time.Minute,
			},
		)),
		transport.WithCalendarFeed(calendarSvc),
	}
	if m != nil {
		opts = append(opts, transport.WithMetrics(cfg.Metrics.Path, m.Handler()))
	}
	router := transport.NewServer(mcp.NewHandler(services), authMiddleware, opts...)

	runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port, cfg.Auth.Enabled)
}

func runStdioMode(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int, authEnabled bool) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
