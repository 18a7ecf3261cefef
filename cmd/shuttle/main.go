package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	app "github.com/warekit/shuttle"
	"github.com/warekit/shuttle/internal/config"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/internal/loader"
	"github.com/warekit/shuttle/internal/server"
	"github.com/warekit/shuttle/pkg/log"
)

type shuttle struct {
	cfg        *config.Config
	loader     *loader.Loader
	engine     *engine.Engine
	sessions   *engine.SessionManager
	apiServer  *server.Server
	httpServer *http.Server
	cancel     context.CancelFunc
	quit       chan os.Signal
}

const shutdownTimeout = 10 * time.Second

var (
	ErrOpenLoader        = errors.New("failed to open definition store")
	ErrLoadApplication   = errors.New("failed to load application")
	ErrInitializeDevices = errors.New("failed to initialize devices")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			slog.Error("Invalid configuration file", log.Error(err))
			os.Exit(1)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &shuttle{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *shuttle) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.initializeEngine(ctx); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *shuttle) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("application_id", s.cfg.ApplicationID),
		slog.String("default_database", s.cfg.DefaultDatabase),
		slog.Int("database_targets", len(s.cfg.Databases)),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *shuttle) initializeEngine(ctx context.Context) error {
	ldr, err := loader.Open(s.cfg.Driver, s.cfg.EngineDSN)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenLoader, err)
	}
	s.loader = ldr

	s.engine = engine.New(s.cfg, s.loader)
	if err := s.engine.LoadApplication(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadApplication, err)
	}

	s.sessions = engine.NewSessionManager(s.engine, s.cfg, engine.SystemClock)
	if err := s.sessions.InitializeDevices(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrInitializeDevices, err)
	}
	s.sessions.StartJanitor(ctx, s.cfg.CleanupInterval)
	return nil
}

func (s *shuttle) startServer() {
	s.apiServer = server.NewServer(s.engine, s.sessions)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *shuttle) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.cancel()
	s.sessions.Close(ctx)

	if err := s.engine.Close(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}
	if err := s.loader.Close(); err != nil {
		slog.Error("Loader shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
