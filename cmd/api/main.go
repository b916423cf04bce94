package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"churnboard.telecomx.org/internal/app"
	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/cache"
	"churnboard.telecomx.org/internal/dashboard"
	"churnboard.telecomx.org/internal/dataset"
	"churnboard.telecomx.org/internal/logging"
	"churnboard.telecomx.org/internal/restapi"
)

func main() {
	cfg, err := appconf.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logLevel, err := parseFlags(os.Args[1:], &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(logLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseFlags lets command-line flags override values loaded from the
// environment. It returns the requested log level.
func parseFlags(args []string, cfg *appconf.Config) (string, error) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	var (
		origins  = strings.Join(cfg.CORSOrigins, ",")
		logLevel string
	)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "API server port")
	fs.StringVar(&cfg.EnvName, "env", cfg.EnvName, "Environment (development|test|production)")
	fs.StringVar(&cfg.DataSource, "data", cfg.DataSource, "Dataset source: CSV path, http(s) URL or sqlite://<path>")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for result caching (empty disables the cache)")
	fs.StringVar(&origins, "cors-origins", origins, "Comma separated origins allowed to call the API (* for any)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log dataset loading details")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return "", err
	}

	cfg.CORSOrigins = nil
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	cfg.Env = appconf.EnvFlagToEnvironment(cfg.EnvName)

	return logLevel, cfg.Validate()
}

// newApplication loads the dataset and wires the dashboard service. Redis is
// optional: when it cannot be reached the service computes every request.
func newApplication(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*app.Application, func(), error) {
	data, stats, err := dataset.Load(ctx, dataset.Config{
		Source:      cfg.DataSource,
		HTTPTimeout: cfg.HTTPTimeout,
		Env:         cfg.Env,
		Logger:      logger,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}

	cleanup := func() {}
	var resultCache *cache.Cache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logging.LogError(logger, "redis unavailable, caching disabled", err,
				slog.String("addr", cfg.RedisAddr))
		} else {
			resultCache = cache.New(client, cfg.CacheTTL, logger)
			cleanup = func() {
				logging.SafeCloseWithLogging(client, logger, "redis_client")
			}
		}
	}

	application := &app.Application{
		Config:    cfg,
		Logger:    logger,
		Dashboard: dashboard.NewService(data, resultCache, logger),
		LoadStats: stats,
	}
	return application, cleanup, nil
}

func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger) error {
	application, cleanup, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	api := restapi.NewRestAPI(application)
	defer api.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      routes(application, api),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
