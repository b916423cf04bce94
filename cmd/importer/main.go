// Command importer reads a customer CSV from a file or URL, validates it and
// stores it as a churndb snapshot that the api command can load with
// -data sqlite://<path>.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"churnboard.telecomx.org/churndb"
	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/cache"
	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/dataset"
	"churnboard.telecomx.org/internal/logging"
)

type options struct {
	source    string
	dbPath    string
	redisAddr string
	env       appconf.Environment
	quiet     bool
	verbose   bool
}

// result describes a finished import.
type result struct {
	Rows        int
	Skipped     int
	Fingerprint string
	Meta        churndb.Meta
	CacheBumped bool
}

func main() {
	cfg, err := appconf.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stderr, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runImport(ctx, opts, logger)
	if err != nil {
		logging.LogError(logger, "import failed", err, slog.String("source", opts.source))
		os.Exit(1)
	}

	logging.LogOperation(logger, "import_complete",
		slog.String("source", res.Meta.Source),
		slog.String("db", opts.dbPath),
		slog.Int("rows", res.Rows),
		slog.Int("skipped", res.Skipped),
		slog.String("fingerprint", res.Fingerprint),
		slog.Bool("cache_bumped", res.CacheBumped))
}

func parseFlags(args []string, cfg appconf.Config) (options, error) {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)

	var (
		opts    options
		envName string
	)
	fs.StringVar(&opts.source, "source", cfg.DataSource, "CSV path or http(s) URL to import")
	fs.StringVar(&opts.dbPath, "db", "churn.db", "SQLite snapshot path")
	fs.StringVar(&opts.redisAddr, "redis", cfg.RedisAddr, "Redis address whose cached results are invalidated after import")
	fs.StringVar(&envName, "env", cfg.EnvName, "Environment (development|test|production)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Hide the progress bar")
	fs.BoolVar(&opts.verbose, "verbose", cfg.Verbose, "Log database details")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.env = appconf.EnvFlagToEnvironment(envName)

	if opts.source == "" || opts.dbPath == "" {
		return options{}, fmt.Errorf("both -source and -db are required")
	}
	return opts, nil
}

func runImport(ctx context.Context, opts options, logger *slog.Logger) (result, error) {
	records, err := dataset.Read(ctx, dataset.Config{
		Source: opts.source,
		Env:    opts.env,
		Logger: logger,
	})
	if err != nil {
		return result{}, err
	}

	// Reject rows the api command would refuse before replacing the snapshot.
	data, err := churn.NewDataset(records.Columns, records.Rows)
	if err != nil {
		return result{}, fmt.Errorf("validating %s: %w", opts.source, err)
	}

	dbConfig := churndb.NewConfig(opts.dbPath, opts.env, opts.verbose)
	dbConfig.Logger = logger
	client, err := churndb.NewClient(dbConfig)
	if err != nil {
		return result{}, err
	}
	defer logging.SafeCloseWithLogging(client, logger, "churndb_close")

	bar := newProgressBar(len(records.Rows), opts.quiet)
	err = client.Import(ctx, records.Columns, records.Rows, opts.source, func() {
		_ = bar.Add(1)
	})
	if err != nil {
		return result{}, err
	}
	_ = bar.Finish()

	meta, err := client.Meta(ctx)
	if err != nil {
		return result{}, err
	}

	res := result{
		Rows:        data.Len(),
		Skipped:     records.Skipped,
		Fingerprint: data.Fingerprint(),
		Meta:        meta,
	}

	if opts.redisAddr != "" {
		if err := bumpCache(ctx, opts.redisAddr, logger); err != nil {
			logging.LogError(logger, "cache invalidation failed", err, slog.String("addr", opts.redisAddr))
		} else {
			res.CacheBumped = true
		}
	}

	return res, nil
}

func newProgressBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total), "importing rows")
	}
	return progressbar.Default(int64(total), "importing rows")
}

// bumpCache invalidates every cached dashboard result so running api
// processes pick up the new snapshot's numbers once they reload it.
func bumpCache(ctx context.Context, addr string, logger *slog.Logger) error {
	client, err := cache.NewRedisClient(ctx, addr)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(client, logger, "redis_client")

	version, err := cache.New(client, 0, logger).Bump(ctx)
	if err != nil {
		return err
	}
	logger.Info("cache version bumped", slog.Int64("version", version))
	return nil
}
