package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"churnboard.telecomx.org/churndb"
	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/logging"
)

const defaultHTTPTimeout = 30 * time.Second

// Records is the raw table read from a source, with blank-churn rows removed.
type Records struct {
	Columns []string
	Rows    [][]string
	Skipped int
}

// LoadStats describes one completed load.
type LoadStats struct {
	Source         string
	Kind           SourceKind
	RowsRead       int
	RowsSkipped    int
	NumericColumns []string
	Fingerprint    string
	Duration       time.Duration
}

// Load reads the configured source and builds the dataset the dashboard
// serves for the lifetime of the process.
func Load(ctx context.Context, cfg Config) (*churn.Dataset, LoadStats, error) {
	start := time.Now()
	stats := LoadStats{Source: cfg.Source, Kind: cfg.Kind()}

	records, err := Read(ctx, cfg)
	if err != nil {
		return nil, stats, err
	}

	d, err := churn.NewDataset(records.Columns, records.Rows)
	if err != nil {
		return nil, stats, fmt.Errorf("building dataset from %s: %w", cfg.Source, err)
	}

	stats.RowsRead = len(records.Rows) + records.Skipped
	stats.RowsSkipped = records.Skipped
	stats.NumericColumns = d.NumericColumns()
	stats.Fingerprint = d.Fingerprint()
	stats.Duration = time.Since(start)

	logging.LogOperation(cfg.logger(), "dataset_loaded",
		slog.String("source", stats.Source),
		slog.String("kind", string(stats.Kind)),
		slog.Int("rows", d.Len()),
		slog.Int("skipped", stats.RowsSkipped),
		slog.String("fingerprint", stats.Fingerprint),
		slog.Duration("duration", stats.Duration))

	return d, stats, nil
}

// Read returns the raw records of the configured source.
func Read(ctx context.Context, cfg Config) (Records, error) {
	if cfg.Source == "" {
		return Records{}, errors.New("no data source configured")
	}

	if cfg.Kind() == SourceSQLite {
		return readSnapshot(ctx, cfg)
	}

	b, err := rawData(ctx, cfg)
	if err != nil {
		return Records{}, err
	}
	return ParseCSV(bytes.NewReader(b))
}

// ParseCSV reads a comma separated table with a header row. Rows whose churn
// cell is blank are dropped and counted in Skipped.
func ParseCSV(r io.Reader) (Records, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Records{}, errors.New("empty dataset: missing header row")
	}
	if err != nil {
		return Records{}, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	churnIdx := churn.ColumnIndex(header, churn.ColumnChurn)
	if churnIdx < 0 {
		return Records{}, fmt.Errorf("missing required column %q", churn.ColumnChurn)
	}

	out := Records{Columns: header, Rows: [][]string{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Records{}, fmt.Errorf("reading records: %w", err)
		}
		if strings.TrimSpace(record[churnIdx]) == "" {
			out.Skipped++
			continue
		}
		out.Rows = append(out.Rows, record)
	}
	return out, nil
}

func rawData(ctx context.Context, cfg Config) ([]byte, error) {
	if cfg.Kind() == SourceFile {
		b, err := os.ReadFile(cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("error reading local dataset: %w", err)
		}
		return b, nil
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("error building dataset request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading dataset: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, cfg.logger(), "dataset_download_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading dataset: unexpected status %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset response: %w", err)
	}
	return b, nil
}

func readSnapshot(ctx context.Context, cfg Config) (Records, error) {
	path := strings.TrimPrefix(cfg.Source, SQLitePrefix)
	dbConfig := churndb.NewConfig(path, cfg.Env, cfg.Verbose)
	dbConfig.Logger = cfg.logger()

	client, err := churndb.NewClient(dbConfig)
	if err != nil {
		return Records{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer logging.SafeCloseWithLogging(client, cfg.logger(), "snapshot_close")

	columns, err := client.Columns(ctx)
	if err != nil {
		return Records{}, fmt.Errorf("reading snapshot columns: %w", err)
	}
	rows, err := client.Rows(ctx)
	if err != nil {
		return Records{}, fmt.Errorf("reading snapshot rows: %w", err)
	}
	return Records{Columns: columns, Rows: rows}, nil
}
