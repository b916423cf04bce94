package churndb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/logging"
)

// ErrNoSnapshot is returned by the readers when nothing has been imported yet.
var ErrNoSnapshot = errors.New("no dataset snapshot imported")

// Client stores one customer dataset snapshot in SQLite.
type Client struct {
	config        Config
	DB            *sql.DB
	logger        *slog.Logger
	importRuntime time.Duration
}

// Meta describes the stored snapshot.
type Meta struct {
	Source     string
	ImportedAt time.Time
	Rows       int
}

// NewClient opens the database and applies the schema. In the test
// environment only in-memory databases may be opened.
func NewClient(config Config) (*Client, error) {
	if config.Env == appconf.Test && config.DBPath != memoryPath {
		return nil, fmt.Errorf("refusing to open %q in test environment", config.DBPath)
	}

	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.verbose {
		logging.LogOperation(logger, "snapshot_schema_ready", slog.String("path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
		logger: logger,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the last Import took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// Import replaces the stored snapshot with columns and rows inside a single
// transaction. progress, when non-nil, is called once per stored row.
func (c *Client) Import(ctx context.Context, columns []string, rows [][]string, source string, progress func()) (err error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)
		if c.config.verbose && err == nil {
			logging.LogOperation(c.logger, "snapshot_imported",
				slog.String("source", source),
				slog.Int("rows", len(rows)),
				slog.Duration("duration", c.importRuntime))
		}
	}()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "snapshot_import")

	for _, table := range []string{"dataset_meta", "dataset_columns", "dataset_rows"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, name := range columns {
		if _, err := tx.ExecContext(ctx, "INSERT INTO dataset_columns (position, name) VALUES (?, ?)", i, name); err != nil {
			return fmt.Errorf("storing column %q: %w", name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO dataset_rows (row_index, cells) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer logging.SafeCloseWithLogging(stmt, c.logger, "snapshot_row_statement")

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d: expected %d fields, got %d", i+1, len(columns), len(row))
		}
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, i, string(cells)); err != nil {
			return fmt.Errorf("storing row %d: %w", i+1, err)
		}
		if progress != nil {
			progress()
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO dataset_meta (id, source, imported_at, row_count) VALUES (1, ?, ?, ?)",
		source, time.Now().UnixMilli(), len(rows))
	if err != nil {
		return fmt.Errorf("storing snapshot metadata: %w", err)
	}

	return tx.Commit()
}

// Meta returns the snapshot metadata, or ErrNoSnapshot.
func (c *Client) Meta(ctx context.Context) (Meta, error) {
	var (
		m          Meta
		importedAt int64
	)
	err := c.DB.QueryRowContext(ctx,
		"SELECT source, imported_at, row_count FROM dataset_meta WHERE id = 1").
		Scan(&m.Source, &importedAt, &m.Rows)
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, ErrNoSnapshot
	}
	if err != nil {
		return Meta{}, err
	}
	m.ImportedAt = time.UnixMilli(importedAt)
	return m, nil
}

// Columns returns the stored header row in its original order.
func (c *Client) Columns(ctx context.Context) (_ []string, err error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT name FROM dataset_columns ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer logging.HandleDeferredError(&err, rows.Close, c.logger, "close_column_rows")

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoSnapshot
	}
	return columns, nil
}

// Rows returns the stored records in import order.
func (c *Client) Rows(ctx context.Context) (_ [][]string, err error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT row_index, cells FROM dataset_rows ORDER BY row_index")
	if err != nil {
		return nil, err
	}
	defer logging.HandleDeferredError(&err, rows.Close, c.logger, "close_dataset_rows")

	out := [][]string{}
	for rows.Next() {
		var (
			index int
			cells string
		)
		if err := rows.Scan(&index, &cells); err != nil {
			return nil, err
		}
		var record []string
		if err := json.Unmarshal([]byte(cells), &record); err != nil {
			return nil, fmt.Errorf("row %d: %w", index+1, err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// TableCounts returns the number of rows in each snapshot table.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"dataset_meta", "dataset_columns", "dataset_rows"} {
		var n int
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
