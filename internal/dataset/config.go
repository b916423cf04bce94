package dataset

import (
	"log/slog"
	"strings"
	"time"

	"churnboard.telecomx.org/internal/appconf"
)

// SQLitePrefix marks a source that names a churndb snapshot.
const SQLitePrefix = "sqlite://"

type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceURL    SourceKind = "url"
	SourceSQLite SourceKind = "sqlite"
)

type Config struct {
	Source      string
	HTTPTimeout time.Duration
	Env         appconf.Environment
	Logger      *slog.Logger
	Verbose     bool
}

// Kind classifies the configured source.
func (c Config) Kind() SourceKind {
	switch {
	case strings.HasPrefix(c.Source, "http://"), strings.HasPrefix(c.Source, "https://"):
		return SourceURL
	case strings.HasPrefix(c.Source, SQLitePrefix):
		return SourceSQLite
	default:
		return SourceFile
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
