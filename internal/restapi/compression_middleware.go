package restapi

import (
	"compress/gzip"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig controls gzip compression of responses.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int
	// Level is a gzip level from gzip.BestSpeed to gzip.BestCompression.
	Level int
}

func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{MinSize: 1024, Level: 6}
}

func (c CompressionConfig) withDefaults() CompressionConfig {
	defaults := DefaultCompressionConfig()
	if c.MinSize <= 0 {
		c.MinSize = defaults.MinSize
	}
	if c.Level < gzip.BestSpeed || c.Level > gzip.BestCompression {
		c.Level = defaults.Level
	}
	return c
}

// NewCompressionMiddleware gzips responses for clients that send
// Accept-Encoding: gzip. Out of range fields fall back to the defaults.
func NewCompressionMiddleware(config CompressionConfig) func(http.Handler) http.Handler {
	config = config.withDefaults()

	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
	)
	return func(next http.Handler) http.Handler {
		if err != nil {
			return gzhttp.GzipHandler(next)
		}
		return wrap(next)
	}
}

// CompressionMiddleware gzips with DefaultCompressionConfig.
func CompressionMiddleware(next http.Handler) http.Handler {
	return NewCompressionMiddleware(DefaultCompressionConfig())(next)
}
