package appconf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by Load, e.g. CHURN_PORT.
const EnvPrefix = "CHURN"

// Config holds all runtime settings. Command-line flags in cmd/ override the
// values loaded here.
type Config struct {
	Port    int         `envconfig:"PORT" default:"4000"`
	EnvName string      `envconfig:"ENV" default:"development"`
	Env     Environment `ignored:"true"`

	DataSource  string        `envconfig:"DATA_SOURCE" default:"testdata/customers.csv"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	Verbose     bool          `envconfig:"VERBOSE" default:"false"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// CORSOrigins lists the origins allowed to call /api/ from a browser.
	// "*" allows any origin.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	RateLimit    float64 `envconfig:"RATE_LIMIT" default:"50"`
	RateBurst    int     `envconfig:"RATE_BURST" default:"100"`
	GzipMinBytes int     `envconfig:"GZIP_MIN_BYTES" default:"1024"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"20s"`
}

// Load reads the optional dotenv files and then the CHURN_* variables.
// Missing dotenv files are not an error.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	cfg.Env = EnvFlagToEnvironment(cfg.EnvName)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataSource == "" {
		return errors.New("data source must be provided")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == Production
}

// AllowsOrigin reports whether browsers at origin may call the API.
func (c Config) AllowsOrigin(origin string) bool {
	for _, allowed := range c.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
