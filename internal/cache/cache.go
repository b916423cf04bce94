package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"churnboard.telecomx.org/internal/logging"
)

const (
	keyPrefix  = "churnboard"
	versionKey = keyPrefix + ":version"
	// BumpChannel receives the new version after every Bump.
	BumpChannel = keyPrefix + ".bump"
)

// Cache stores JSON encoded results in Redis under versioned keys. A nil
// Cache, or one without a client, computes every value directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	return ver, err
}

// JoinKey query-escapes each part and joins them under the package prefix,
// so a ':' inside a part cannot shift it into its neighbour.
func JoinKey(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.QueryEscape(p)
	}
	return keyPrefix + ":" + strings.Join(escaped, ":")
}

// BuildKey joins parts with JoinKey and appends the version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := JoinKey(parts...)
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the value cached under key into dest, or runs loader and
// caches its result. Loader errors are returned and never cached. Redis
// failures are logged and the loader result is used directly.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}

	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			decodeErr := json.Unmarshal(payload, dest)
			if decodeErr == nil {
				return nil
			}
			logging.LogError(c.logger, "discarding undecodable cache entry", decodeErr, slog.String("key", key))
		case !errors.Is(err, redis.Nil):
			logging.LogError(c.logger, "cache read failed", err, slog.String("key", key))
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}

	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logging.LogError(c.logger, "cache write failed", err, slog.String("key", key))
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every entry by incrementing the version and publishes the
// new version on BumpChannel.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return 0, err
	}
	if err := c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return ver, err
	}
	return ver, nil
}
