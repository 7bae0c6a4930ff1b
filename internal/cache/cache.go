// Package cache selects and configures the Kolibri cache backend. When the
// redis service is running, the shared redis cache is enabled, stale keys
// are purged, and a memory ceiling is written; otherwise the in-process
// memory backend is selected.
package cache

import (
	"context"
	"strconv"

	"github.com/learningequality/kolibri-server-ctl/internal/errors"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/options"
	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

// Backend values written to CACHE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// usedMemoryMargin is added to redis' reported used memory when it already
// exceeds the tenth-of-RAM ceiling. The unit is whatever redis reports;
// the literal arithmetic is kept from the original sizing scheme.
const usedMemoryMargin = 2000

// Controller drives cache backend selection and redis housekeeping.
type Controller struct {
	exec  system.CommandExecutor
	store *options.Store

	totalMemory func() (uint64, error)
	usedMemory  func(ctx context.Context) (int64, bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithTotalMemory overrides how total system memory is read.
func WithTotalMemory(fn func() (uint64, error)) Option {
	return func(c *Controller) {
		c.totalMemory = fn
	}
}

// WithUsedMemory overrides redis used-memory introspection. The bool result
// reports whether introspection was available at all.
func WithUsedMemory(fn func(ctx context.Context) (int64, bool)) Option {
	return func(c *Controller) {
		c.usedMemory = fn
	}
}

// NewController creates a Controller writing through the given options
// store. redisAddr is the address used for memory introspection only; key
// purging always goes through redis-cli.
func NewController(exec system.CommandExecutor, store *options.Store, redisAddr string, opts ...Option) *Controller {
	c := &Controller{
		exec:        exec,
		store:       store,
		totalMemory: systemTotalMemory,
		usedMemory: func(ctx context.Context) (int64, bool) {
			return redisUsedMemory(ctx, redisAddr)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProbeActive reports whether the redis service is running. A non-zero exit
// from the status check and a missing service command are treated the same
// way: redis is not available.
func (c *Controller) ProbeActive(ctx context.Context) bool {
	_, err := c.exec.Execute(ctx, "service", "redis", "status")
	if err != nil {
		logging.Debug("redis service probe failed", "error", err)
		return false
	}
	return true
}

// Activate switches the cache backend to redis: sets the LRU eviction
// policy, purges stale keys left over from earlier runs, and writes a
// memory ceiling of a tenth of system RAM, raised above redis' current
// usage if redis is already past it.
func (c *Controller) Activate(ctx context.Context, settings *options.Settings) error {
	if err := c.store.Set(options.SectionCache, options.KeyCacheBackend, BackendRedis); err != nil {
		return err
	}
	if err := c.store.Set(options.SectionCache, options.KeyRedisMaxMemoryPolicy, "allkeys-lru"); err != nil {
		return err
	}

	if err := c.purgeStaleKeys(ctx, settings.RedisDB); err != nil {
		return err
	}

	total, err := c.totalMemory()
	if err != nil {
		return errors.CacheError("failed to read system memory", err)
	}
	maxMemory := int64(total / 10)

	if used, ok := c.usedMemory(ctx); ok {
		if maxMemory < used {
			maxMemory = used + usedMemoryMargin
		}
	} else {
		logging.Debug("redis memory introspection unavailable, using system memory ceiling only")
	}

	logging.Debug("setting redis memory ceiling", "maxmemory", maxMemory)
	return c.store.Set(options.SectionCache, options.KeyRedisMaxMemory, maxMemory)
}

// Deactivate switches the cache backend to the in-process memory cache.
func (c *Controller) Deactivate() error {
	return c.store.Set(options.SectionCache, options.KeyCacheBackend, BackendMemory)
}

// purgeSpec names one stale key pattern in one logical database.
type purgeSpec struct {
	db      int
	pattern string
}

// stalePatterns lists the cache keys that would otherwise accumulate across
// reinstalls: per-view caches, channel stats, dataset and settings caches in
// the main cache database, and built hashi files in the next one.
func stalePatterns(db int) []purgeSpec {
	return []purgeSpec{
		{db, ":1:views.decorators.*"},
		{db, ":1:CHANNEL_STATS_CACHED_KEYS*"},
		{db, ":1:*_dataset"},
		{db, ":1:content_cache_key"},
		{db, ":1:device_settings_cache_key"},
		{db + 1, "built_files:1:*"},
	}
}

// purgeStaleKeys removes matching keys with a scan piped into a non-blocking
// unlink. Each pattern gets its own fire-and-forget pipeline: a large delete
// keeps running after this process exits and never stalls a live cache.
// xargs --no-run-if-empty guarantees unlink is never invoked for a pattern
// that matched nothing.
func (c *Controller) purgeStaleKeys(ctx context.Context, db int) error {
	for _, spec := range stalePatterns(db) {
		dbArg := strconv.Itoa(spec.db)
		producer := system.Command{
			Name: "redis-cli",
			Args: []string{"-n", dbArg, "--scan", "--pattern", spec.pattern},
		}
		consumer := system.Command{
			Name: "xargs",
			Args: []string{"--no-run-if-empty", "redis-cli", "-n", dbArg, "unlink"},
		}

		if err := c.exec.StartPipeline(ctx, producer, consumer); err != nil {
			return errors.CacheError("failed to start cache purge", err)
		}
	}
	return nil
}
