// Package registry supplies the ordered release lists the upgrade search walks.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the canonical index spelling of a package name
// (lower case, runs of "-", "_" and "." collapsed to "-").
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Source fetches the stable releases of a package from an upstream index.
type Source interface {
	Releases(ctx context.Context, pkg string) (Releases, error)
}

// Error reports that the upstream index could not produce a release list for
// a package. It only affects the entry that asked for it.
type Error struct {
	Package string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Package, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is (or wraps) a registry Error.
func IsError(err error) bool {
	var regErr *Error
	return errors.As(err, &regErr)
}

// DefaultPrefetchConcurrency bounds the parallel lookups made by Prefetch.
const DefaultPrefetchConcurrency = 4

// Cache memoizes release lists for the lifetime of one run. Failures are not
// cached so a later entry naming the same package asks again. Concurrent
// lookups of one package share a single upstream request.
type Cache struct {
	source Source
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]Releases
}

// NewCache wraps source with per-package memoization.
func NewCache(source Source) *Cache {
	return &Cache{source: source, entries: make(map[string]Releases)}
}

// Releases returns the cached list for pkg, fetching it on first use.
func (c *Cache) Releases(ctx context.Context, pkg string) (Releases, error) {
	key := NormalizeName(pkg)
	if releases, ok := c.lookup(key); ok {
		return releases, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if releases, ok := c.lookup(key); ok {
			return releases, nil
		}
		releases, err := c.source.Releases(ctx, pkg)
		if err != nil {
			return Releases{}, err
		}
		c.mu.Lock()
		c.entries[key] = releases
		c.mu.Unlock()
		return releases, nil
	})
	if err != nil {
		return Releases{}, err
	}
	return v.(Releases), nil
}

func (c *Cache) lookup(key string) (Releases, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	releases, ok := c.entries[key]
	return releases, ok
}

// Prefetch warms the cache for pkgs with at most concurrency parallel
// lookups. Lookup failures are logged and left for the entry that needs the
// list; only context cancellation is returned.
func (c *Cache) Prefetch(ctx context.Context, pkgs []string, concurrency int, logger *slog.Logger) error {
	if concurrency <= 0 {
		concurrency = DefaultPrefetchConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, pkg := range pkgs {
		g.Go(func() error {
			if _, err := c.Releases(gctx, pkg); err != nil {
				logger.Debug("prefetch releases failed", "package", pkg, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Debug("prefetched releases", "requested", len(pkgs), "cached", c.size())
	return ctx.Err()
}

// size returns the number of packages cached so far.
func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
