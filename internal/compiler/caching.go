package compiler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonathan/talentsync/internal/cache"
	"github.com/jonathan/talentsync/internal/observability"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long compiled PDFs are kept.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "pdf"

// CachingCompiler serves repeated sources from a cache and runs at most one
// compilation per distinct source at a time.
type CachingCompiler struct {
	next    PDFCompiler
	cache   cache.Cache
	ttl     time.Duration
	logger  *log.Logger
	metrics *observability.Metrics
	group   singleflight.Group
}

// cachedPDF is the stored form of a Result.
type cachedPDF struct {
	PDF   []byte `json:"pdf"`
	Pages int    `json:"pages"`
}

// NewCachingCompiler fronts next with c. A non-positive ttl selects DefaultCacheTTL.
func NewCachingCompiler(next PDFCompiler, c cache.Cache, ttl time.Duration, logger *log.Logger, metrics *observability.Metrics) *CachingCompiler {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachingCompiler{next: next, cache: c, ttl: ttl, logger: logger, metrics: metrics}
}

// CacheKey returns the cache key for a LaTeX source.
func CacheKey(source string) string {
	return cache.Key(cacheKeyPrefix, []byte(source))
}

// Compile returns a cached PDF when one exists. Cache failures are logged
// and treated as misses; only compiler errors and ctx cancellation are returned.
func (c *CachingCompiler) Compile(ctx context.Context, source string) (*Result, error) {
	key := CacheKey(source)

	if res, ok := c.lookup(ctx, key); ok {
		return res, nil
	}

	// The shared compilation outlives any single caller; the engine timeout bounds it.
	ch := c.group.DoChan(key, func() (any, error) {
		workCtx := context.WithoutCancel(ctx)
		res, err := c.next.Compile(workCtx, source)
		if err != nil {
			return nil, err
		}
		c.store(workCtx, key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

func (c *CachingCompiler) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.metrics.ObserveCacheLookup("error")
		c.logger.Warn("pdf cache lookup failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		c.metrics.ObserveCacheLookup("miss")
		return nil, false
	}

	var entry cachedPDF
	if err := json.Unmarshal(data, &entry); err != nil || len(entry.PDF) == 0 {
		c.metrics.ObserveCacheLookup("error")
		c.logger.Warn("discarding unreadable pdf cache entry", "key", key)
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}
	c.metrics.ObserveCacheLookup("hit")
	return &Result{PDF: entry.PDF, Pages: entry.Pages, Cached: true}, true
}

func (c *CachingCompiler) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedPDF{PDF: res.PDF, Pages: res.Pages})
	if err != nil {
		c.logger.Warn("failed to encode pdf cache entry", "err", err)
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("pdf cache store failed", "key", key, "err", err)
	}
}

var _ PDFCompiler = (*CachingCompiler)(nil)
