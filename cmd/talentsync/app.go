package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talentsync/internal/cache"
	"github.com/jonathan/talentsync/internal/compiler"
	"github.com/jonathan/talentsync/internal/config"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/jonathan/talentsync/internal/rendering"
)

// compileStack is the engine wrapped in the circuit breaker and the PDF cache.
type compileStack struct {
	engine   *compiler.Compiler
	breaker  *compiler.Breaker
	compiler compiler.PDFCompiler
	cache    cache.Cache
}

func (s *compileStack) Close() error {
	return s.cache.Close()
}

// newCompileStack builds cache(breaker(engine)) from cfg. Cache hits never
// touch the breaker.
func newCompileStack(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*compileStack, error) {
	engine := compiler.New(compiler.Options{
		Engine:  cfg.Compiler.Engine,
		Timeout: cfg.Compiler.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})

	cb := cfg.Compiler.CircuitBreaker
	breaker := compiler.NewBreaker(engine, compiler.BreakerSettings{
		Enabled:          cb.Enabled,
		MaxRequests:      cb.MaxRequests,
		Interval:         cb.Interval,
		Timeout:          cb.Timeout,
		MinRequests:      cb.MinRequests,
		FailureThreshold: cb.FailureThreshold,
	}, logger, metrics)

	c, err := cache.New(ctx, cache.Options{
		Backend:  cfg.Cache.Backend,
		Dir:      cfg.Cache.Dir,
		RedisURL: cfg.Cache.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	return &compileStack{
		engine:   engine,
		breaker:  breaker,
		compiler: compiler.NewCachingCompiler(breaker, c, cfg.Cache.TTL, logger, metrics),
		cache:    c,
	}, nil
}

// newGenerator loads skill categories from path, or from the configured
// file when path is empty.
func newGenerator(path string) (*rendering.Generator, error) {
	if path == "" {
		path = appConfig.SkillCategoriesFile
	}
	categories, err := config.LoadSkillCategories(path)
	if err != nil {
		return nil, err
	}
	return rendering.NewGenerator(categories), nil
}
