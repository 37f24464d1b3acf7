package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cartastrutturata/pkg/cache"
	"github.com/matzehuels/cartastrutturata/pkg/io"
	"github.com/matzehuels/cartastrutturata/pkg/observability"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		ID:        uuid.New(),
		Artifacts: make(map[string][]byte),
	}
	hooks := observability.Pipeline()

	// Stage 1: Parse
	hooks.OnParseStart(ctx, opts.Title)
	parseStart := time.Now()
	forest, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	result.Stats.ParseTime = time.Since(parseStart)
	hooks.OnParseComplete(ctx, opts.Title, countNodes(forest), result.Stats.ParseTime, err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Forest = forest
	result.Stats.Stats = pseudocode.Summarize(forest)
	result.Stats.Lines = len(pseudocode.Flatten(forest))
	result.CacheInfo.ParseHit = parseHit

	r.Logger.Info("parsed pseudocode",
		"id", result.ID,
		"blocks", result.Stats.Blocks,
		"leaves", result.Stats.Leaves,
		"depth", result.Stats.MaxDepth,
		"duration", result.Stats.ParseTime)

	// Every artifact cached: layout is skipped entirely.
	hash := opts.ContentHash()
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, hash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Info("served from cache", "id", result.ID, "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Layout
	hooks.OnLayoutStart(ctx, result.Stats.Rows)
	layoutStart := time.Now()
	sheet := Compose(forest, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, sheet.Rows, result.Stats.LayoutTime)

	r.Logger.Info("composed sheet",
		"id", result.ID,
		"rows", sheet.Grid.Rows(),
		"ops", len(sheet.Ops),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := RenderSheet(ctx, sheet, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	for format, data := range artifacts {
		r.set(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), data)
	}

	r.Logger.Info("rendered outputs",
		"id", result.ID,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo builds the block tree with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) ([]*pseudocode.Node, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.TreeKey(cache.HashStrings(opts.Code), opts.Strict)

	if !opts.Refresh {
		if data, hit := r.get(ctx, cacheKey); hit {
			forest, err := io.ReadJSON(bytes.NewReader(data))
			if err == nil {
				return forest, true, nil
			}
			r.Logger.Warn("discarding corrupt cached tree", "error", err)
		}
	}

	forest, err := Parse(opts)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := io.WriteJSON(forest, &buf); err == nil {
		r.set(ctx, cacheKey, buf.Bytes())
	}
	return forest, false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) ([]*pseudocode.Node, error) {
	forest, _, err := r.ParseWithCacheInfo(ctx, opts)
	return forest, err
}

// cachedArtifacts returns every requested format from the cache, or false
// if any one of them is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, hash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit := r.get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
		if !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) get(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
