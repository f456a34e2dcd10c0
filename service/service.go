// Package service ties fetching, extraction, analysis and persistence together.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/seo-optimizer/tagscope/analyzer"
	"github.com/seo-optimizer/tagscope/extractor"
	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/storage"
)

const (
	DefaultCacheTTL        = 30 * time.Minute
	DefaultMaxCacheSize    = 1000
	DefaultCleanupInterval = 5 * time.Minute
)

// PageFetcher is implemented by *fetcher.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

// StatsRecorder is implemented by *stats.Storage.
type StatsRecorder interface {
	IncrementStats(analyses, cacheHits, cacheMisses, fetchErrors int)
}

type Options struct {
	// CacheTTL of zero disables the result cache.
	CacheTTL        time.Duration
	MaxCacheSize    int
	CleanupInterval time.Duration
}

// DefaultOptions returns the cache settings used by the server.
func DefaultOptions() Options {
	return Options{
		CacheTTL:        DefaultCacheTTL,
		MaxCacheSize:    DefaultMaxCacheSize,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Service runs analyses and serves stored ones.
type Service struct {
	fetcher PageFetcher
	store   storage.Store
	stats   StatsRecorder
	cache   *resultCache
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Service. stats may be nil.
func New(f PageFetcher, store storage.Store, stats StatsRecorder, opts Options) *Service {
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = DefaultMaxCacheSize
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}

	s := &Service{
		fetcher: f,
		store:   store,
		stats:   stats,
		cache:   newResultCache(opts.CacheTTL, opts.MaxCacheSize),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if opts.CacheTTL > 0 {
		go s.periodicCleanup(opts.CleanupInterval)
	}
	return s
}

// periodicCleanup removes expired cache entries until Close is called
func (s *Service) periodicCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cache.cleanup()
		case <-s.done:
			return
		}
	}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return trimmed, nil
}

// Analyze fetches rawURL, scores its tags and stores the outcome. Results are
// served from the cache while fresh.
func (s *Service) Analyze(ctx context.Context, rawURL string) (*analyzer.Result, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	// Paths are case-sensitive, so the cache is keyed on the URL as requested.
	if cached, ok := s.cache.get(target); ok {
		s.record(0, 1, 0, 0)
		return &cached, nil
	}
	s.record(0, 0, 1, 0)

	start := s.now()
	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		s.record(0, 0, 0, 1)
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamStatus, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	tags, err := extractor.Extract(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	result := analyzer.Analyze(target, tags)

	rec := storage.NewRecord(tags, result, s.now())
	if _, err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.cache.put(target, result)
	s.record(1, 0, 0, 0)
	log.Printf("Analyzed %s in %s (overall %d)", target, s.now().Sub(start), result.ScoreData.Overall)

	return &result, nil
}

// Recent returns up to limit stored analyses, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]storage.Record, error) {
	records, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id int64) (storage.Record, error) {
	rec, err := s.store.Get(ctx, id)
	return rec, storeError(err)
}

func (s *Service) GetByURL(ctx context.Context, rawURL string) (storage.Record, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return storage.Record{}, err
	}
	rec, err := s.store.GetByURL(ctx, target)
	return rec, storeError(err)
}

// CacheEntries reports how many results are currently cached.
func (s *Service) CacheEntries() int {
	return s.cache.len()
}

// Close stops the cache cleanup goroutine. The store is owned by the caller.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Service) record(analyses, cacheHits, cacheMisses, fetchErrors int) {
	if s.stats != nil {
		s.stats.IncrementStats(analyses, cacheHits, cacheMisses, fetchErrors)
	}
}

func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}
