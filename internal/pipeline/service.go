package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/ssuula/internal/align"
	"github.com/ppiankov/ssuula/internal/cache"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/parser"
	"github.com/ppiankov/ssuula/internal/quran"
	"github.com/ppiankov/ssuula/internal/util"
	"github.com/ppiankov/ssuula/internal/worker"
)

// Service answers verse lookups from the translation of the current generation
type Service struct {
	loader *Loader
	store  *cache.Store[*Translation]
	verses quran.VerseSource

	mu  sync.RWMutex
	gen cache.Generation
}

// NewService creates a service starting at gen
func NewService(loader *Loader, store *cache.Store[*Translation], verses quran.VerseSource, gen cache.Generation) *Service {
	return &Service{
		loader: loader,
		store:  store,
		verses: verses,
		gen:    gen,
	}
}

// NewServiceFromConfig wires fetcher, parser, alignment policy and cache from configuration
func NewServiceFromConfig(cfg *model.Config) (*Service, error) {
	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).
		WithAttempts(cfg.HTTP.Retries).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots(util.NewRobotsChecker(fetcher.Client(), cfg.HTTP.UserAgent))
	}

	p, err := parser.NewParser(cfg.Source.Dialect, cfg.Concurrency.ParseWorkers)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	policy := align.NewPolicy(cfg.Alignment.UnshiftedChapters, cfg.Alignment.Invocation)
	loader := NewLoader(fetcher, p, policy, cfg.Alignment.ProbeChapter, cfg.Alignment.Strict)

	gen := cache.Generation{
		Grammar: parser.GrammarVersion,
		Dialect: dialectName(cfg.Source.Dialect),
		Source:  cfg.Source.URL,
	}
	return NewService(loader, cache.NewStore[*Translation](cfg.Cache.LoadTimeout), quran.NewStaticSource(policy.Shifted), gen), nil
}

func dialectName(name string) string {
	if name == "" {
		return parser.AutoDialect
	}
	return name
}

// Generation returns the current cache generation
func (s *Service) Generation() cache.Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Invalidate moves to the next generation so the following lookup refetches.
// The outcome of the previous generation is dropped.
func (s *Service) Invalidate() cache.Generation {
	s.mu.Lock()
	old := s.gen
	s.gen = s.gen.Next()
	next := s.gen
	s.mu.Unlock()

	s.store.Forget(old)
	return next
}

// Translation returns the translation of the current generation, loading it
// on first use. A failed load stays failed until Invalidate.
func (s *Service) Translation(ctx context.Context) (*Translation, error) {
	gen := s.Generation()
	return s.store.Get(ctx, gen, func(ctx context.Context) (*Translation, error) {
		return s.loader.Load(ctx, gen)
	})
}

// Resolve returns canonical (chapter, verse). The error is only set when the
// translation itself is unavailable; a missing verse is a not-available result.
func (s *Service) Resolve(ctx context.Context, chapter, verse int) (model.ResolvedVerse, error) {
	t, err := s.Translation(ctx)
	if err != nil {
		return model.ResolvedVerse{Chapter: chapter, Verse: verse}, err
	}
	return t.Table.Resolve(chapter, verse), nil
}

// ResolveChapter resolves every verse of the chapter's canonical verse list
func (s *Service) ResolveChapter(ctx context.Context, chapter int) ([]model.ResolvedVerse, error) {
	canonical, err := s.verses.Verses(ctx, chapter)
	if err != nil {
		return nil, fmt.Errorf("canonical verses: %w", err)
	}
	t, err := s.Translation(ctx)
	if err != nil {
		return nil, err
	}
	return t.Table.ResolveChapter(chapter, canonical), nil
}

// ResolveRange resolves a chapter, verse or verse range reference. A range is
// cut at the chapter's last canonical verse.
func (s *Service) ResolveRange(ctx context.Context, ref quran.Ref) ([]model.ResolvedVerse, error) {
	if ref.IsChapter() {
		return s.ResolveChapter(ctx, ref.Chapter)
	}
	last := ref.Last()
	if ref.VerseEnd > 0 {
		canonical, err := s.verses.Verses(ctx, ref.Chapter)
		if err != nil {
			return nil, fmt.Errorf("canonical verses: %w", err)
		}
		last = min(last, max(len(canonical), ref.Verse))
	}
	t, err := s.Translation(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ResolvedVerse, 0, last-ref.Verse+1)
	for v := ref.Verse; v <= last; v++ {
		out = append(out, t.Table.Resolve(ref.Chapter, v))
	}
	return out, nil
}

// VerseSource returns the canonical verse source
func (s *Service) VerseSource() quran.VerseSource {
	return s.verses
}
