package topics

import (
	"context"
	"log/slog"
	"time"

	"github.com/dailyink/dailyink/internal/metrics"
	"github.com/dailyink/dailyink/internal/writemode"
)

type Service struct {
	cache  Cache
	source Source
	loc    *time.Location
	now    func() time.Time
}

func NewService(cache Cache, source Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{cache: cache, source: source, loc: loc, now: time.Now}
}

// Today returns the topic for the current local day. Cache failures fall
// back to the source and are only logged.
func (s *Service) Today(ctx context.Context, mode writemode.Mode) (*Topic, error) {
	return s.For(ctx, s.now().In(s.loc), mode)
}

func (s *Service) For(ctx context.Context, day time.Time, mode writemode.Mode) (*Topic, error) {
	t, ok, err := s.cache.Get(ctx, day, mode)
	switch {
	case err != nil:
		metrics.TopicCacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("topics: cache lookup", "mode", mode, "error", err)
	case ok:
		metrics.TopicCacheLookupsTotal.WithLabelValues("hit").Inc()
		return t, nil
	default:
		metrics.TopicCacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	t, err = s.source.TopicFor(ctx, day, mode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, t); err != nil {
		slog.Warn("topics: cache populate", "mode", mode, "error", err)
	}
	return t, nil
}
