package prereq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix = "prereq:"
	cacheAllKey = cachePrefix + "all"
)

func courseKey(code string) string { return cachePrefix + "course:" + code }

// CachedStore is a read-through Redis cache in front of another Store.
// Writes go to the inner store first and then drop the affected keys, so a
// Redis outage only costs latency.
type CachedStore struct {
	inner Store
	rdb   redis.Cmdable
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedStore(inner Store, rdb redis.Cmdable, ttl time.Duration, log *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (s *CachedStore) EdgesFor(ctx context.Context, courseCode string) ([]Edge, error) {
	return s.readThrough(ctx, courseKey(courseCode), func() ([]Edge, error) {
		return s.inner.EdgesFor(ctx, courseCode)
	})
}

func (s *CachedStore) ListEdges(ctx context.Context) ([]Edge, error) {
	return s.readThrough(ctx, cacheAllKey, func() ([]Edge, error) {
		return s.inner.ListEdges(ctx)
	})
}

func (s *CachedStore) InsertEdge(ctx context.Context, e Edge) (Edge, error) {
	out, err := s.inner.InsertEdge(ctx, e)
	if err != nil {
		return Edge{}, err
	}
	s.invalidate(ctx, out.CourseCode)
	return out, nil
}

func (s *CachedStore) DeleteEdge(ctx context.Context, id string) (Edge, error) {
	out, err := s.inner.DeleteEdge(ctx, id)
	if err != nil {
		return Edge{}, err
	}
	s.invalidate(ctx, out.CourseCode)
	return out, nil
}

func (s *CachedStore) readThrough(ctx context.Context, key string, load func() ([]Edge, error)) ([]Edge, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var edges []Edge
		if jerr := json.Unmarshal(raw, &edges); jerr == nil {
			return edges, nil
		}
		s.log.WarnContext(ctx, "prereq cache: corrupt entry", "key", key)
	case !errors.Is(err, redis.Nil):
		s.log.WarnContext(ctx, "prereq cache: get failed", "key", key, "error", err)
	}

	edges, err := load()
	if err != nil {
		return nil, err
	}
	if buf, jerr := json.Marshal(edges); jerr == nil {
		if serr := s.rdb.Set(ctx, key, buf, s.ttl).Err(); serr != nil {
			s.log.WarnContext(ctx, "prereq cache: set failed", "key", key, "error", serr)
		}
	}
	return edges, nil
}

func (s *CachedStore) invalidate(ctx context.Context, courseCode string) {
	if err := s.rdb.Del(ctx, courseKey(courseCode), cacheAllKey).Err(); err != nil {
		s.log.WarnContext(ctx, "prereq cache: invalidate failed", "course", courseCode, "error", err)
	}
}
