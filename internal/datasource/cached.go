package datasource

import (
	"context"
	"time"

	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/cache"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// CachedSource keeps fetched snapshots in memory for a limited time.
type CachedSource struct {
	cache *cache.Cache[Request, *slotgrid.Schedule]
}

func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		cache: cache.NewCache("schedules", ttl, cache.LoaderFunc[Request, *slotgrid.Schedule](next.Fetch)),
	}
}

func (s *CachedSource) Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
	return s.cache.Get(ctx, normalize(req))
}

// Start removes expired snapshots in the background until ctx is done.
func (s *CachedSource) Start(ctx context.Context) {
	s.cache.Start(ctx)
}

func (s *CachedSource) Wait() {
	s.cache.Wait()
}

// normalize makes sure equal requests are also equal map keys.
func normalize(req Request) Request {
	y, m, d := req.StartDate.Date()
	req.StartDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return req
}
