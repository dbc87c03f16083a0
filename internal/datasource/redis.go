package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// RedisClient is the subset of *redis.Client used by RedisSource.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSource shares fetched snapshots between service replicas. Redis
// failures are logged and never fail a request.
type RedisSource struct {
	rdb    RedisClient
	ttl    time.Duration
	prefix string
	next   Source
}

func NewRedisSource(rdb RedisClient, ttl time.Duration, next Source) *RedisSource {
	return &RedisSource{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "slotgrid:schedule:",
		next:   next,
	}
}

func (s *RedisSource) Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
	key := s.prefix + req.Key()
	log := logrus.WithField("key", key)

	blob, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var schedule slotgrid.Schedule

		decodeErr := json.Unmarshal(blob, &schedule)
		if decodeErr == nil {
			return &schedule, nil
		}

		log.WithError(decodeErr).Warn("ignoring malformed cached schedule")

	case !errors.Is(err, redis.Nil):
		log.WithError(err).Warn("failed to read cached schedule")
	}

	schedule, err := s.next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	blob, err = json.Marshal(schedule)
	if err != nil {
		log.WithError(err).Warn("failed to encode schedule for caching")
		return schedule, nil
	}

	if err := s.rdb.Set(ctx, key, blob, s.ttl).Err(); err != nil {
		log.WithError(err).Warn("failed to cache schedule")
	}

	return schedule, nil
}
