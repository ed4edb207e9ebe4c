package roomstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisRoomsKey = "chat:rooms"

// RedisStore keeps the room set in a Redis set, for deployments where the
// room list should survive the host as well as the process.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the Redis instance described by url
// (redis://host:port/db) and verifies it is reachable.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) LoadRoomNames(ctx context.Context) ([]string, error) {
	names, err := s.rdb.SMembers(ctx, redisRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	if len(names) == 0 {
		if err := s.rdb.SAdd(ctx, redisRoomsKey, DefaultRoom).Err(); err != nil {
			return nil, fmt.Errorf("bootstrap rooms: %w", err)
		}
		names = []string{DefaultRoom}
	}
	return names, nil
}

func (s *RedisStore) AddRoomName(ctx context.Context, name string) error {
	if err := s.rdb.SAdd(ctx, redisRoomsKey, name).Err(); err != nil {
		return fmt.Errorf("persist room %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
