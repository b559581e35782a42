package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/satorioh/dashop/internal/entity"
	"github.com/satorioh/dashop/internal/sharding"
)

// RedisStore keeps each cart as a JSON document under carts_<uid>, spread
// over a set of Redis shards picked by user id.
type RedisStore struct {
	shards []*redis.Client
	router *sharding.ShardRouter
}

func NewRedisStore(shards []*redis.Client) *RedisStore {
	return &RedisStore{
		shards: shards,
		router: sharding.NewShardRouter(len(shards)),
	}
}

func (s *RedisStore) Get(ctx context.Context, userID int) (entity.Cart, error) {
	data, err := s.client(userID).Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart == nil {
		cart = entity.Cart{}
	}
	return cart, nil
}

func (s *RedisStore) Put(ctx context.Context, userID int, cart entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	// Carts never expire on their own; removal is explicit.
	if err := s.client(userID).Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) client(userID int) *redis.Client {
	return s.shards[s.router.GetShard(userID)]
}

func cartKey(userID int) string {
	return fmt.Sprintf("carts_%d", userID)
}
