package dao

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tagarena/pkg/config"

	"github.com/redis/go-redis/v9"
)

const KeyUserPrefix = "user:"

// RedisStore keeps one hash per profile key: user:{key} -> {coins, inventory}.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStore(rdb), nil
}

func (s *RedisStore) GetUser(ctx context.Context, key string) (Progression, error) {
	data, err := s.rdb.HGetAll(ctx, KeyUserPrefix+key).Result()
	if err != nil {
		return DefaultProgression(), fmt.Errorf("load user %s: %w", key, err)
	}
	if len(data) == 0 {
		return DefaultProgression(), nil
	}

	coins, err := strconv.Atoi(data["coins"])
	if err != nil {
		return DefaultProgression(), fmt.Errorf("load user %s: bad coins %q", key, data["coins"])
	}
	inv, err := decodeInventory(data["inventory"])
	if err != nil {
		return DefaultProgression(), err
	}
	return Progression{Coins: coins, Inventory: inv}, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, key string, p Progression) error {
	inv, err := encodeInventory(p.Inventory)
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, KeyUserPrefix+key, "coins", p.Coins, "inventory", inv).Err(); err != nil {
		return fmt.Errorf("save user %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
