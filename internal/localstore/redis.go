package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyNamespace = "cartsync"

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis stores the guest cart record of one profile under a namespaced key.
// A zero ttl keeps the record until it is cleared.
type Redis struct {
	store cmdable
	key   string
	ttl   time.Duration
}

func NewRedis(client cmdable, profile string, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if profile == "" {
		return nil, fmt.Errorf("profile is empty")
	}
	return &Redis{
		store: client,
		key:   LocalCartKey(profile),
		ttl:   ttl,
	}, nil
}

// NewRedisFromURL parses a redis:// URL and verifies connectivity.
func NewRedisFromURL(ctx context.Context, url, profile string, ttl time.Duration) (*Redis, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	store, err := NewRedis(client, profile, ttl)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return store, client, nil
}

func LocalCartKey(profile string) string {
	return strings.Join([]string{redisKeyNamespace, "local_cart", strings.TrimSpace(profile)}, ":")
}

func (r *Redis) Get(ctx context.Context) (domain.Cart, error) {
	payload, err := r.store.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewLocalCart(), nil
	}
	if err != nil {
		return domain.NewLocalCart(), storageError("read local cart", fmt.Errorf("redis.Get: %w", err))
	}

	cart, err := decodeCart(payload)
	if err != nil {
		return domain.NewLocalCart(), storageError("decode local cart", err)
	}
	return cart, nil
}

func (r *Redis) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return storageError("encode local cart", err)
	}

	if err := r.store.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return storageError("write local cart", fmt.Errorf("redis.Set: %w", err))
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key).Err(); err != nil {
		return storageError("clear local cart", fmt.Errorf("redis.Del: %w", err))
	}
	return nil
}
