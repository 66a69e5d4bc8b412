// internal/domain/cart/repository.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds optimistic retries when concurrent writers touch the same cart
const maxUpdateAttempts = 10

// Repository persists session carts by owner key
type Repository interface {
	Get(ctx context.Context, key string) (*SessionCart, error)
	Update(ctx context.Context, key string, fn func(*SessionCart) error) (*SessionCart, error)
	Delete(ctx context.Context, key string) error
}

// RedisRepository stores carts as JSON documents with a sliding TTL
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisRepository creates a new Redis-backed cart repository
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRepository{
		client: client,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored cart, or a fresh empty one when none exists
func (r *RedisRepository) Get(ctx context.Context, key string) (*SessionCart, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	return r.decode(key, data, err)
}

// Update reads, mutates and writes a cart under WATCH so that concurrent
// updates to the same key never overwrite each other.
func (r *RedisRepository) Update(ctx context.Context, key string, fn func(*SessionCart) error) (*SessionCart, error) {
	var result *SessionCart

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		sessionCart, err := r.decode(key, data, err)
		if err != nil {
			return err
		}

		if err := fn(sessionCart); err != nil {
			return err
		}

		now := r.now()
		sessionCart.UpdatedAt = now
		sessionCart.ExpiresAt = now.Add(r.ttl)

		payload, err := json.Marshal(sessionCart)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		result = sessionCart
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("cart %s: too much contention, giving up after %d attempts", key, maxUpdateAttempts)
}

// Delete removes the cart
func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisRepository) decode(key string, data []byte, err error) (*SessionCart, error) {
	if errors.Is(err, redis.Nil) {
		now := r.now()
		return &SessionCart{
			Key:       key,
			Items:     []LineItem{},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(r.ttl),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal(data, &sessionCart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if sessionCart.Items == nil {
		sessionCart.Items = []LineItem{}
	}
	return &sessionCart, nil
}
