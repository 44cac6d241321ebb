package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a client with the key conventions used across the store.
// A nil *Redis is valid: reads miss, writes are dropped, limits always pass.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		return nil
	}
	return &Redis{client: client}
}

func (r *Redis) Client() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

// Get returns "", nil on a miss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r == nil {
		return "", nil
	}
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r == nil {
		return nil
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r == nil || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// --- Rate limiting ---

// Hit increments the counter for key inside window and returns the new count.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r == nil {
		return 0, nil
	}
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Count returns the current value of a counter.
func (r *Redis) Count(ctx context.Context, key string) (int64, error) {
	val, err := r.Get(ctx, key)
	if err != nil || val == "" {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// TTL returns the remaining lifetime of key, 0 when absent.
func (r *Redis) TTL(ctx context.Context, key string) time.Duration {
	if r == nil {
		return 0
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

// --- Cart events ---

const (
	CartEventUpdated = "updated"
	CartEventCleared = "cleared"
)

func cartChannel(userID uint) string { return fmt.Sprintf("cart:%d", userID) }

// PublishCartEvent notifies listeners of userID's cart.
func (r *Redis) PublishCartEvent(ctx context.Context, userID uint, event string) error {
	if r == nil {
		return nil
	}
	return r.client.Publish(ctx, cartChannel(userID), event).Err()
}

// SubscribeCart streams the cart events of userID until the returned close
// func is called or ctx ends.
func (r *Redis) SubscribeCart(ctx context.Context, userID uint) (<-chan string, func() error, error) {
	if r == nil {
		return nil, nil, errors.New("redis not configured")
	}
	sub := r.client.Subscribe(ctx, cartChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}
