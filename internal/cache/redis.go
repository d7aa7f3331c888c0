package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mdiagne/terangabus/config"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	tripsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tripsTTL: tripsTTL,
	}
}

// GetTrips returns the cached result for one search key, or nil on a
// miss.
func (c *RedisCache) GetTrips(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error) {
	data, err := c.client.Get(ctx, tripsKey(from, to, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trips []domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, from, to string, date time.Time, trips []domain.Trip) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey(from, to, date), payload, c.tripsTTL).Err()
}

// AcquireSeatLock is the fast-path guard in front of the conditional
// insert: SetNX keeps two concurrent requests for the same seat from
// both reaching the database.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, tripID int64, seat int, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(tripID, seat), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, tripID int64, seat int) error {
	return c.client.Del(ctx, seatLockKey(tripID, seat)).Err()
}

// CountResendAttempt bumps the per-user verification-resend counter
// and returns the new value. The key expires after the window so the
// limit is per rolling hour.
func (c *RedisCache) CountResendAttempt(ctx context.Context, userID int64, window time.Duration) (int64, error) {
	key := resendKey(userID)
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func tripsKey(from, to string, date time.Time) string {
	return fmt.Sprintf("cache:trajets:%s:%s:%s", from, to, date.Format("2006-01-02"))
}

func seatLockKey(tripID int64, seat int) string {
	return fmt.Sprintf("lock:trajet:%d:siege:%d", tripID, seat)
}

func resendKey(userID int64) string {
	return fmt.Sprintf("resend:verification:%d", userID)
}
