package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SeatCache holds the booked-seat set per showtime for the public seat-map
// endpoint. A nil Redis client disables the cache entirely and every read
// falls through to the database. The booking ledger never reads from here;
// seat conflict checks always run inside the database transaction.
type SeatCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewSeatCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *SeatCache {
	return &SeatCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "seats")),
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// Returns nil on failure so callers degrade gracefully to uncached reads.
func NewRedisClient(config utils.RedisConfig, log *zap.Logger) *redis.Client {
	if config.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, seat cache disabled", zap.Error(err))
		return nil
	}

	return client
}

func seatKey(showtimeID uuid.UUID) string {
	return fmt.Sprintf("seats:showtime:%s", showtimeID.String())
}

// Get returns the cached booked-seat set and whether it was present.
func (c *SeatCache) Get(ctx context.Context, showtimeID uuid.UUID) ([]entity.SeatRef, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, seatKey(showtimeID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Seat cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var seats []entity.SeatRef
	if err := json.Unmarshal([]byte(raw), &seats); err != nil {
		c.log.Warn("Seat cache entry corrupt", zap.Error(err),
			zap.String("showtime_id", showtimeID.String()))
		return nil, false
	}

	return seats, true
}

// Set stores the booked-seat set with the configured TTL. Best-effort.
func (c *SeatCache) Set(ctx context.Context, showtimeID uuid.UUID, seats []entity.SeatRef) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(seats)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, seatKey(showtimeID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Seat cache write failed", zap.Error(err),
			zap.String("showtime_id", showtimeID.String()))
	}
}

// Invalidate drops the cached seat set after a booking mutation so the next
// public read sees the new availability.
func (c *SeatCache) Invalidate(ctx context.Context, showtimeID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, seatKey(showtimeID)).Err(); err != nil {
		c.log.Warn("Seat cache invalidation failed", zap.Error(err),
			zap.String("showtime_id", showtimeID.String()))
	}
}
