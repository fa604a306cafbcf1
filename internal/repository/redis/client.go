package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "game:"

// Connect opens a Redis client. A nil client and nil error mean Redis is
// unreachable and the caller should run without the snapshot cache.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Running without snapshot cache.", err)
		client.Close()
		return nil, nil
	}

	log.Println("[REDIS] Connected successfully")
	return client, nil
}

// SnapshotCache stores serialized live games so that any instance can serve
// a game view after the owning process restarted or evicted the session.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func (c *SnapshotCache) SaveSnapshot(ctx context.Context, gameID string, data []byte) error {
	return c.client.Set(ctx, snapshotKeyPrefix+gameID, data, c.ttl).Err()
}

// LoadSnapshot returns nil data and nil error when the game is not cached.
func (c *SnapshotCache) LoadSnapshot(ctx context.Context, gameID string) ([]byte, error) {
	data, err := c.client.Get(ctx, snapshotKeyPrefix+gameID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (c *SnapshotCache) DeleteSnapshot(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, snapshotKeyPrefix+gameID).Err()
}
