// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup;
// deployments without Redis leave it nil and round publishing is skipped.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for finalized round records.
var DefaultQueueName = "nyonnyola_rounds"

// RoundEntry holds the minimal info an out-of-process scoreboard consumer
// needs to render per-round feedback.
type RoundEntry struct {
	SessionID   uuid.UUID     `json:"session_id"`
	Round       int           `json:"round"`
	ExplainerID int64         `json:"explainer_id"`
	Deltas      map[int64]int `json:"deltas"`
	Timestamp   int64         `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishRound serializes the entry to JSON and pushes it onto the round
// queue. A nil client is a silent no-op so the game loop never depends on
// Redis being up.
func PublishRound(ctx context.Context, entry RoundEntry) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundEntry: %w", err)
	}

	queueName := getEnv("ROUND_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
