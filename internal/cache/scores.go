package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scoreTTL bounds how long a cached compatibility score may be served
// before the matching endpoints fall back to the database.
const scoreTTL = 15 * time.Minute

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// CacheAside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
func CacheAside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Fetch from source (DB)
	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// ScoreKey derives the cache key for a user pair, normalizing order.
func ScoreKey(user1ID, user2ID uint) string {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	return fmt.Sprintf("score:%d:%d", user1ID, user2ID)
}

// CacheScore stores a scored pair payload under the normalized pair key.
func CacheScore(ctx context.Context, user1ID, user2ID uint, v any) error {
	return SetJSON(ctx, ScoreKey(user1ID, user2ID), v, scoreTTL)
}

// InvalidateUserScores drops every cached score involving the given user.
// Called when a profile changes, since stale sub-scores would be misleading.
func InvalidateUserScores(ctx context.Context, userID uint) error {
	if client == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, "score:*", 100).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			var a, b uint
			if _, err := fmt.Sscanf(key, "score:%d:%d", &a, &b); err != nil {
				continue
			}
			if a == userID || b == userID {
				_ = client.Del(ctx, key).Err()
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
