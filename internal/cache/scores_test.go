package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedScore struct {
	User1ID    uint `json:"user1_id"`
	User2ID    uint `json:"user2_id"`
	FinalScore int  `json:"final_score"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestScoreKey_NormalizesPairOrder(t *testing.T) {
	assert.Equal(t, "score:3:7", ScoreKey(3, 7))
	assert.Equal(t, "score:3:7", ScoreKey(7, 3))
}

func TestSetAndGetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	in := cachedScore{User1ID: 1, User2ID: 2, FinalScore: 85}
	require.NoError(t, SetJSON(ctx, "score:1:2", in, time.Minute))

	var out cachedScore
	found, err := GetJSON(ctx, "score:1:2", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	found, err = GetJSON(ctx, "score:1:99", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_NoClientIsAMiss(t *testing.T) {
	SetClient(nil)

	var out cachedScore
	found, err := GetJSON(context.Background(), "score:1:2", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(context.Background(), "score:1:2", out, time.Minute))
}

func TestCacheAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedScore) func() error {
		return func() error {
			calls++
			*dest = cachedScore{User1ID: 4, User2ID: 9, FinalScore: 72}
			return nil
		}
	}

	var first cachedScore
	require.NoError(t, CacheAside(ctx, "score:4:9", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 72, first.FinalScore)

	// The second read is served from the cache.
	var second cachedScore
	require.NoError(t, CacheAside(ctx, "score:4:9", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 72, second.FinalScore)
}

func TestCacheScore_UsesNormalizedKey(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, CacheScore(ctx, 9, 2, cachedScore{User1ID: 2, User2ID: 9, FinalScore: 61}))
	assert.True(t, mr.Exists("score:2:9"))
}

func TestInvalidateUserScores(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, CacheScore(ctx, 1, 2, cachedScore{FinalScore: 50}))
	require.NoError(t, CacheScore(ctx, 1, 3, cachedScore{FinalScore: 60}))
	require.NoError(t, CacheScore(ctx, 2, 3, cachedScore{FinalScore: 70}))

	require.NoError(t, InvalidateUserScores(ctx, 1))

	assert.False(t, mr.Exists("score:1:2"))
	assert.False(t, mr.Exists("score:1:3"))
	assert.True(t, mr.Exists("score:2:3"))
}
