package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, n.PublishBandMessage(ctx, 1, "payload"))
	assert.NoError(t, n.PublishTyping(ctx, 1, 2, "ana", true))
	assert.NoError(t, n.PublishBandFormed(ctx, 1, "payload"))
	assert.NoError(t, n.StartChatSubscriber(ctx, func(string, string) {}))
}

func TestBandChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "chat:band:7", BandChannel(7))
	assert.Equal(t, "chat:band:120", BandChannel(120))
}

func TestNotifier_ChatSubscriberReceivesAllBandChannels(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	got := map[string]string{}
	require.NoError(t, n.StartChatSubscriber(ctx, func(channel, payload string) {
		mu.Lock()
		got[channel] = payload
		mu.Unlock()
	}))

	require.NoError(t, n.PublishBandMessage(ctx, 9, `{"type":"message"}`))
	require.NoError(t, n.PublishTyping(ctx, 9, 3, "ana", true))
	require.NoError(t, n.PublishBandFormed(ctx, 9, `{"type":"band_formed"}`))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, `{"type":"message"}`, got["chat:band:9"])
	assert.Equal(t, `{"type":"band_formed"}`, got["bands:formed:9"])

	var typing map[string]any
	require.NoError(t, json.Unmarshal([]byte(got["typing:band:9"]), &typing))
	assert.Equal(t, float64(3), typing["user_id"])
	assert.Equal(t, "ana", typing["username"])
	assert.Equal(t, true, typing["is_typing"])
	assert.Equal(t, float64(5000), typing["expires_in_ms"])
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartChatSubscriber(ctx, func(_, payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishBandMessage(context.Background(), 1, "before-cancel"))
	select {
	case payload := <-payloads:
		assert.Equal(t, "before-cancel", payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the message")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishBandMessage(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestNotifier_SubscriberSurvivesHandlerPanic(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 2)
	require.NoError(t, n.StartChatSubscriber(ctx, func(_, payload string) {
		if payload == "boom" {
			panic("handler failure")
		}
		payloads <- payload
	}))

	require.NoError(t, n.PublishBandMessage(ctx, 2, "boom"))
	require.NoError(t, n.PublishBandMessage(ctx, 2, "still alive"))

	select {
	case payload := <-payloads:
		assert.Equal(t, "still alive", payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not recover from the handler panic")
	}
}
