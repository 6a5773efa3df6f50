package support

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSessions(t *testing.T, ttl time.Duration) (SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisSessions(rdb, ttl), mr
}

func sampleSession() *Session {
	return &Session{
		UserID:         "u-1",
		ConversationID: "c-1",
		UserType:       UserTenant,
		State:          StateWaitingForHuman,
		NotificationID: "c-1",
		Messages: []Message{
			{ID: "m-1", Type: MessageBot, Content: GreetingText, Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
			{ID: "m-2", Type: MessageUser, Content: "my tap is broken", Timestamp: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)},
		},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
}

func TestSessionStores(t *testing.T) {
	stores := map[string]func(t *testing.T) SessionStore{
		"memory": func(t *testing.T) SessionStore { return NewMemorySessions() },
		"redis": func(t *testing.T) SessionStore {
			s, _ := newRedisSessions(t, time.Hour)
			return s
		},
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := mk(t)

			_, ok, err := store.Get(ctx, "u-1")
			require.NoError(t, err)
			assert.False(t, ok)

			in := sampleSession()
			require.NoError(t, store.Save(ctx, in))

			// Later mutation of the saved value must not leak into the store.
			in.Messages = append(in.Messages, Message{ID: "m-3"})

			got, ok, err := store.Get(ctx, "u-1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sampleSession(), got)
		})
	}
}

func TestRedisSessions_TTL(t *testing.T) {
	store, mr := newRedisSessions(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.Equal(t, time.Minute, mr.TTL(sessionKeyPrefix+"u-1"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessions_CorruptValue(t *testing.T) {
	store, mr := newRedisSessions(t, 0)
	require.NoError(t, mr.Set(sessionKeyPrefix+"u-1", "{not json"))

	_, _, err := store.Get(context.Background(), "u-1")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
