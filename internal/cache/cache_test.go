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

func TestLocal_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(4, 0, time.Minute)

	_, ok, err := s.Get(ctx, "report:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "report:1", []byte(`{"a":1}`)))
	data, ok, err := s.Get(ctx, "report:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(data))

	require.NoError(t, s.Delete(ctx, "report:1"))
	_, ok, _ = s.Get(ctx, "report:1")
	assert.False(t, ok)
	assert.Zero(t, s.Bytes())
}

func TestLocal_CopiesPayloads(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(4, 0, time.Minute)

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	data, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
	data[1] = 'y'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestLocal_EntryLimit(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(2, 0, time.Minute)
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	_, _, _ = s.Get(ctx, "a")
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "least recently used key should have been evicted")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestLocal_ByteBudget(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 10, time.Minute)

	require.NoError(t, s.Set(ctx, "a", make([]byte, 4)))
	require.NoError(t, s.Set(ctx, "b", make([]byte, 4)))
	assert.Equal(t, int64(8), s.Bytes())

	require.NoError(t, s.Set(ctx, "c", make([]byte, 4)))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, int64(8), s.Bytes())
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)

	// Overwrites are accounted once.
	require.NoError(t, s.Set(ctx, "c", make([]byte, 6)))
	assert.Equal(t, int64(10), s.Bytes())

	// Oversized payloads are skipped.
	require.NoError(t, s.Set(ctx, "huge", make([]byte, 11)))
	_, ok, _ = s.Get(ctx, "huge")
	assert.False(t, ok)
	assert.Equal(t, int64(10), s.Bytes())
}

func TestLocal_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	s := NewLocal(10, 0, time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "old", []byte("v")))
	now = now.Add(30 * time.Second)
	require.NoError(t, s.Set(ctx, "new", []byte("v")))
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, s.CleanExpired())
	_, ok, _ := s.Get(ctx, "old")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "new")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = s.Get(ctx, "new")
	assert.False(t, ok, "expired entries miss before any cleanup runs")
	assert.Zero(t, s.Bytes())
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(NewLocal(1, 0, time.Minute))
	m.Stop()
	m.Stop()
}

func TestManager_Cleanup(t *testing.T) {
	s := NewLocal(10, 0, time.Millisecond)
	require.NoError(t, s.Set(context.Background(), "x", []byte("1")))

	m := NewManager()
	m.Register(s)
	m.StartCleanup(2 * time.Millisecond)
	defer m.Stop()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	s := NewRedis(client, "pfm:", time.Minute)

	_, ok, err := s.Get(ctx, "report:7")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a miss, not an error")

	require.NoError(t, s.Set(ctx, "report:7", []byte("payload")))
	assert.True(t, mr.Exists("pfm:report:7"))
	assert.Equal(t, time.Minute, mr.TTL("pfm:report:7"))

	data, ok, err := s.Get(ctx, "report:7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(data))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "report:7")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "report:7", []byte("again")))
	require.NoError(t, s.Delete(ctx, "report:7"))
	assert.False(t, mr.Exists("pfm:report:7"))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Dial(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Dial(context.Background(), mr.Addr())
	assert.Error(t, err)
}
