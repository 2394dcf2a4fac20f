package ttlcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCache_ExpiryAndSweep(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, int]()
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 2*time.Minute)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired entry must be invisible before sweep")
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, c.Sweep(now))
	assert.Equal(t, 1, c.Len())

	v, ok = c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestPendingStore_PutGetCopies(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()
	raw := []byte("hello")
	require.NoError(t, s.Put(ctx, "k", raw, time.Minute))
	raw[0] = 'j'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(got))

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Sweep(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPendingStore_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewPendingStore()
	require.NoError(t, s.Put(context.Background(), "k", []byte("v"), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.cache.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
