package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshare/driveshare/pkg/storage/kv/memory"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := memory.NewKV(nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "a", []byte("one"), 0))

	got, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is not an error
	require.NoError(t, s.Delete(ctx, "a"))
}

func TestGetMissing(t *testing.T) {
	s, _ := memory.NewKV(nil)
	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := memory.NewKV(nil)

	require.NoError(t, s.Set(ctx, "ttl", []byte("x"), 5*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := s.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncrAndCounter(t *testing.T) {
	ctx := context.Background()
	s, _ := memory.NewKV(nil)

	n, err := s.Counter(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	for i := 1; i <= 3; i++ {
		n, err = s.Incr(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	n, err = s.Counter(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	s, _ := memory.NewKV(nil)

	require.NoError(t, s.Set(ctx, "shareLinks:a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "shareLinks:b", []byte("2"), 0))
	require.NoError(t, s.Set(ctx, "pdfCounter:a:f", []byte("3"), 0))

	keys, err := s.Keys(ctx, "shareLinks:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shareLinks:a", "shareLinks:b"}, keys)
}
