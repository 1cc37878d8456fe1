package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	require.NoError(t, err)
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	p.Wait()

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
	require.NotNil(t, p.Metrics())

	require.NoError(t, p.Del(ctx, "k"))
	_, ok, _ = p.Get(ctx, "k")
	require.False(t, ok)
}

func TestSyncWritesAndGetMany(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, SyncWrites: true})
	require.NoError(t, err)
	defer p.Close(ctx)

	for _, k := range []string{"a", "b"} {
		ok, err := p.Set(ctx, k, []byte(k+"!"), 1, 0)
		require.NoError(t, err)
		require.True(t, ok)
	}
	got, err := p.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"a": []byte("a!"), "b": []byte("b!")}, got)

	require.NoError(t, p.Del(ctx, "a"))
	_, ok, _ := p.Get(ctx, "a")
	require.False(t, ok)
}
