package executor

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectRunsInline(t *testing.T) {
	ran := false
	require.NoError(t, Direct{}.Execute(func() { ran = true }))
	require.True(t, ran)
}

func TestPoolRunsAllTasks(t *testing.T) {
	p := NewPool(4, 128)
	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Execute(func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()
	p.Close()
	require.EqualValues(t, 100, n.Load())
}

func TestPoolSaturated(t *testing.T) {
	p := NewSingleThread(1)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Execute(func() {
		close(started)
		<-block
	}))
	<-started

	require.NoError(t, p.Execute(func() {}))
	require.ErrorIs(t, p.Execute(func() {}), ErrSaturated)
	close(block)
}

func TestPoolClosed(t *testing.T) {
	p := NewSingleThread(4)
	p.Close()
	p.Close()
	require.ErrorIs(t, p.Execute(func() {}), ErrClosed)
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"":              SingleThread,
		"single_thread": SingleThread,
		"SHARED":        SharedPool,
		"common_fjp":    SharedPool,
		"direct":        Inline,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseKind("fork_join")
	require.Error(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("shared")))
	require.Equal(t, SharedPool, k)
}

func TestSharedIsSingleton(t *testing.T) {
	require.Same(t, Shared(), Shared())
}
