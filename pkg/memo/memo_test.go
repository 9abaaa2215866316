package memo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleous/orgseer/pkg/memo"
)

type answerer struct {
	cache memo.Cache
	calls int32
}

func (a *answerer) compute() int {
	atomic.AddInt32(&a.calls, 1)
	return 42
}

func (a *answerer) Answer() int {
	v, _ := memo.Get(ctx, &a.cache, "answer", func(context.Context) (int, error) {
		return a.compute(), nil
	})
	return v
}

var ctx = context.Background()

func TestGetComputesOnce(t *testing.T) {
	a := &answerer{}

	assert.False(t, a.cache.Computed("answer"))
	assert.Equal(t, 42, a.Answer())
	assert.Equal(t, 42, a.Answer())
	assert.True(t, a.cache.Computed("answer"))
	assert.EqualValues(t, 1, a.calls)
}

func TestGetPerInstance(t *testing.T) {
	a, b := &answerer{}, &answerer{}

	a.Answer()
	a.Answer()
	b.Answer()

	assert.EqualValues(t, 1, a.calls)
	assert.EqualValues(t, 1, b.calls)
}

func TestGetDistinctKeys(t *testing.T) {
	var c memo.Cache

	x, err := memo.Get(ctx, &c, "x", func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)
	y, err := memo.Get(ctx, &c, "y", func(context.Context) (string, error) { return "y", nil })
	require.NoError(t, err)

	assert.Equal(t, "x", x)
	assert.Equal(t, "y", y)
}

func TestGetErrorNotCached(t *testing.T) {
	var c memo.Cache
	calls := 0
	boom := errors.New("boom")

	fn := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	_, err := memo.Get(ctx, &c, "k", fn)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Computed("k"))

	v, err := memo.Get(ctx, &c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = memo.Get(ctx, &c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestGetNilInterfaceValue(t *testing.T) {
	var c memo.Cache

	v, err := memo.Get(ctx, &c, "nil", func(context.Context) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.True(t, c.Computed("nil"))
}

func TestGetSingleFlight(t *testing.T) {
	var c memo.Cache
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = memo.Get(ctx, &c, "slow", func(context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 99, nil
			})
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, 99, r)
	}
}

func TestGetRetriesAfterLeaderCancelled(t *testing.T) {
	var c memo.Cache
	var calls int32
	started := make(chan struct{}, 2)

	fn := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			started <- struct{}{}
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 5, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := memo.Get(leaderCtx, &c, "k", fn)
		leaderErr <- err
	}()
	<-started

	waiter := make(chan int, 1)
	go func() {
		v, err := memo.Get(context.Background(), &c, "k", fn)
		assert.NoError(t, err)
		waiter <- v
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)
	assert.Equal(t, 5, <-waiter)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.True(t, c.Computed("k"))
}

func TestGetCancelledCallerGivesUp(t *testing.T) {
	var c memo.Cache
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := memo.Get(ctx, &c, "k", func(ctx context.Context) (int, error) {
		calls++
		return 0, ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.False(t, c.Computed("k"))
}
