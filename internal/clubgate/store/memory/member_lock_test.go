package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
	"github.com/champions-academy/clubgate/internal/clubgate/store/memory"
)

func TestMemberLocker_ExcludesSameMember(t *testing.T) {
	l := memory.NewMemberLocker()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "m1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, l.Len())
}

func TestMemberLocker_DifferentMembersIndependent(t *testing.T) {
	l := memory.NewMemberLocker()

	u1, err := l.Lock(context.Background(), "m1")
	require.NoError(t, err)
	defer u1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	u2, err := l.Lock(ctx, "m2")
	require.NoError(t, err)
	u2()
}

func TestMemberLocker_ContextTimeout(t *testing.T) {
	l := memory.NewMemberLocker()

	unlock, err := l.Lock(context.Background(), "m1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "m1")
	require.ErrorIs(t, err, store.ErrLockTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Zero(t, l.Len())
}
