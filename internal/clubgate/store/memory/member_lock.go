package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

// MemberLocker is an in-process keyed mutex. Entries are reference counted
// and removed once the last holder or waiter leaves.
type MemberLocker struct {
	mu    sync.Mutex
	locks map[string]*memberLock
}

type memberLock struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

var _ store.MemberLocker = (*MemberLocker)(nil)

func NewMemberLocker() *MemberLocker {
	return &MemberLocker{locks: make(map[string]*memberLock)}
}

func (l *MemberLocker) Lock(ctx context.Context, memberID string) (func(), error) {
	l.mu.Lock()
	ml, ok := l.locks[memberID]
	if !ok {
		ml = &memberLock{ch: make(chan struct{}, 1)}
		l.locks[memberID] = ml
	}
	ml.refs++
	l.mu.Unlock()

	select {
	case ml.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(memberID, ml)
		return nil, fmt.Errorf("%w: %w", store.ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ml.ch
			l.release(memberID, ml)
		})
	}, nil
}

func (l *MemberLocker) release(memberID string, ml *memberLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ml.refs--
	if ml.refs == 0 {
		delete(l.locks, memberID)
	}
}

// Len reports how many members currently have a holder or waiter. Test-only helper.
func (l *MemberLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
