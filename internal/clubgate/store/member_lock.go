package store

import (
	"context"
	"errors"
)

var ErrLockTimeout = errors.New("member lock not acquired")

// MemberLocker serialises the read-then-commit sequence of concurrent scans
// for the same member. The returned unlock func must be called exactly once.
type MemberLocker interface {
	Lock(ctx context.Context, memberID string) (unlock func(), err error)
}
