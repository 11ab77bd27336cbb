package service

import (
	"context"
	"strings"
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

// NormalizeIdentifier trims and uppercases a scanned card UID or typed
// member code. Both are stored uppercase.
func NormalizeIdentifier(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

type MemberDirectory struct {
	store store.MemberStore
}

func NewMemberDirectory(st store.MemberStore) *MemberDirectory {
	return &MemberDirectory{store: st}
}

// Resolve looks a member up by card UID or member code.
func (d *MemberDirectory) Resolve(ctx context.Context, identifier string) (store.MemberRecord, bool, error) {
	identifier = NormalizeIdentifier(identifier)
	if identifier == "" {
		return store.MemberRecord{}, false, nil
	}
	return d.store.FindByIdentifier(ctx, identifier)
}

func (d *MemberDirectory) Get(ctx context.Context, memberID string) (store.MemberRecord, bool, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return store.MemberRecord{}, false, nil
	}
	return d.store.FindByID(ctx, memberID)
}

func (d *MemberDirectory) NoteSeen(ctx context.Context, memberID string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return d.store.MarkSeen(ctx, memberID, t)
}
