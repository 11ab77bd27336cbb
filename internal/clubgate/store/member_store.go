package store

import (
	"context"
	"strings"
	"time"
)

// MemberRecord is one row of the member directory: the member itself plus
// the optional aggregate fields joined in from the subscription summary.
// Aggregate fields are zero when the member has no summary row.
type MemberRecord struct {
	ID         string
	MemberCode string
	CardUID    string
	FirstName  string
	LastName   string
	Status     string
	LastScanAt *time.Time

	MemberStatus   string
	IsActive       bool
	AboType        string
	ValidFrom      *time.Time
	ValidTo        *time.Time
	AmountDueCents int64
}

func (m MemberRecord) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

type MemberStore interface {
	// FindByIdentifier matches identifier against card UID or member code.
	// The identifier is already normalised by the caller.
	FindByIdentifier(ctx context.Context, identifier string) (MemberRecord, bool, error)
	FindByID(ctx context.Context, memberID string) (MemberRecord, bool, error)
	MarkSeen(ctx context.Context, memberID string, t time.Time) error
}
