package store

import (
	"context"
	"time"
)

const CheckinSourceRFID = "rfid"

type CheckinRecord struct {
	ID        string
	MemberID  string
	ScannedAt time.Time
	Source    string
	Location  string
}

// CheckinStore is append-only.
type CheckinStore interface {
	RecordCheckin(ctx context.Context, rec CheckinRecord) error
	LastCheckin(ctx context.Context, memberID string) (time.Time, bool, error)
	ListRecent(ctx context.Context, limit int) ([]CheckinRecord, error)
}
