package store

import (
	"context"
	"time"
)

const (
	AuditActorSystem   = "system"
	AuditEntityCheckin = "checkin"
	AuditEntityPayment = "payment"

	AuditActionScanRejected     = "scan_rejected"
	AuditActionCheckin          = "checkin"
	AuditActionCheckinDuplicate = "checkin_duplicate"
	AuditActionInsurancePaid    = "insurance_paid"
)

// AuditEventRecord is one immutable entry of the audit log. EntityID is
// empty when the scanned identifier did not resolve to a member.
type AuditEventRecord struct {
	ID        string
	Actor     string
	Action    string
	Entity    string
	EntityID  string
	Meta      map[string]any
	CreatedAt time.Time
}

// AuditStore persists decisions and administrative actions as an
// append-only log.
type AuditStore interface {
	RecordEvent(ctx context.Context, rec AuditEventRecord) error
	ListRecent(ctx context.Context, limit int) ([]AuditEventRecord, error)
}
