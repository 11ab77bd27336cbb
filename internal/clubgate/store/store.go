package store

import "time"

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ClampLimit normalises a caller-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ToMillis and FromMillis convert between time.Time and the UTC unix
// millisecond columns used by every table.
func ToMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func FromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
