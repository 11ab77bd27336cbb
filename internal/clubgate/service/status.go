package service

import (
	"strings"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

const (
	StatusActive  = "active"
	StatusUnknown = "unknown"
)

// EffectiveStatus returns the member's lifecycle status, preferring the
// aggregate member_status over the raw members.status column. Values are
// trimmed and lowercased; a member with neither reports "unknown".
func EffectiveStatus(m store.MemberRecord) string {
	for _, s := range []string{m.MemberStatus, m.Status} {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			return s
		}
	}
	return StatusUnknown
}

// IsActive reports whether either status source says active. The gate
// only rejects when neither does, so an aggregate lagging behind a
// reactivated member does not lock them out.
func IsActive(m store.MemberRecord) bool {
	return strings.EqualFold(strings.TrimSpace(m.MemberStatus), StatusActive) ||
		strings.EqualFold(strings.TrimSpace(m.Status), StatusActive)
}
