package types

type CheckinEntry struct {
	ID        string `json:"id"`
	MemberID  string `json:"member_id"`
	ScannedAt string `json:"scanned_at"`
	Source    string `json:"source"`
	Location  string `json:"location"`
}

type AuditEntry struct {
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt string         `json:"created_at"`
}

type InsuranceRequest struct {
	Method string `json:"method,omitempty" validate:"omitempty,oneof=cash carte virement card transfer"`
}
