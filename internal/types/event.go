package types

import "time"

// Event type constants for known interaction events
const (
	EventQualification    = "qualification"
	EventReplyAnalyzed    = "reply_analyzed"
	EventMeetingScheduled = "meeting_scheduled"
	EventEmailSent        = "email_sent"
)

// InteractionEvent is one entry in a lead's append-only audit trail. Events
// are never mutated or deleted once written; per-lead ordering is
// (Timestamp, Sequence) with Sequence allocated by the store.
type InteractionEvent struct {
	LeadID    string         `json:"lead_id"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
	Sequence  int64          `json:"sequence"`
	Timestamp time.Time      `json:"timestamp"`
}
