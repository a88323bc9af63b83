// Package types provides type definitions for structured lead data used throughout the lead-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Priority is the sales action priority of a lead
type Priority string

// Priority levels, ordered high to low
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Disposition classifies a lead's engagement level
type Disposition string

// Disposition values
const (
	DispositionEngaged       Disposition = "engaged"
	DispositionMaybe         Disposition = "maybe"
	DispositionDisinterested Disposition = "disinterested"
	DispositionUnset         Disposition = "unset"
)

// Sentiment is the overall tone of a lead's message
type Sentiment string

// Sentiment values
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Urgency is how quickly a lead expects a response
type Urgency string

// Urgency values
const (
	UrgencyHigh         Urgency = "high"
	UrgencyMedium       Urgency = "medium"
	UrgencyLow          Urgency = "low"
	UrgencyNotSpecified Urgency = "not_specified"
)

// FollowUpTiming is the recommended window for the next outreach
type FollowUpTiming string

// FollowUpTiming values
const (
	FollowUpImmediate   FollowUpTiming = "immediate"
	FollowUpOneWeek     FollowUpTiming = "1-week"
	FollowUpOneMonth    FollowUpTiming = "1-month"
	FollowUpThreeMonths FollowUpTiming = "3-months"
	FollowUpNone        FollowUpTiming = "none"
)

// QualificationRecord is the evolving qualification state of a single lead.
// Priority, LeadScore, Reasoning and NextAction are required on every write
// path; the remaining fields are optional and may be introduced over the
// record's lifetime, so readers must tolerate their zero values.
type QualificationRecord struct {
	LeadID                string         `json:"lead_id" validate:"required"`
	Priority              Priority       `json:"priority" validate:"required,oneof=high medium low"`
	LeadScore             int            `json:"lead_score" validate:"min=0,max=100"`
	Reasoning             string         `json:"reasoning"`
	NextAction            string         `json:"next_action" validate:"required"`
	Disposition           Disposition    `json:"disposition,omitempty"`
	DispositionConfidence int            `json:"disposition_confidence,omitempty" validate:"min=0,max=100"`
	Sentiment             Sentiment      `json:"sentiment,omitempty"`
	Urgency               Urgency        `json:"urgency,omitempty"`
	FollowUpTiming        FollowUpTiming `json:"follow_up_timing,omitempty"`
	Intent                string         `json:"intent,omitempty"`
	LastReplyAnalysis     string         `json:"last_reply_analysis,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Validate checks that the record satisfies the required-field invariant.
// A record failing this must never reach the store.
func (r *QualificationRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return nil
}

// QualificationUpdate is a partial update merged into an existing record by
// the store. Nil pointers mean "leave the stored value unchanged".
type QualificationUpdate struct {
	Priority              *Priority       `json:"priority,omitempty"`
	LeadScore             *int            `json:"lead_score,omitempty"`
	Reasoning             *string         `json:"reasoning,omitempty"`
	NextAction            *string         `json:"next_action,omitempty"`
	Disposition           *Disposition    `json:"disposition,omitempty"`
	DispositionConfidence *int            `json:"disposition_confidence,omitempty"`
	Sentiment             *Sentiment      `json:"sentiment,omitempty"`
	Urgency               *Urgency        `json:"urgency,omitempty"`
	FollowUpTiming        *FollowUpTiming `json:"follow_up_timing,omitempty"`
	Intent                *string         `json:"intent,omitempty"`
	LastReplyAnalysis     *string         `json:"last_reply_analysis,omitempty"`
}

// NormalizePriority maps free-form priority text to a Priority, falling back
// to medium for anything unrecognized.
func NormalizePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// NormalizeDisposition maps free-form disposition text to a Disposition,
// falling back to unset.
func NormalizeDisposition(s string) Disposition {
	switch Disposition(strings.ToLower(strings.TrimSpace(s))) {
	case DispositionEngaged:
		return DispositionEngaged
	case DispositionMaybe:
		return DispositionMaybe
	case DispositionDisinterested:
		return DispositionDisinterested
	default:
		return DispositionUnset
	}
}

// NormalizeSentiment maps free-form sentiment text to a Sentiment, falling
// back to neutral.
func NormalizeSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// NormalizeUrgency maps free-form urgency text to an Urgency, falling back
// to not_specified.
func NormalizeUrgency(s string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyHigh:
		return UrgencyHigh
	case UrgencyMedium:
		return UrgencyMedium
	case UrgencyLow:
		return UrgencyLow
	default:
		return UrgencyNotSpecified
	}
}

// NormalizeFollowUpTiming maps free-form timing text to a FollowUpTiming,
// falling back to none.
func NormalizeFollowUpTiming(s string) FollowUpTiming {
	switch FollowUpTiming(strings.ToLower(strings.TrimSpace(s))) {
	case FollowUpImmediate:
		return FollowUpImmediate
	case FollowUpOneWeek:
		return FollowUpOneWeek
	case FollowUpOneMonth:
		return FollowUpOneMonth
	case FollowUpThreeMonths:
		return FollowUpThreeMonths
	default:
		return FollowUpNone
	}
}
