package parsing

import (
	"github.com/jonathan/lead-agent/internal/types"
)

// ReplyAnalysis is the typed result of parsing a reply-analyzer response.
// Like Qualification, every field is always populated and Defaulted records
// the fallbacks.
type ReplyAnalysis struct {
	Disposition    types.Disposition
	Confidence     int
	Sentiment      types.Sentiment
	Urgency        types.Urgency
	Reasoning      string
	NextAction     string
	FollowUpTiming types.FollowUpTiming
	Intent         string

	Defaulted map[string]bool
}

// Degraded reports whether any field was substituted with a default.
func (a *ReplyAnalysis) Degraded() bool {
	return len(a.Defaulted) > 0
}

// ParseReply converts a reply-analyzer response into a complete
// ReplyAnalysis. It never fails: garbage input yields the all-default record.
func ParseReply(text string) *ReplyAnalysis {
	fields := scanFields(CleanResponse(text))
	a := &ReplyAnalysis{Defaulted: make(map[string]bool)}

	a.Disposition = parseEnum(fields, "disposition", a.Defaulted, types.NormalizeDisposition, types.DispositionUnset)
	a.Sentiment = parseEnum(fields, "sentiment", a.Defaulted, types.NormalizeSentiment, types.SentimentNeutral)
	a.Urgency = parseEnum(fields, "urgency", a.Defaulted, types.NormalizeUrgency, types.UrgencyNotSpecified)
	a.FollowUpTiming = parseEnum(fields, "follow_up_timing", a.Defaulted, types.NormalizeFollowUpTiming, types.FollowUpNone)

	a.Confidence = parseIntField(fields, "confidence", a.Defaulted, DefaultConfidence)

	a.Reasoning = parseTextField(fields, "reasoning", a.Defaulted, "")
	a.NextAction = parseTextField(fields, "next_action", a.Defaulted, DefaultNextAction)
	a.Intent = parseTextField(fields, "intent", a.Defaulted, "neutral")

	return a
}
