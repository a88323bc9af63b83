package parsing

import (
	"github.com/jonathan/lead-agent/internal/types"
)

// Qualification is the typed result of parsing an email-qualifier response.
// Every field is always populated; Defaulted names the fields that fell back
// to their documented default instead of being parsed from the text.
type Qualification struct {
	Priority    types.Priority
	LeadScore   int
	Reasoning   string
	NextAction  string
	Disposition types.Disposition
	Confidence  int
	Sentiment   types.Sentiment
	Urgency     types.Urgency

	Defaulted map[string]bool
}

// Degraded reports whether any field was substituted with a default.
func (q *Qualification) Degraded() bool {
	return len(q.Defaulted) > 0
}

// ParseQualification converts a qualifier agent response into a complete
// Qualification. It never fails: garbage input yields the all-default record.
func ParseQualification(text string) *Qualification {
	fields := scanFields(CleanResponse(text))
	q := &Qualification{Defaulted: make(map[string]bool)}

	q.Priority = parseEnum(fields, "priority", q.Defaulted, types.NormalizePriority, types.PriorityMedium)
	q.Disposition = parseEnum(fields, "disposition", q.Defaulted, types.NormalizeDisposition, types.DispositionUnset)
	q.Sentiment = parseEnum(fields, "sentiment", q.Defaulted, types.NormalizeSentiment, types.SentimentNeutral)
	q.Urgency = parseEnum(fields, "urgency", q.Defaulted, types.NormalizeUrgency, types.UrgencyNotSpecified)

	q.LeadScore = parseIntField(fields, "lead_score", q.Defaulted, DefaultLeadScore)
	q.Confidence = parseIntField(fields, "confidence", q.Defaulted, DefaultConfidence)

	q.Reasoning = parseTextField(fields, "reasoning", q.Defaulted, "")
	q.NextAction = parseTextField(fields, "next_action", q.Defaulted, DefaultNextAction)

	return q
}

// parseEnum resolves an enum field through its normalizer, marking the field
// defaulted when the label was absent entirely. Unrecognized values are
// normalized to the enum's fallback but still count as parsed.
func parseEnum[T ~string](fields map[string]string, name string, defaulted map[string]bool, normalize func(string) T, fallback T) T {
	raw, ok := fields[name]
	if !ok {
		defaulted[name] = true
		return fallback
	}
	return normalize(raw)
}

// parseIntField resolves a 0-100 integer field.
func parseIntField(fields map[string]string, name string, defaulted map[string]bool, fallback int) int {
	raw, ok := fields[name]
	if !ok {
		defaulted[name] = true
		return fallback
	}
	n, wasDefaulted := parseBoundedInt(raw, fallback, 0, 100)
	if wasDefaulted {
		defaulted[name] = true
	}
	return n
}

// parseTextField resolves a free-text field.
func parseTextField(fields map[string]string, name string, defaulted map[string]bool, fallback string) string {
	raw, ok := fields[name]
	if !ok {
		defaulted[name] = true
		return fallback
	}
	return raw
}
