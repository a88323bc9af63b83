package scoring

import "strings"

// Intent categories for inbound replies
const (
	IntentInterested     = "interested"
	IntentMeetingRequest = "meeting_request"
	IntentInfoRequest    = "info_request"
	IntentNeutral        = "neutral"
	IntentObjection      = "objection"
	IntentNotInterested  = "not_interested"
)

// intentKeywords lists the trigger phrases per category, checked in order.
// Negative intents are checked before objections so "not interested, but..."
// classifies as not_interested.
var intentKeywords = []struct {
	intent  string
	phrases []string
}{
	{IntentNotInterested, []string{"not interested", "remove me", "unsubscribe", "not looking"}},
	{IntentInterested, []string{"interested", "sounds great", "love to", "perfect timing", "exactly what we need"}},
	{IntentMeetingRequest, []string{"schedule", "meeting", "call", "demo", "available"}},
	{IntentInfoRequest, []string{"pricing", "cost", "features", "requirements", "more information"}},
	{IntentObjection, []string{"concern", "however", "worry", "issue", "hesitant"}},
}

// intentConfidence maps each intent to the engagement confidence it implies.
var intentConfidence = map[string]int{
	IntentInterested:     95,
	IntentMeetingRequest: 90,
	IntentInfoRequest:    75,
	IntentNeutral:        50,
	IntentObjection:      30,
	IntentNotInterested:  10,
}

// ClassifyIntent assigns an intent category to a reply based on trigger
// phrases. Empty or unmatched text classifies as neutral.
func ClassifyIntent(replyText string) string {
	lower := strings.ToLower(replyText)
	for _, entry := range intentKeywords {
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.intent
			}
		}
	}
	return IntentNeutral
}

// IntentConfidence returns the engagement confidence implied by an intent
// category, defaulting to 50 for unknown categories.
func IntentConfidence(intent string) int {
	if c, ok := intentConfidence[intent]; ok {
		return c
	}
	return 50
}
