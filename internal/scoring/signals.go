package scoring

import "strings"

// Signals captures concrete engagement indicators found in a reply body.
type Signals struct {
	QuestionsAsked      int      `json:"questions_asked"`
	UrgencyIndicators   []string `json:"urgency_indicators,omitempty"`
	BudgetMentioned     bool     `json:"budget_mentioned"`
	TimelineMentions    []string `json:"timeline_mentions,omitempty"`
	AuthorityIndicators []string `json:"authority_indicators,omitempty"`
}

var (
	urgencyPhrases   = []string{"asap", "urgent", "immediately", "right away", "this week", "deadline"}
	budgetPhrases    = []string{"budget", "pricing", "cost", "invest", "spend"}
	timelinePhrases  = []string{"next week", "next month", "this quarter", "q1", "q2", "q3", "q4", "by the end of"}
	authorityPhrases = []string{"i decide", "my team", "our ceo", "decision maker", "i'm the owner", "approved"}
)

// ExtractSignals pulls engagement signals out of a reply body. It is purely
// lexical and never fails; empty text yields an empty Signals.
func ExtractSignals(replyText string) Signals {
	lower := strings.ToLower(replyText)

	return Signals{
		QuestionsAsked:      strings.Count(replyText, "?"),
		UrgencyIndicators:   matchPhrases(lower, urgencyPhrases),
		BudgetMentioned:     len(matchPhrases(lower, budgetPhrases)) > 0,
		TimelineMentions:    matchPhrases(lower, timelinePhrases),
		AuthorityIndicators: matchPhrases(lower, authorityPhrases),
	}
}

// EngagementScore converts signals into a 0-100 engagement score. Each
// signal class contributes a fixed share so the result is deterministic.
func EngagementScore(s Signals) int {
	score := 0

	questions := s.QuestionsAsked
	if questions > 3 {
		questions = 3
	}
	score += questions * 10

	if len(s.UrgencyIndicators) > 0 {
		score += 20
	}
	if s.BudgetMentioned {
		score += 25
	}
	if len(s.TimelineMentions) > 0 {
		score += 15
	}
	if len(s.AuthorityIndicators) > 0 {
		score += 10
	}

	return clamp(score)
}

func matchPhrases(lower string, phrases []string) []string {
	var found []string
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
