package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/lead-agent/internal/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		disposition  types.Disposition
		sentiment    types.Sentiment
		urgency      types.Urgency
		confidence   int
		wantScore    int
		wantPriority types.Priority
	}{
		{
			name:         "Engaged positive high urgency",
			disposition:  types.DispositionEngaged,
			sentiment:    types.SentimentPositive,
			urgency:      types.UrgencyHigh,
			confidence:   90,
			wantScore:    100, // 90*1.0 + 10 + 5, clamped
			wantPriority: types.PriorityHigh,
		},
		{
			name:         "Engaged high urgency below confidence threshold",
			disposition:  types.DispositionEngaged,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyHigh,
			confidence:   60,
			wantScore:    65, // 60*1.0 + 5
			wantPriority: types.PriorityHigh,
		},
		{
			name:         "Engaged without urgency or threshold stays medium",
			disposition:  types.DispositionEngaged,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyMedium,
			confidence:   70,
			wantScore:    70,
			wantPriority: types.PriorityMedium,
		},
		{
			name:         "Maybe neutral",
			disposition:  types.DispositionMaybe,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyNotSpecified,
			confidence:   50,
			wantScore:    40, // 50*0.8
			wantPriority: types.PriorityMedium,
		},
		{
			name:         "Disinterested negative low urgency",
			disposition:  types.DispositionDisinterested,
			sentiment:    types.SentimentNegative,
			urgency:      types.UrgencyLow,
			confidence:   80,
			wantScore:    12, // 80*0.4 - 15 - 5
			wantPriority: types.PriorityLow,
		},
		{
			name:         "Disinterested with low confidence",
			disposition:  types.DispositionDisinterested,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyNotSpecified,
			confidence:   20,
			wantScore:    8, // 20*0.4
			wantPriority: types.PriorityLow,
		},
		{
			name:         "Low confidence forces low priority",
			disposition:  types.DispositionMaybe,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyMedium,
			confidence:   20,
			wantScore:    16, // 20*0.8
			wantPriority: types.PriorityLow,
		},
		{
			name:         "Unset disposition uses the dampening multiplier",
			disposition:  types.DispositionUnset,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyNotSpecified,
			confidence:   50,
			wantScore:    30, // 50*0.6
			wantPriority: types.PriorityMedium,
		},
		{
			name:         "Negative adjustments clamp at zero",
			disposition:  types.DispositionDisinterested,
			sentiment:    types.SentimentNegative,
			urgency:      types.UrgencyLow,
			confidence:   10,
			wantScore:    0, // 10*0.4 - 15 - 5 = -16
			wantPriority: types.PriorityLow,
		},
		{
			name:         "Out-of-range confidence is clamped before scaling",
			disposition:  types.DispositionEngaged,
			sentiment:    types.SentimentNeutral,
			urgency:      types.UrgencyNotSpecified,
			confidence:   150,
			wantScore:    100,
			wantPriority: types.PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, priority := Score(tt.disposition, tt.sentiment, tt.urgency, tt.confidence)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantPriority, priority)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	firstScore, firstPriority := Score(types.DispositionMaybe, types.SentimentPositive, types.UrgencyHigh, 65)
	for i := 0; i < 10; i++ {
		score, priority := Score(types.DispositionMaybe, types.SentimentPositive, types.UrgencyHigh, 65)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstPriority, priority)
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Meeting request", "Could we schedule a quick demo next week?", IntentMeetingRequest},
		{"Interested", "This sounds great, I'd love to hear more", IntentInterested},
		{"Info request", "Can you send over pricing details?", IntentInfoRequest},
		{"Objection", "My main concern is the migration effort", IntentObjection},
		{"Not interested", "We're not interested at this time", IntentNotInterested},
		{"Not interested wins over interested", "Not interested, though the product sounds great", IntentNotInterested},
		{"Neutral fallback", "Thanks for reaching out.", IntentNeutral},
		{"Empty text", "", IntentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.text))
		})
	}
}

func TestIntentConfidence(t *testing.T) {
	assert.Equal(t, 95, IntentConfidence(IntentInterested))
	assert.Equal(t, 10, IntentConfidence(IntentNotInterested))
	assert.Equal(t, 50, IntentConfidence("something_else"))
}

func TestExtractSignals(t *testing.T) {
	text := "What does pricing look like? Can we start this week? Our CEO has approved the budget."

	s := ExtractSignals(text)
	assert.Equal(t, 2, s.QuestionsAsked)
	assert.True(t, s.BudgetMentioned)
	assert.Contains(t, s.UrgencyIndicators, "this week")
	assert.NotEmpty(t, s.AuthorityIndicators)
}

func TestExtractSignals_Empty(t *testing.T) {
	s := ExtractSignals("")
	assert.Zero(t, s.QuestionsAsked)
	assert.False(t, s.BudgetMentioned)
	assert.Empty(t, s.UrgencyIndicators)
	assert.Empty(t, s.TimelineMentions)
	assert.Empty(t, s.AuthorityIndicators)
}

func TestEngagementScore(t *testing.T) {
	full := Signals{
		QuestionsAsked:      5,
		UrgencyIndicators:   []string{"asap"},
		BudgetMentioned:     true,
		TimelineMentions:    []string{"next week"},
		AuthorityIndicators: []string{"decision maker"},
	}
	// Questions cap at 3: 30 + 20 + 25 + 15 + 10
	assert.Equal(t, 100, EngagementScore(full))
	assert.Equal(t, 0, EngagementScore(Signals{}))
	assert.Equal(t, 20, EngagementScore(Signals{QuestionsAsked: 2}))
}
