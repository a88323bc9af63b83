package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-agent/internal/llm"
	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

const meetingReplyResponse = `Disposition: engaged
Confidence: 88
Sentiment: positive
Urgency: medium
Follow Up Timing: immediate
Intent: meeting_request
Reasoning: Asked for a Tuesday slot
Next Action: Send calendar invite`

func TestAnalyze_EndToEnd(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	client := &fakeClient{response: meetingReplyResponse}
	analyzer := NewReplyAnalyzer(client, st)

	result, err := analyzer.Analyze(ctx, &types.ReplyInput{
		SenderEmail: "alice@acme.com",
		ReplyText:   "Tuesday works. Can we do a call then? Budget is already approved.",
	})
	require.NoError(t, err)
	assert.False(t, result.Fallback)

	// Reply classification runs on the lite tier
	require.Len(t, client.tiers, 1)
	assert.Equal(t, llm.TierLite, client.tiers[0])

	record := result.Record
	require.NotNil(t, record)
	// Derived: 88*1.0 + 10 = 98, engaged + confidence 88 -> high priority
	assert.Equal(t, 98, record.LeadScore)
	assert.Equal(t, types.PriorityHigh, record.Priority)
	assert.Equal(t, types.DispositionEngaged, record.Disposition)
	assert.Equal(t, types.FollowUpImmediate, record.FollowUpTiming)
	assert.Equal(t, "meeting_request", record.Intent)
	assert.Equal(t, "Asked for a Tuesday slot", record.LastReplyAnalysis)
	assert.NoError(t, record.Validate())

	events, err := st.History(ctx, result.LeadID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventReplyAnalyzed, events[0].EventType)
	assert.Equal(t, "meeting_request", events[0].Payload["intent"])

	signals, ok := events[0].Payload["signals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, signals["questions_asked"])
	assert.Equal(t, true, signals["budget_mentioned"])
}

func TestAnalyze_UnknownSenderCreatesLead(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	analyzer := NewReplyAnalyzer(&fakeClient{response: meetingReplyResponse}, st)

	result, err := analyzer.Analyze(ctx, &types.ReplyInput{
		SenderEmail: "new@example.com",
		ReplyText:   "interesting, tell me more",
	})
	require.NoError(t, err)

	lead, err := st.FindLeadByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, lead.LeadID, result.LeadID)
}

func TestAnalyze_ConcurrentFirstContactWithQualifier(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	qualifier := NewQualifier(&fakeClient{response: engagedResponse}, st)
	analyzer := NewReplyAnalyzer(&fakeClient{response: meetingReplyResponse}, st)

	// First contact arriving through both entry points at once must still
	// resolve to a single lead.
	var wg sync.WaitGroup
	ids := make([]string, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result, err := qualifier.Qualify(ctx, &types.LeadInput{Email: "grace@example.com", EmailBody: "hi"})
		assert.NoError(t, err)
		ids[0] = result.LeadID
	}()
	go func() {
		defer wg.Done()
		result, err := analyzer.Analyze(ctx, &types.ReplyInput{SenderEmail: "grace@example.com", ReplyText: "tell me more"})
		assert.NoError(t, err)
		ids[1] = result.LeadID
	}()
	wg.Wait()

	assert.Equal(t, ids[0], ids[1])

	leads, err := st.ListLeads(ctx)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	events, err := st.History(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestAnalyze_LLMFailureFallsBackToKeywords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	analyzer := NewReplyAnalyzer(&fakeClient{err: errors.New("quota exhausted")}, st)

	result, err := analyzer.Analyze(ctx, &types.ReplyInput{
		SenderEmail: "busy@example.com",
		ReplyText:   "We're not interested, please remove me from your list.",
	})
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "quota exhausted")

	record := result.Record
	require.NotNil(t, record)
	assert.Equal(t, types.DispositionDisinterested, record.Disposition)
	assert.Equal(t, "not_interested", record.Intent)
	// 10 * 0.4 - 15 - 5 clamps to 0; disinterested -> low priority
	assert.Equal(t, 0, record.LeadScore)
	assert.Equal(t, types.PriorityLow, record.Priority)
	assert.Equal(t, types.FollowUpNone, record.FollowUpTiming)
	assert.NoError(t, record.Validate())

	events, err := st.History(ctx, result.LeadID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Payload["error"], "quota exhausted")
}

func TestAnalyze_InvalidInput(t *testing.T) {
	analyzer := NewReplyAnalyzer(&fakeClient{response: meetingReplyResponse}, store.NewMemoryStore())

	_, err := analyzer.Analyze(context.Background(), &types.ReplyInput{SenderEmail: "alice@acme.com"})
	require.Error(t, err)
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestKeywordAnalysis_Mappings(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantIntent      string
		wantDisposition types.Disposition
	}{
		{"Meeting request", "can we schedule a demo", "meeting_request", types.DispositionEngaged},
		{"Info request", "what does pricing look like", "info_request", types.DispositionMaybe},
		{"Objection", "my main concern is security", "objection", types.DispositionMaybe},
		{"Not interested", "not interested thanks", "not_interested", types.DispositionDisinterested},
		{"Neutral", "thanks for the note", "neutral", types.DispositionUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := keywordAnalysis(tt.text)
			assert.Equal(t, tt.wantIntent, analysis.Intent)
			assert.Equal(t, tt.wantDisposition, analysis.Disposition)
		})
	}
}
