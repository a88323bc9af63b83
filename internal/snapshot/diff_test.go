package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

func ptr[T any](v T) *T { return &v }

func seedLead(t *testing.T, s store.Store) string {
	t.Helper()
	lead := &types.Lead{LeadID: "lead-1", Name: "Alice", Company: "Acme", Email: "alice@acme.com"}
	require.NoError(t, s.CreateLead(context.Background(), lead))
	return lead.LeadID
}

func TestBeforeAfter_UnqualifiedLead(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	leadID := seedLead(t, s)

	before, after, err := NewDifferencer(s).BeforeAfter(ctx, leadID)
	require.NoError(t, err)

	assert.Equal(t, "Alice", before.Name)
	assert.Equal(t, "Acme", before.Company)
	assert.Equal(t, 0, before.LeadScore)
	assert.Equal(t, "unqualified", before.Priority)
	assert.Equal(t, "awaiting_reply", before.Disposition)
	assert.Equal(t, "Needs qualification", before.NextAction)

	// No record yet: after shows the same baseline as before, so the
	// comparison renders without gaps
	assert.Equal(t, "unqualified", after.Priority)
	assert.Equal(t, 0, after.LeadScore)
	assert.Equal(t, "Needs qualification", after.NextAction)
	assert.Nil(t, after.EventDetails)
}

func TestBeforeAfter_QualifiedLead(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	leadID := seedLead(t, s)

	require.NoError(t, s.UpsertQualification(ctx, leadID, types.QualificationUpdate{
		Priority:    ptr(types.PriorityHigh),
		LeadScore:   ptr(88),
		Reasoning:   ptr("budget confirmed"),
		NextAction:  ptr("schedule demo"),
		Disposition: ptr(types.DispositionEngaged),
	}))
	require.NoError(t, s.AppendInteraction(ctx, leadID, types.EventQualification, map[string]any{"lead_score": 70}))
	require.NoError(t, s.AppendInteraction(ctx, leadID, types.EventQualification, map[string]any{"lead_score": 88}))
	require.NoError(t, s.AppendInteraction(ctx, leadID, types.EventReplyAnalyzed, map[string]any{"intent": "meeting_request"}))

	before, after, err := NewDifferencer(s).BeforeAfter(ctx, leadID)
	require.NoError(t, err)

	// Before is always the synthetic baseline, not a stored state
	assert.Equal(t, "unqualified", before.Priority)

	assert.Equal(t, 88, after.LeadScore)
	assert.Equal(t, "high", after.Priority)
	assert.Equal(t, "engaged", after.Disposition)
	assert.Equal(t, "schedule demo", after.NextAction)
	assert.Equal(t, "budget confirmed", after.Reasoning)

	// Latest payload per event type wins
	require.NotNil(t, after.EventDetails)
	assert.Equal(t, 88, after.EventDetails[types.EventQualification]["lead_score"])
	assert.Equal(t, "meeting_request", after.EventDetails[types.EventReplyAnalyzed]["intent"])
}

func TestBeforeAfter_UnknownLead(t *testing.T) {
	_, _, err := NewDifferencer(store.NewMemoryStore()).BeforeAfter(context.Background(), "nope")
	assert.Error(t, err)
}
