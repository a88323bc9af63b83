package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualificationRecord_Validate(t *testing.T) {
	record := QualificationRecord{
		LeadID:     "lead-1",
		Priority:   PriorityHigh,
		LeadScore:  85,
		Reasoning:  "clear intent",
		NextAction: "schedule demo",
	}
	assert.NoError(t, record.Validate())

	missing := record
	missing.NextAction = ""
	assert.Error(t, missing.Validate())

	badPriority := record
	badPriority.Priority = "urgent"
	assert.Error(t, badPriority.Validate())

	badScore := record
	badScore.LeadScore = 140
	assert.Error(t, badScore.Validate())
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority(" HIGH "))
	assert.Equal(t, PriorityMedium, NormalizePriority("urgent"))

	assert.Equal(t, DispositionEngaged, NormalizeDisposition("Engaged"))
	assert.Equal(t, DispositionUnset, NormalizeDisposition("keen"))

	assert.Equal(t, SentimentNegative, NormalizeSentiment("negative"))
	assert.Equal(t, SentimentNeutral, NormalizeSentiment("mixed"))

	assert.Equal(t, UrgencyNotSpecified, NormalizeUrgency(""))
	assert.Equal(t, UrgencyHigh, NormalizeUrgency("high"))

	assert.Equal(t, FollowUpOneWeek, NormalizeFollowUpTiming("1-week"))
	assert.Equal(t, FollowUpNone, NormalizeFollowUpTiming("whenever"))
}
