package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQualificationPayload() map[string]any {
	return map[string]any{
		"priority":    "high",
		"lead_score":  85,
		"reasoning":   "clear buying intent",
		"next_action": "schedule demo",
		"disposition": "engaged",
		"sentiment":   "positive",
	}
}

func TestValidatePayload_Qualification(t *testing.T) {
	assert.NoError(t, ValidatePayload("qualification", validQualificationPayload()))
}

func TestValidatePayload_MissingRequiredField(t *testing.T) {
	payload := validQualificationPayload()
	delete(payload, "next_action")

	err := ValidatePayload("qualification", payload)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "qualification", vErr.EventType)
	assert.NotEmpty(t, vErr.Failures)
}

func TestValidatePayload_EnumViolation(t *testing.T) {
	payload := validQualificationPayload()
	payload["priority"] = "urgent"
	assert.Error(t, ValidatePayload("qualification", payload))
}

func TestValidatePayload_ScoreOutOfRange(t *testing.T) {
	payload := validQualificationPayload()
	payload["lead_score"] = 140
	assert.Error(t, ValidatePayload("qualification", payload))
}

func TestValidatePayload_ReplyAnalyzed(t *testing.T) {
	payload := map[string]any{
		"disposition": "engaged",
		"confidence":  88,
		"lead_score":  98,
		"priority":    "high",
		"intent":      "meeting_request",
		"next_action": "send invite",
		"signals":     map[string]any{"questions_asked": 1},
	}
	assert.NoError(t, ValidatePayload("reply_analyzed", payload))

	payload["follow_up_timing"] = "someday"
	assert.Error(t, ValidatePayload("reply_analyzed", payload))
}

func TestValidatePayload_UnknownEventTypePassesThrough(t *testing.T) {
	assert.NoError(t, ValidatePayload("meeting_scheduled", map[string]any{"anything": true}))
	assert.NoError(t, ValidatePayload("custom_event", nil))
}
