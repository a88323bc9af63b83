package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain text untouched",
			input:    "Priority: high\nLead Score: 80",
			expected: "Priority: high\nLead Score: 80",
		},
		{
			name:     "Bare fence",
			input:    "```\nPriority: high\n```",
			expected: "Priority: high",
		},
		{
			name:     "Fence with language identifier",
			input:    "```text\nPriority: high\n```",
			expected: "Priority: high",
		},
		{
			name:     "Surrounding whitespace",
			input:    "  ```\nPriority: high\n```  ",
			expected: "Priority: high",
		},
		{
			name:     "First content line is not a language identifier",
			input:    "```\nPriority: high\nLead Score: 80\n```",
			expected: "Priority: high\nLead Score: 80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanResponse(tt.input))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "next_action", normalizeLabel("Next Action"))
	assert.Equal(t, "next_action", normalizeLabel("next-action"))
	assert.Equal(t, "next_action", normalizeLabel("NEXT_ACTION"))
	assert.Equal(t, "lead_score", normalizeLabel("  Lead  Score  "))
	assert.Equal(t, "priority", normalizeLabel("Priority"))
}
