package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("agents.json", "qualify-lead")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Message}}")
	assert.Contains(t, prompt, "Priority:")

	_, err = Get("agents.json", "no-such-key")
	assert.Error(t, err)

	_, err = Get("missing.json", "qualify-lead")
	assert.Error(t, err)
}

func TestMustGet(t *testing.T) {
	assert.NotPanics(t, func() { MustGet("agents.json", "analyze-reply") })
	assert.Panics(t, func() { MustGet("agents.json", "no-such-key") })
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}} from {{.Company}}. {{.Name}} again."
	result := Format(template, map[string]string{"Name": "Alice", "Company": "Acme"})
	assert.Equal(t, "Hello Alice from Acme. Alice again.", result)

	// Unmatched placeholders are left as-is
	result = Format("{{.Unknown}}", map[string]string{"Name": "Alice"})
	assert.Equal(t, "{{.Unknown}}", result)
}

func TestAgentPrompts_PlaceholdersResolve(t *testing.T) {
	prompt := Format(MustGet("agents.json", "qualify-lead"), map[string]string{
		"Name": "Alice", "Company": "Acme", "Role": "CTO",
		"Email": "alice@acme.com", "Subject": "Demo", "Message": "body", "Context": "",
	})
	assert.False(t, strings.Contains(prompt, "{{."), "unresolved placeholder in qualify-lead")

	prompt = Format(MustGet("agents.json", "analyze-reply"), map[string]string{
		"Name": "Alice", "Company": "Acme", "Interest": "",
		"Subject": "Re: Demo", "Reply": "sounds good",
	})
	assert.False(t, strings.Contains(prompt, "{{."), "unresolved placeholder in analyze-reply")
}
