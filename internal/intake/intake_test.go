package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanBody_PlainText(t *testing.T) {
	body := "Hi there,\n\n\nWe're evaluating tools for Q3.\n\nThanks,\nAlice"
	got := CleanBody(body)
	assert.Equal(t, "Hi there,\nWe're evaluating tools for Q3.\nThanks,\nAlice", got)
}

func TestCleanBody_HTML(t *testing.T) {
	body := `<html><head><style>p { color: red; }</style></head><body>
		<p>We need a solution before Q3.</p>
		<div>Can you send pricing?</div>
		<script>track();</script>
	</body></html>`

	got := CleanBody(body)
	assert.Contains(t, got, "We need a solution before Q3.")
	assert.Contains(t, got, "Can you send pricing?")
	assert.NotContains(t, got, "track()")
	assert.NotContains(t, got, "color: red")
}

func TestCleanBody_HTMLLineBreaks(t *testing.T) {
	got := CleanBody("<html><body><p>first line</p><p>second line</p></body></html>")
	assert.Equal(t, "first line\nsecond line", got)
}

func TestCleanBody_StripsQuotedReplies(t *testing.T) {
	body := `Sounds good, let's talk Tuesday.

On Mon, Aug 25, 2025 at 9:12 AM Sales Team <sales@vendor.com> wrote:
> Following up on my last note.
> Do you have time this week?`

	got := CleanBody(body)
	assert.Equal(t, "Sounds good, let's talk Tuesday.", got)
}

func TestCleanBody_StripsQuotedHTMLBlocks(t *testing.T) {
	body := `<html><body><div>Tuesday works for me.</div>
		<blockquote>Original message text here</blockquote>
		<div class="gmail_quote">More quoted history</div></body></html>`

	got := CleanBody(body)
	assert.Contains(t, got, "Tuesday works for me.")
	assert.NotContains(t, got, "Original message text")
	assert.NotContains(t, got, "quoted history")
}

func TestCleanBody_StripsSignature(t *testing.T) {
	body := "Let me check with my team.\n-- \nAlice Smith\nVP Engineering, Acme"
	got := CleanBody(body)
	assert.Equal(t, "Let me check with my team.", got)
	assert.NotContains(t, got, "VP Engineering")
}

func TestCleanBody_Empty(t *testing.T) {
	assert.Equal(t, "", CleanBody(""))
	assert.Equal(t, "", CleanBody("   \n\n  "))
}
