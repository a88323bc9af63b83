// Package intake normalizes raw inbound email bodies before they are
// handed to the qualification pipeline. Bodies arrive as plain text or
// full HTML depending on the sending client, so everything is reduced to
// clean plain text here.
package intake

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// signatureMarker is the conventional "-- " separator that precedes an
// email signature block.
const signatureMarker = "-- "

// CleanBody reduces an email body to plain text suitable for prompting
// and keyword analysis. HTML bodies are stripped of markup and noise
// elements; quoted reply history and trailing signatures are removed
// from the result. Cleaning never fails: if the HTML cannot be parsed
// the raw input is cleaned as plain text instead.
func CleanBody(body string) string {
	text := body
	if looksLikeHTML(body) {
		if extracted, err := extractText(body); err == nil {
			text = extracted
		}
	}
	text = stripQuotedReplies(text)
	text = stripSignature(text)
	return cleanWhitespace(text)
}

// looksLikeHTML reports whether the body appears to be an HTML document
// or fragment rather than plain text.
func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range []string{"<html", "<body", "<div", "<p>", "<br", "<table", "<!doctype"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extractText parses an HTML body and returns its visible text with
// noise elements removed.
func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	// Drop markup that never carries message content, plus the quoted
	// history blocks Gmail and Outlook wrap previous messages in.
	doc.Find("script, style, noscript, head, blockquote, .gmail_quote, .gmail_signature, #divRplyFwdMsg, .OutlookMessageHeader").Remove()

	// Line breaks and paragraph boundaries would otherwise collapse into
	// a single run of text.
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p, div, tr, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	content := doc.Find("body")
	if content.Length() == 0 {
		content = doc.Selection
	}
	return content.Text(), nil
}

// stripQuotedReplies removes quoted history from a plain-text body:
// ">"-prefixed lines and everything after an "On ... wrote:" attribution
// line.
func stripQuotedReplies(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		if isAttributionLine(trimmed) {
			break
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// isAttributionLine matches the "On Mon, Jan 2 ... wrote:" line that
// mail clients insert above quoted history.
func isAttributionLine(line string) bool {
	return strings.HasPrefix(line, "On ") && strings.HasSuffix(line, "wrote:")
}

// stripSignature drops everything from the conventional "-- " signature
// separator onward.
func stripSignature(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == signatureMarker || strings.TrimSpace(line) == "--" {
			return strings.Join(lines[:i], "\n")
		}
	}
	return text
}

// cleanWhitespace trims each line and collapses runs of blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
