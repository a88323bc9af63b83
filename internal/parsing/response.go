// Package parsing converts free-form `Label: value` agent responses into
// typed, fully-defaulted qualification records. Parsing is fail-soft: every
// parse returns a complete result, substituting documented defaults for
// anything missing or malformed, and records which fields were defaulted.
package parsing

import (
	"strconv"
	"strings"
)

// Documented defaults substituted when a field is missing or malformed
const (
	DefaultConfidence = 50
	DefaultLeadScore  = 50
	DefaultNextAction = "Manual review required"
)

// labelAliases maps alternate label spellings to canonical field names.
// Labels are normalized (lowercased, separators collapsed to underscores)
// before lookup, so "Next Action", "next-action" and "NEXT_ACTION" all hit
// the same entry.
var labelAliases = map[string]string{
	"priority":                "priority",
	"lead_score":              "lead_score",
	"score":                   "lead_score",
	"reasoning":               "reasoning",
	"next_action":             "next_action",
	"recommended_next_action": "next_action",
	"disposition":             "disposition",
	"lead_disposition":        "disposition",
	"confidence":              "confidence",
	"disposition_confidence":  "confidence",
	"sentiment":               "sentiment",
	"urgency":                 "urgency",
	"follow_up_timing":        "follow_up_timing",
	"recommended_follow_up":   "follow_up_timing",
	"intent":                  "intent",
}

// scanFields extracts canonical field name → raw value pairs from a block of
// `Label: value` lines. Unrecognized labels and lines without a colon are
// skipped. The last occurrence of a repeated label wins.
func scanFields(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// Tolerate markdown bullets and bold markers around labels
		line = strings.TrimLeft(line, "-*• \t")
		line = strings.ReplaceAll(line, "**", "")

		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}

		label := normalizeLabel(line[:idx])
		canonical, ok := labelAliases[label]
		if !ok {
			continue
		}

		value := strings.TrimSpace(line[idx+1:])
		if value == "" {
			continue
		}
		fields[canonical] = value
	}
	return fields
}

// normalizeLabel lowercases a label and collapses spaces, hyphens and other
// separators to single underscores.
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// parseBoundedInt parses an integer field, clamping to [min, max]. Returns
// the fallback and true when the raw text is not numeric at all. Trailing
// "%" and "/100" decorations are tolerated.
func parseBoundedInt(raw string, fallback, min, max int) (value int, defaulted bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.TrimSuffix(raw, "/100")
	raw = strings.TrimSpace(raw)

	// Accept "85 (high)" style annotations by taking the leading token
	if idx := strings.IndexAny(raw, " ("); idx > 0 {
		raw = raw[:idx]
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		// Last resort: a float like "72.5" still carries signal
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fallback, true
		}
		n = int(f)
	}

	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n, false
}
