// Package scoring derives lead scores and priority tiers from parsed
// qualification data. All functions here are pure: identical inputs always
// produce identical outputs, which keeps stored audit trails reproducible.
package scoring

import (
	"github.com/jonathan/lead-agent/internal/types"
)

// Disposition multipliers applied to the confidence base score
const (
	engagedMultiplier       = 1.0
	maybeMultiplier         = 0.8
	disinterestedMultiplier = 0.4
	unsetMultiplier         = 0.6
)

// Additive adjustments for sentiment and urgency
const (
	positiveSentimentBonus   = 10
	negativeSentimentPenalty = -15
	highUrgencyBonus         = 5
	lowUrgencyPenalty        = -5
)

// Priority thresholds
const (
	highPriorityConfidence = 80
	lowPriorityConfidence  = 30
)

// Score computes the lead score and priority tier for a qualification.
// Confidence is the 0-100 base; the disposition scales it, then sentiment
// and urgency shift it, and the result is clamped back into [0, 100].
func Score(disposition types.Disposition, sentiment types.Sentiment, urgency types.Urgency, confidence int) (int, types.Priority) {
	score := float64(clamp(confidence)) * multiplierFor(disposition)

	switch sentiment {
	case types.SentimentPositive:
		score += positiveSentimentBonus
	case types.SentimentNegative:
		score += negativeSentimentPenalty
	}

	switch urgency {
	case types.UrgencyHigh:
		score += highUrgencyBonus
	case types.UrgencyLow:
		score += lowUrgencyPenalty
	}

	return clamp(int(score)), priorityFor(disposition, urgency, confidence)
}

// priorityFor applies the priority rules in order; first match wins.
func priorityFor(disposition types.Disposition, urgency types.Urgency, confidence int) types.Priority {
	if disposition == types.DispositionEngaged && (confidence >= highPriorityConfidence || urgency == types.UrgencyHigh) {
		return types.PriorityHigh
	}
	if disposition == types.DispositionDisinterested || confidence < lowPriorityConfidence {
		return types.PriorityLow
	}
	return types.PriorityMedium
}

func multiplierFor(disposition types.Disposition) float64 {
	switch disposition {
	case types.DispositionEngaged:
		return engagedMultiplier
	case types.DispositionMaybe:
		return maybeMultiplier
	case types.DispositionDisinterested:
		return disinterestedMultiplier
	default:
		return unsetMultiplier
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
