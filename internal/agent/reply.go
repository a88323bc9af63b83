package agent

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/lead-agent/internal/identity"
	"github.com/jonathan/lead-agent/internal/intake"
	"github.com/jonathan/lead-agent/internal/llm"
	"github.com/jonathan/lead-agent/internal/parsing"
	"github.com/jonathan/lead-agent/internal/prompts"
	"github.com/jonathan/lead-agent/internal/scoring"
	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

// ReplyAnalyzer analyzes inbound replies from known leads and folds the
// outcome back into the lead's qualification record and timeline.
type ReplyAnalyzer struct {
	client   llm.Client
	store    store.Store
	resolver *identity.Resolver
	validate *validator.Validate
}

// NewReplyAnalyzer creates a reply analyzer over the given LLM client and
// store.
func NewReplyAnalyzer(client llm.Client, s store.Store) *ReplyAnalyzer {
	return &ReplyAnalyzer{
		client:   client,
		store:    s,
		resolver: identity.NewResolver(s),
		validate: validator.New(),
	}
}

// Analyze classifies a reply, rescores the lead, and persists both the
// updated record and a reply_analyzed audit event. When the LLM is
// unavailable it degrades to a deterministic keyword analysis instead of
// failing.
func (a *ReplyAnalyzer) Analyze(ctx context.Context, reply *types.ReplyInput) (*Result, error) {
	if err := a.validate.Struct(reply); err != nil {
		return nil, &InputError{Field: "reply", Message: err.Error()}
	}

	leadID, err := a.resolver.ResolveOrCreate(ctx, reply.SenderEmail, types.SeedAttributes{Source: "reply"})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lead identity: %w", err)
	}

	lead, err := a.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	replyText := intake.CleanBody(reply.ReplyText)
	signals := scoring.ExtractSignals(replyText)

	var analysis *parsing.ReplyAnalysis
	var fallback bool
	var fallbackReason string

	// Replies are short and the output is a constrained label set, so the
	// lite tier is enough here.
	prompt := buildReplyPrompt(lead, reply, replyText)
	responseText, llmErr := a.client.GenerateContent(ctx, prompt, llm.TierLite)
	if llmErr != nil {
		// Keyword analysis keeps the pipeline moving without the model.
		analysis = keywordAnalysis(replyText)
		fallback = true
		fallbackReason = (&APICallError{Message: "reply analysis failed", Cause: llmErr}).Error()
	} else {
		analysis = parsing.ParseReply(responseText)
	}

	leadScore, priority := scoring.Score(analysis.Disposition, analysis.Sentiment, analysis.Urgency, analysis.Confidence)

	update := types.QualificationUpdate{
		Priority:              &priority,
		LeadScore:             &leadScore,
		Reasoning:             &analysis.Reasoning,
		NextAction:            &analysis.NextAction,
		Disposition:           &analysis.Disposition,
		DispositionConfidence: &analysis.Confidence,
		Sentiment:             &analysis.Sentiment,
		Urgency:               &analysis.Urgency,
		FollowUpTiming:        &analysis.FollowUpTiming,
		Intent:                &analysis.Intent,
		LastReplyAnalysis:     &analysis.Reasoning,
	}
	if err := a.store.UpsertQualification(ctx, leadID, update); err != nil {
		return nil, fmt.Errorf("failed to persist reply analysis: %w", err)
	}

	degraded := degradedFields(analysis.Defaulted)
	payload := map[string]any{
		"disposition":      string(analysis.Disposition),
		"confidence":       analysis.Confidence,
		"lead_score":       leadScore,
		"priority":         string(priority),
		"sentiment":        string(analysis.Sentiment),
		"urgency":          string(analysis.Urgency),
		"intent":           analysis.Intent,
		"follow_up_timing": string(analysis.FollowUpTiming),
		"reasoning":        analysis.Reasoning,
		"next_action":      analysis.NextAction,
		"signals": map[string]any{
			"questions_asked":  signals.QuestionsAsked,
			"budget_mentioned": signals.BudgetMentioned,
			"engagement_score": scoring.EngagementScore(signals),
		},
	}
	if len(degraded) > 0 {
		payload["degraded_fields"] = degraded
	}
	if fallback {
		payload["error"] = fallbackReason
	}
	if err := appendEvent(ctx, a.store, leadID, types.EventReplyAnalyzed, payload); err != nil {
		return nil, err
	}

	record, err := a.store.GetQualification(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload qualification: %w", err)
	}

	return &Result{
		LeadID:         leadID,
		Record:         record,
		DegradedFields: degraded,
		Fallback:       fallback,
		FallbackReason: fallbackReason,
	}, nil
}

// buildReplyPrompt renders the reply-analysis prompt with lead context.
func buildReplyPrompt(lead *types.Lead, reply *types.ReplyInput, replyText string) string {
	name, company := "", ""
	if lead != nil {
		name = lead.Name
		company = lead.Company
	}

	return prompts.Format(prompts.MustGet("agents.json", "analyze-reply"), map[string]string{
		"Name":     name,
		"Company":  company,
		"Interest": "",
		"Subject":  reply.ReplySubject,
		"Reply":    replyText,
	})
}

// keywordAnalysis derives a complete reply analysis from intent keywords
// alone. It mirrors the enum mappings the model is prompted to produce, so
// the fallback stays comparable with normal runs.
func keywordAnalysis(replyText string) *parsing.ReplyAnalysis {
	intent := scoring.ClassifyIntent(replyText)
	confidence := scoring.IntentConfidence(intent)

	analysis := &parsing.ReplyAnalysis{
		Confidence:     confidence,
		Intent:         intent,
		Reasoning:      fmt.Sprintf("Keyword analysis classified the reply as %s", intent),
		NextAction:     fallbackNextAction,
		FollowUpTiming: types.FollowUpOneWeek,
		Defaulted:      map[string]bool{},
	}

	switch intent {
	case scoring.IntentInterested, scoring.IntentMeetingRequest:
		analysis.Disposition = types.DispositionEngaged
		analysis.Sentiment = types.SentimentPositive
		analysis.Urgency = types.UrgencyMedium
		analysis.FollowUpTiming = types.FollowUpImmediate
	case scoring.IntentInfoRequest:
		analysis.Disposition = types.DispositionMaybe
		analysis.Sentiment = types.SentimentNeutral
		analysis.Urgency = types.UrgencyMedium
	case scoring.IntentObjection:
		analysis.Disposition = types.DispositionMaybe
		analysis.Sentiment = types.SentimentNegative
		analysis.Urgency = types.UrgencyLow
		analysis.FollowUpTiming = types.FollowUpOneMonth
	case scoring.IntentNotInterested:
		analysis.Disposition = types.DispositionDisinterested
		analysis.Sentiment = types.SentimentNegative
		analysis.Urgency = types.UrgencyLow
		analysis.FollowUpTiming = types.FollowUpNone
	default:
		analysis.Disposition = types.DispositionUnset
		analysis.Sentiment = types.SentimentNeutral
		analysis.Urgency = types.UrgencyNotSpecified
	}

	return analysis
}
