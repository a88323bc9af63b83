// Package agent orchestrates lead qualification and reply analysis: prompt
// construction, the LLM call, fail-soft parsing, score derivation, identity
// resolution and persistence. LLM failures degrade to a documented fallback
// record; the required-field invariant holds on every path.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/lead-agent/internal/identity"
	"github.com/jonathan/lead-agent/internal/intake"
	"github.com/jonathan/lead-agent/internal/llm"
	"github.com/jonathan/lead-agent/internal/parsing"
	"github.com/jonathan/lead-agent/internal/prompts"
	"github.com/jonathan/lead-agent/internal/schemas"
	"github.com/jonathan/lead-agent/internal/scoring"
	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

// Fallback values written when the LLM collaborator is unavailable.
const (
	fallbackNextAction = "Manual review required"
)

// Result is the outcome of a qualification or reply analysis run.
type Result struct {
	LeadID string
	Record *types.QualificationRecord

	// DegradedFields names parsed fields that fell back to defaults.
	DegradedFields []string
	// Fallback is true when the LLM call failed and the documented
	// fallback record was stored instead.
	Fallback bool
	// FallbackReason carries the underlying failure when Fallback is set.
	FallbackReason string
}

// Qualifier scores inbound contacts and persists the outcome.
type Qualifier struct {
	client   llm.Client
	store    store.Store
	resolver *identity.Resolver
	validate *validator.Validate
}

// NewQualifier creates a qualifier over the given LLM client and store.
func NewQualifier(client llm.Client, s store.Store) *Qualifier {
	return &Qualifier{
		client:   client,
		store:    s,
		resolver: identity.NewResolver(s),
		validate: validator.New(),
	}
}

// Qualify analyzes an inbound contact, derives its score and priority, and
// persists the qualification record plus an audit event. The returned
// Result always carries a complete record.
func (q *Qualifier) Qualify(ctx context.Context, input *types.LeadInput) (*Result, error) {
	if err := q.validate.Struct(input); err != nil {
		return nil, &InputError{Field: "email", Message: err.Error()}
	}

	leadID, err := q.resolver.ResolveOrCreate(ctx, input.Email, input.Seed())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lead identity: %w", err)
	}

	previous, err := q.store.GetQualification(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous qualification: %w", err)
	}

	prompt := buildQualificationPrompt(input, previous)

	responseText, llmErr := q.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if llmErr != nil {
		return q.storeFallback(ctx, leadID, &APICallError{Message: "qualification failed", Cause: llmErr})
	}

	parsed := parsing.ParseQualification(responseText)
	leadScore, priority := scoring.Score(parsed.Disposition, parsed.Sentiment, parsed.Urgency, parsed.Confidence)

	update := types.QualificationUpdate{
		Priority:              &priority,
		LeadScore:             &leadScore,
		Reasoning:             &parsed.Reasoning,
		NextAction:            &parsed.NextAction,
		Disposition:           &parsed.Disposition,
		DispositionConfidence: &parsed.Confidence,
		Sentiment:             &parsed.Sentiment,
		Urgency:               &parsed.Urgency,
	}
	if err := q.store.UpsertQualification(ctx, leadID, update); err != nil {
		return nil, fmt.Errorf("failed to persist qualification: %w", err)
	}

	degraded := degradedFields(parsed.Defaulted)
	payload := map[string]any{
		"priority":               string(priority),
		"lead_score":             leadScore,
		"reasoning":              parsed.Reasoning,
		"next_action":            parsed.NextAction,
		"disposition":            string(parsed.Disposition),
		"disposition_confidence": parsed.Confidence,
		"sentiment":              string(parsed.Sentiment),
		"urgency":                string(parsed.Urgency),
	}
	if len(degraded) > 0 {
		payload["degraded_fields"] = degraded
	}
	if err := appendEvent(ctx, q.store, leadID, types.EventQualification, payload); err != nil {
		return nil, err
	}

	record, err := q.store.GetQualification(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload qualification: %w", err)
	}

	return &Result{LeadID: leadID, Record: record, DegradedFields: degraded}, nil
}

// storeFallback persists the documented fallback record after an LLM
// failure. The call still succeeds from the caller's perspective; the
// degradation is reported through the Result.
func (q *Qualifier) storeFallback(ctx context.Context, leadID string, cause *APICallError) (*Result, error) {
	priority := types.PriorityMedium
	score := parsing.DefaultLeadScore
	reasoning := "Qualification unavailable; manual review needed"
	nextAction := fallbackNextAction
	disposition := types.DispositionUnset
	confidence := 0
	sentiment := types.SentimentNeutral
	urgency := types.UrgencyNotSpecified

	update := types.QualificationUpdate{
		Priority:              &priority,
		LeadScore:             &score,
		Reasoning:             &reasoning,
		NextAction:            &nextAction,
		Disposition:           &disposition,
		DispositionConfidence: &confidence,
		Sentiment:             &sentiment,
		Urgency:               &urgency,
	}
	if err := q.store.UpsertQualification(ctx, leadID, update); err != nil {
		return nil, fmt.Errorf("failed to persist fallback qualification: %w", err)
	}

	payload := map[string]any{
		"priority":               string(priority),
		"lead_score":             score,
		"reasoning":              reasoning,
		"next_action":            nextAction,
		"disposition":            string(disposition),
		"disposition_confidence": confidence,
		"sentiment":              string(sentiment),
		"urgency":                string(urgency),
		"error":                  cause.Error(),
	}
	if err := appendEvent(ctx, q.store, leadID, types.EventQualification, payload); err != nil {
		return nil, err
	}

	record, err := q.store.GetQualification(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload qualification: %w", err)
	}

	return &Result{
		LeadID:         leadID,
		Record:         record,
		Fallback:       true,
		FallbackReason: cause.Error(),
	}, nil
}

// appendEvent validates an event payload against its schema and appends it
// to the lead's timeline.
func appendEvent(ctx context.Context, s store.Store, leadID, eventType string, payload map[string]any) error {
	if err := schemas.ValidatePayload(eventType, payload); err != nil {
		return fmt.Errorf("refusing to log malformed event: %w", err)
	}
	if err := s.AppendInteraction(ctx, leadID, eventType, payload); err != nil {
		return fmt.Errorf("failed to append %s event: %w", eventType, err)
	}
	return nil
}

// buildQualificationPrompt renders the qualification prompt, including the
// previous-qualification context block when one exists.
func buildQualificationPrompt(input *types.LeadInput, previous *types.QualificationRecord) string {
	body := input.EmailBody
	if body == "" {
		body = input.Interest
	}
	body = intake.CleanBody(body)

	contextBlock := ""
	if previous != nil && previous.Reasoning != identity.InitialReasoning {
		contextBlock = prompts.Format(prompts.MustGet("agents.json", "qualify-context"), map[string]string{
			"PrevPriority":  string(previous.Priority),
			"PrevScore":     strconv.Itoa(previous.LeadScore),
			"PrevReasoning": previous.Reasoning,
		})
	}

	return prompts.Format(prompts.MustGet("agents.json", "qualify-lead"), map[string]string{
		"Name":    input.Name,
		"Company": input.Company,
		"Role":    input.Role,
		"Email":   input.Email,
		"Subject": input.EmailSubject,
		"Message": body,
		"Context": contextBlock,
	})
}

// degradedFields flattens a Defaulted map into a sorted field list for
// event payloads.
func degradedFields(defaulted map[string]bool) []string {
	if len(defaulted) == 0 {
		return nil
	}
	fields := make([]string, 0, len(defaulted))
	for field := range defaulted {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
