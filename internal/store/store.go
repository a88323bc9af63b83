// Package store provides persistence for leads, qualification records and
// the append-only interaction log. Three backends implement the same
// contract: an in-memory store for tests and ephemeral runs, an embedded
// SQLite store, and a PostgreSQL store for shared deployments.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/lead-agent/internal/types"
)

// ErrDuplicateEmail reports a CreateLead whose address already belongs to
// another lead. Identity resolution treats it as losing a creation race and
// re-reads the winner instead of failing.
var ErrDuplicateEmail = errors.New("lead email already exists")

// Store is the persistence contract shared by all backends.
//
// Lookups return (nil, nil) when the entity does not exist; callers branch
// on the nil result rather than an error. Errors are reserved for validation
// failures and substrate problems.
type Store interface {
	// Lead identity
	CreateLead(ctx context.Context, lead *types.Lead) error
	GetLead(ctx context.Context, leadID string) (*types.Lead, error)
	FindLeadByEmail(ctx context.Context, email string) (*types.Lead, error)
	ListLeads(ctx context.Context) ([]types.Lead, error)

	// Qualification records. Upsert merges the partial update into the
	// existing record atomically per lead, refreshing updated_at. Creating
	// a record requires all four required fields in the update, otherwise
	// a ValidationError is returned and nothing is written.
	UpsertQualification(ctx context.Context, leadID string, update types.QualificationUpdate) error
	GetQualification(ctx context.Context, leadID string) (*types.QualificationRecord, error)
	ListQualifications(ctx context.Context) ([]types.QualificationRecord, error)

	// Interaction log. Append-only; History returns events oldest first.
	AppendInteraction(ctx context.Context, leadID, eventType string, payload map[string]any) error
	History(ctx context.Context, leadID string) ([]types.InteractionEvent, error)

	Close() error
}

// ValidationError reports an upsert that would create a record missing one
// or more required fields. The store rejects the write rather than persist
// an invalid record.
type ValidationError struct {
	LeadID  string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for lead %s: missing required fields %v", e.LeadID, e.Missing)
}

// requiredMissing names the required fields absent from an update that is
// about to create a new record.
func requiredMissing(update types.QualificationUpdate) []string {
	var missing []string
	if update.Priority == nil {
		missing = append(missing, "priority")
	}
	if update.LeadScore == nil {
		missing = append(missing, "lead_score")
	}
	if update.Reasoning == nil {
		missing = append(missing, "reasoning")
	}
	if update.NextAction == nil {
		missing = append(missing, "next_action")
	}
	return missing
}

// applyUpdate merges the non-nil fields of update into record.
func applyUpdate(record *types.QualificationRecord, update types.QualificationUpdate) {
	if update.Priority != nil {
		record.Priority = *update.Priority
	}
	if update.LeadScore != nil {
		record.LeadScore = *update.LeadScore
	}
	if update.Reasoning != nil {
		record.Reasoning = *update.Reasoning
	}
	if update.NextAction != nil {
		record.NextAction = *update.NextAction
	}
	if update.Disposition != nil {
		record.Disposition = *update.Disposition
	}
	if update.DispositionConfidence != nil {
		record.DispositionConfidence = *update.DispositionConfidence
	}
	if update.Sentiment != nil {
		record.Sentiment = *update.Sentiment
	}
	if update.Urgency != nil {
		record.Urgency = *update.Urgency
	}
	if update.FollowUpTiming != nil {
		record.FollowUpTiming = *update.FollowUpTiming
	}
	if update.Intent != nil {
		record.Intent = *update.Intent
	}
	if update.LastReplyAnalysis != nil {
		record.LastReplyAnalysis = *update.LastReplyAnalysis
	}
}
