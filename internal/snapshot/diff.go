// Package snapshot produces comparable "before" and "after" views of a
// lead's CRM state for display and audit. The before view is synthetic and
// never read from the store; the after view merges the current record with
// the most recent event payload of each type. Nothing here writes.
package snapshot

import (
	"context"
	"fmt"

	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

// View is one side of a before/after comparison: the fields a CRM screen
// renders for a lead at a point in time.
type View struct {
	Name         string                    `json:"name"`
	Company      string                    `json:"company"`
	LeadScore    int                       `json:"lead_score"`
	Priority     string                    `json:"priority"`
	Disposition  string                    `json:"disposition"`
	NextAction   string                    `json:"next_action"`
	Reasoning    string                    `json:"reasoning,omitempty"`
	EventDetails map[string]map[string]any `json:"event_details,omitempty"`
}

// Differencer builds before/after views from store and log reads.
type Differencer struct {
	store store.Store
}

// NewDifferencer creates a differencer over the given store.
func NewDifferencer(s store.Store) *Differencer {
	return &Differencer{store: s}
}

// BeforeAfter returns the unqualified baseline view and the current derived
// view for a lead.
func (d *Differencer) BeforeAfter(ctx context.Context, leadID string) (before, after *View, err error) {
	lead, err := d.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lead: %w", err)
	}
	if lead == nil {
		return nil, nil, fmt.Errorf("unknown lead %s", leadID)
	}

	before = baselineView(lead)

	record, err := d.store.GetQualification(ctx, leadID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load qualification: %w", err)
	}

	events, err := d.store.History(ctx, leadID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}

	after = derivedView(lead, record, events)
	return before, after, nil
}

// Field values rendered before any qualification record exists. Both sides
// of the comparison start from these, so a never-qualified lead diffs clean.
const (
	baselinePriority    = "unqualified"
	baselineDisposition = "awaiting_reply"
	baselineNextAction  = "Needs qualification"
)

// baselineView is the fixed pre-qualification state, derived only from seed
// attributes.
func baselineView(lead *types.Lead) *View {
	return &View{
		Name:        lead.Name,
		Company:     lead.Company,
		LeadScore:   0,
		Priority:    baselinePriority,
		Disposition: baselineDisposition,
		NextAction:  baselineNextAction,
	}
}

// derivedView merges the current record with the latest payload per event
// type. History is oldest-first, so iterating forward leaves the most
// recent payload of each type in place.
func derivedView(lead *types.Lead, record *types.QualificationRecord, events []types.InteractionEvent) *View {
	view := &View{
		Name:        lead.Name,
		Company:     lead.Company,
		Priority:    baselinePriority,
		Disposition: baselineDisposition,
		NextAction:  baselineNextAction,
	}

	if record != nil {
		view.LeadScore = record.LeadScore
		view.Priority = string(record.Priority)
		view.NextAction = record.NextAction
		view.Reasoning = record.Reasoning
		if record.Disposition != "" {
			view.Disposition = string(record.Disposition)
		}
	}

	if len(events) > 0 {
		view.EventDetails = make(map[string]map[string]any)
		for _, event := range events {
			view.EventDetails[event.EventType] = event.Payload
		}
	}

	return view
}
