package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/lead-agent/internal/types"
)

// MemoryStore is an in-memory Store used as the test double and for
// ephemeral demo runs. A single mutex guards all maps; operations are
// cheap enough that finer-grained locking buys nothing here.
type MemoryStore struct {
	mu             sync.RWMutex
	leads          map[string]types.Lead
	leadsByEmail   map[string]string
	qualifications map[string]types.QualificationRecord
	events         map[string][]types.InteractionEvent
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:          make(map[string]types.Lead),
		leadsByEmail:   make(map[string]string),
		qualifications: make(map[string]types.QualificationRecord),
		events:         make(map[string][]types.InteractionEvent),
	}
}

// CreateLead stores a new lead record. The email acts as a unique key, same
// as the UNIQUE constraint in the database backends.
func (s *MemoryStore) CreateLead(_ context.Context, lead *types.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *lead
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Email = strings.ToLower(strings.TrimSpace(stored.Email))

	if _, taken := s.leadsByEmail[stored.Email]; taken {
		return fmt.Errorf("lead %s: %w", stored.Email, ErrDuplicateEmail)
	}

	s.leads[stored.LeadID] = stored
	s.leadsByEmail[stored.Email] = stored.LeadID
	return nil
}

// GetLead returns a lead by id, or (nil, nil) if unknown.
func (s *MemoryStore) GetLead(_ context.Context, leadID string) (*types.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return nil, nil
	}
	return &lead, nil
}

// FindLeadByEmail returns the lead with the given address, or (nil, nil).
// The lookup is case-insensitive.
func (s *MemoryStore) FindLeadByEmail(_ context.Context, email string) (*types.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leadID, ok := s.leadsByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	lead := s.leads[leadID]
	return &lead, nil
}

// ListLeads returns all leads ordered by most recently updated first.
func (s *MemoryStore) ListLeads(_ context.Context) ([]types.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]types.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].UpdatedAt.After(leads[j].UpdatedAt)
	})
	return leads, nil
}

// UpsertQualification merges update into the lead's record. Creating a
// record requires the four required fields, otherwise a ValidationError is
// returned and nothing is written.
func (s *MemoryStore) UpsertQualification(_ context.Context, leadID string, update types.QualificationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record, exists := s.qualifications[leadID]
	if !exists {
		if missing := requiredMissing(update); len(missing) > 0 {
			return &ValidationError{LeadID: leadID, Missing: missing}
		}
		record = types.QualificationRecord{LeadID: leadID, CreatedAt: now}
	}

	applyUpdate(&record, update)
	record.UpdatedAt = now
	s.qualifications[leadID] = record
	return nil
}

// GetQualification returns the lead's record, or (nil, nil) if none exists.
func (s *MemoryStore) GetQualification(_ context.Context, leadID string) (*types.QualificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.qualifications[leadID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// ListQualifications returns all records ordered by most recently updated.
func (s *MemoryStore) ListQualifications(_ context.Context) ([]types.QualificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]types.QualificationRecord, 0, len(s.qualifications))
	for _, record := range s.qualifications {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

// AppendInteraction appends an event to the lead's timeline.
func (s *MemoryStore) AppendInteraction(_ context.Context, leadID, eventType string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := types.InteractionEvent{
		LeadID:    leadID,
		EventType: eventType,
		Payload:   clonePayload(payload),
		Sequence:  int64(len(s.events[leadID]) + 1),
		Timestamp: time.Now().UTC(),
	}
	s.events[leadID] = append(s.events[leadID], event)
	return nil
}

// History returns the lead's events oldest first. The returned slice and
// its payloads are copies; later appends never mutate earlier results.
func (s *MemoryStore) History(_ context.Context, leadID string) ([]types.InteractionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[leadID]
	events := make([]types.InteractionEvent, len(stored))
	for i, event := range stored {
		events[i] = event
		events[i].Payload = clonePayload(event.Payload)
	}
	return events, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	clone := make(map[string]any, len(payload))
	for k, v := range payload {
		clone[k] = v
	}
	return clone
}
