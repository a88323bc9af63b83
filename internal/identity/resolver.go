// Package identity resolves external contact addresses to stable internal
// lead identifiers. The same address always resolves to the same lead, even
// across concurrent first contacts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

// Defaults written into the initial qualification record of a brand-new
// lead, before any agent has looked at it. InitialReasoning is exported so
// callers can recognize a never-qualified record.
const (
	InitialReasoning  = "initial contact"
	initialNextAction = "pending"
	initialLeadScore  = 50
)

// Resolver maps external email addresses onto lead ids, creating the lead
// and its seed qualification record on first sight.
type Resolver struct {
	store store.Store
}

// Per-address locks are process-wide, not per-resolver, so independent
// resolvers over the same store still serialize first contact for an
// address. Races the locks cannot see (another process, another host) are
// caught by the store's unique email constraint instead.
var (
	locksMu      sync.Mutex
	addressLocks = make(map[string]*sync.Mutex)
)

// NewResolver creates a resolver over the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// NormalizeAddress canonicalizes an external contact address for identity
// comparison.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ResolveOrCreate returns the lead id for the given address, allocating a
// new lead with seed attributes on first sight. Repeat calls with the same
// address (any casing) return the same id and never overwrite attributes.
//
// Creation for a given address is serialized through a per-address lock, so
// two simultaneous first contacts cannot allocate two ids.
func (r *Resolver) ResolveOrCreate(ctx context.Context, address string, seed types.SeedAttributes) (string, error) {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return "", fmt.Errorf("external address is required")
	}

	lock := addressLock(normalized)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.store.FindLeadByEmail(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("failed to look up lead by address: %w", err)
	}
	if existing != nil {
		return existing.LeadID, nil
	}

	leadID := uuid.New().String()
	lead := &types.Lead{
		LeadID:  leadID,
		Name:    seed.Name,
		Company: seed.Company,
		Email:   normalized,
		Status:  "new",
	}
	if err := r.store.CreateLead(ctx, lead); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			// Lost a creation race the local lock could not see. The
			// winner's id is authoritative; it also writes the seed record.
			winner, lookupErr := r.store.FindLeadByEmail(ctx, normalized)
			if lookupErr != nil {
				return "", fmt.Errorf("failed to re-read lead after duplicate: %w", lookupErr)
			}
			if winner != nil {
				return winner.LeadID, nil
			}
		}
		return "", fmt.Errorf("failed to create lead: %w", err)
	}

	// Seed the required fields so the record is well-formed before the
	// first real qualification lands.
	priority := types.PriorityMedium
	score := initialLeadScore
	reasoning := InitialReasoning
	nextAction := initialNextAction
	update := types.QualificationUpdate{
		Priority:   &priority,
		LeadScore:  &score,
		Reasoning:  &reasoning,
		NextAction: &nextAction,
	}
	if err := r.store.UpsertQualification(ctx, leadID, update); err != nil {
		return "", fmt.Errorf("failed to seed qualification: %w", err)
	}

	return leadID, nil
}

// addressLock returns the mutex serializing resolution for one address.
func addressLock(address string) *sync.Mutex {
	locksMu.Lock()
	defer locksMu.Unlock()

	lock, ok := addressLocks[address]
	if !ok {
		lock = &sync.Mutex{}
		addressLocks[address] = lock
	}
	return lock
}
