package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-agent/internal/types"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_LeadLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	lead := &types.Lead{LeadID: "lead-1", Name: "Alice", Company: "Acme", Email: "Alice@Acme.com", Status: "new"}
	require.NoError(t, s.CreateLead(ctx, lead))

	got, err := s.GetLead(ctx, "lead-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice@acme.com", got.Email)
	assert.Equal(t, "Alice", got.Name)

	byEmail, err := s.FindLeadByEmail(ctx, "ALICE@acme.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "lead-1", byEmail.LeadID)

	missing, err := s.GetLead(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Duplicate address maps the unique constraint onto the sentinel
	dup := &types.Lead{LeadID: "lead-2", Email: "alice@acme.com"}
	assert.ErrorIs(t, s.CreateLead(ctx, dup), ErrDuplicateEmail)
}

func TestSQLiteStore_UpsertAndMerge(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	// Creation without required fields is rejected and writes nothing
	err := s.UpsertQualification(ctx, "lead-1", types.QualificationUpdate{LeadScore: ptr(40)})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Missing, "priority")

	record, err := s.GetQualification(ctx, "lead-1")
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, s.UpsertQualification(ctx, "lead-1", fullUpdate()))
	require.NoError(t, s.UpsertQualification(ctx, "lead-1", types.QualificationUpdate{
		Disposition:           ptr(types.DispositionEngaged),
		DispositionConfidence: ptr(90),
		Sentiment:             ptr(types.SentimentPositive),
	}))

	record, err = s.GetQualification(ctx, "lead-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.PriorityHigh, record.Priority)
	assert.Equal(t, 85, record.LeadScore)
	assert.Equal(t, types.DispositionEngaged, record.Disposition)
	assert.Equal(t, 90, record.DispositionConfidence)
	assert.Equal(t, types.SentimentPositive, record.Sentiment)
	assert.NoError(t, record.Validate())
}

func TestSQLiteStore_RecordSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leads.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.UpsertQualification(ctx, "lead-1", fullUpdate()))
	require.NoError(t, s.AppendInteraction(ctx, "lead-1", types.EventQualification, map[string]any{"lead_score": 85}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	record, err := s.GetQualification(ctx, "lead-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 85, record.LeadScore)

	events, err := s.History(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	// JSON round-trip turns numbers into float64
	assert.Equal(t, float64(85), events[0].Payload["lead_score"])
}

func TestSQLiteStore_MigratesOlderSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leads.db")

	// Simulate a database created before the optional columns existed
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE lead_qualifications (
			lead_id     TEXT PRIMARY KEY,
			priority    TEXT NOT NULL,
			lead_score  INTEGER NOT NULL,
			reasoning   TEXT NOT NULL,
			next_action TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		)`)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO lead_qualifications VALUES ('lead-1', 'high', 85, 'older row', 'call back', ?, ?)`,
		time.Now().UTC(), time.Now().UTC(),
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	// Pre-migration rows read back with optional fields at their defaults
	record, err := s.GetQualification(ctx, "lead-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.PriorityHigh, record.Priority)
	assert.Equal(t, "older row", record.Reasoning)
	assert.Equal(t, types.Disposition(""), record.Disposition)
	assert.Zero(t, record.DispositionConfidence)

	// And the new columns are writable after migration
	require.NoError(t, s.UpsertQualification(ctx, "lead-1", types.QualificationUpdate{
		Intent: ptr("meeting_request"),
	}))
	record, err = s.GetQualification(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "meeting_request", record.Intent)
	assert.Equal(t, "older row", record.Reasoning)
}

func TestSQLiteStore_HistoryOrderingAndImmutability(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	payload := map[string]any{"priority": "high"}
	require.NoError(t, s.AppendInteraction(ctx, "lead-1", types.EventQualification, payload))
	payload["priority"] = "low"
	require.NoError(t, s.AppendInteraction(ctx, "lead-1", types.EventReplyAnalyzed, map[string]any{"intent": "interested"}))

	events, err := s.History(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, "high", events[0].Payload["priority"])
	assert.Equal(t, int64(2), events[1].Sequence)
	assert.Equal(t, types.EventReplyAnalyzed, events[1].EventType)
}

func TestSQLiteStore_ConcurrentAppendsSameLead(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := s.AppendInteraction(ctx, "lead-1", types.EventEmailSent, map[string]any{"n": n})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	events, err := s.History(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, events, workers)

	seen := make(map[int64]bool, workers)
	for _, event := range events {
		assert.False(t, seen[event.Sequence], "duplicate sequence %d", event.Sequence)
		seen[event.Sequence] = true
	}
}
