package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/lead-agent/internal/types"
)

// PostgresStore is the shared-deployment backend, backed by a pgx pool.
// The schema mirrors the SQLite layout.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS leads (
	lead_id    TEXT PRIMARY KEY,
	name       TEXT,
	company    TEXT,
	email      TEXT UNIQUE NOT NULL,
	status     TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS lead_qualifications (
	lead_id                TEXT PRIMARY KEY,
	priority               TEXT NOT NULL,
	lead_score             INTEGER NOT NULL,
	reasoning              TEXT NOT NULL,
	next_action            TEXT NOT NULL,
	disposition            TEXT,
	disposition_confidence INTEGER,
	sentiment              TEXT,
	urgency                TEXT,
	follow_up_timing       TEXT,
	intent                 TEXT,
	last_reply_analysis    TEXT,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	id         BIGSERIAL PRIMARY KEY,
	lead_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload    JSONB NOT NULL,
	sequence   BIGINT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_lead ON interactions (lead_id, timestamp, sequence);
`

// ConnectPostgres establishes a connection pool, verifies it, and ensures
// the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// CreateLead stores a new lead record. The unique constraint on email turns
// a lost cross-process creation race into ErrDuplicateEmail, never a silent
// split identity.
func (s *PostgresStore) CreateLead(ctx context.Context, lead *types.Lead) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (lead_id, name, company, email, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		lead.LeadID, lead.Name, lead.Company,
		strings.ToLower(strings.TrimSpace(lead.Email)), lead.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("lead %s: %w", lead.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetLead returns a lead by id, or (nil, nil) if unknown.
func (s *PostgresStore) GetLead(ctx context.Context, leadID string) (*types.Lead, error) {
	return s.scanLeadRow(s.pool.QueryRow(ctx,
		`SELECT lead_id, COALESCE(name, ''), COALESCE(company, ''), email,
		        COALESCE(status, ''), created_at, updated_at
		 FROM leads WHERE lead_id = $1`, leadID))
}

// FindLeadByEmail returns the lead with the given address, or (nil, nil).
func (s *PostgresStore) FindLeadByEmail(ctx context.Context, email string) (*types.Lead, error) {
	return s.scanLeadRow(s.pool.QueryRow(ctx,
		`SELECT lead_id, COALESCE(name, ''), COALESCE(company, ''), email,
		        COALESCE(status, ''), created_at, updated_at
		 FROM leads WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *PostgresStore) scanLeadRow(row pgx.Row) (*types.Lead, error) {
	var lead types.Lead
	err := row.Scan(&lead.LeadID, &lead.Name, &lead.Company, &lead.Email,
		&lead.Status, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// ListLeads returns all leads ordered by most recently updated first.
func (s *PostgresStore) ListLeads(ctx context.Context) ([]types.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lead_id, COALESCE(name, ''), COALESCE(company, ''), email,
		        COALESCE(status, ''), created_at, updated_at
		 FROM leads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []types.Lead
	for rows.Next() {
		var lead types.Lead
		if err := rows.Scan(&lead.LeadID, &lead.Name, &lead.Company, &lead.Email,
			&lead.Status, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

const pgQualificationSelect = `SELECT lead_id, priority, lead_score, reasoning, next_action,
	COALESCE(disposition, ''), COALESCE(disposition_confidence, 0), COALESCE(sentiment, ''),
	COALESCE(urgency, ''), COALESCE(follow_up_timing, ''), COALESCE(intent, ''),
	COALESCE(last_reply_analysis, ''), created_at, updated_at
	FROM lead_qualifications`

// UpsertQualification merges update into the lead's record inside a
// transaction with the row locked, so concurrent writers serialize per lead
// and readers never observe a partial merge.
func (s *PostgresStore) UpsertQualification(ctx context.Context, leadID string, update types.QualificationUpdate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	record, err := scanPgQualification(tx.QueryRow(ctx,
		pgQualificationSelect+` WHERE lead_id = $1 FOR UPDATE`, leadID))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if record == nil {
		if missing := requiredMissing(update); len(missing) > 0 {
			return &ValidationError{LeadID: leadID, Missing: missing}
		}
		record = &types.QualificationRecord{LeadID: leadID, CreatedAt: now}
		applyUpdate(record, update)
		record.UpdatedAt = now

		_, err = tx.Exec(ctx,
			`INSERT INTO lead_qualifications
			 (lead_id, priority, lead_score, reasoning, next_action, disposition,
			  disposition_confidence, sentiment, urgency, follow_up_timing, intent,
			  last_reply_analysis, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0), NULLIF($8, ''),
			         NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14)`,
			record.LeadID, record.Priority, record.LeadScore, record.Reasoning, record.NextAction,
			string(record.Disposition), record.DispositionConfidence, string(record.Sentiment),
			string(record.Urgency), string(record.FollowUpTiming), record.Intent,
			record.LastReplyAnalysis, record.CreatedAt, record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert qualification: %w", err)
		}
	} else {
		applyUpdate(record, update)
		record.UpdatedAt = now

		_, err = tx.Exec(ctx,
			`UPDATE lead_qualifications SET priority = $1, lead_score = $2, reasoning = $3,
			 next_action = $4, disposition = NULLIF($5, ''), disposition_confidence = NULLIF($6, 0),
			 sentiment = NULLIF($7, ''), urgency = NULLIF($8, ''), follow_up_timing = NULLIF($9, ''),
			 intent = NULLIF($10, ''), last_reply_analysis = NULLIF($11, ''), updated_at = $12
			 WHERE lead_id = $13`,
			record.Priority, record.LeadScore, record.Reasoning, record.NextAction,
			string(record.Disposition), record.DispositionConfidence, string(record.Sentiment),
			string(record.Urgency), string(record.FollowUpTiming), record.Intent,
			record.LastReplyAnalysis, record.UpdatedAt, leadID,
		)
		if err != nil {
			return fmt.Errorf("failed to update qualification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// GetQualification returns the lead's record, or (nil, nil) if none exists.
func (s *PostgresStore) GetQualification(ctx context.Context, leadID string) (*types.QualificationRecord, error) {
	return scanPgQualification(s.pool.QueryRow(ctx,
		pgQualificationSelect+` WHERE lead_id = $1`, leadID))
}

// ListQualifications returns all records ordered by most recently updated.
func (s *PostgresStore) ListQualifications(ctx context.Context) ([]types.QualificationRecord, error) {
	rows, err := s.pool.Query(ctx, pgQualificationSelect+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	defer rows.Close()

	var records []types.QualificationRecord
	for rows.Next() {
		record, err := scanPgQualificationValues(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanPgQualification(row pgx.Row) (*types.QualificationRecord, error) {
	record, err := scanPgQualificationValues(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func scanPgQualificationValues(row pgx.Row) (*types.QualificationRecord, error) {
	var record types.QualificationRecord
	var disposition, sentiment, urgency, followUp string

	err := row.Scan(&record.LeadID, &record.Priority, &record.LeadScore, &record.Reasoning,
		&record.NextAction, &disposition, &record.DispositionConfidence, &sentiment,
		&urgency, &followUp, &record.Intent, &record.LastReplyAnalysis,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan qualification: %w", err)
	}

	record.Disposition = types.Disposition(disposition)
	record.Sentiment = types.Sentiment(sentiment)
	record.Urgency = types.Urgency(urgency)
	record.FollowUpTiming = types.FollowUpTiming(followUp)
	return &record, nil
}

// AppendInteraction appends an event to the lead's timeline. The per-lead
// sequence comes from a MAX+1 inside the transaction with the previous rows
// locked, so concurrent appends for one lead serialize.
func (s *PostgresStore) AppendInteraction(ctx context.Context, leadID, eventType string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var seq int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM interactions WHERE lead_id = $1`, leadID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO interactions (lead_id, event_type, payload, sequence, timestamp)
		 VALUES ($1, $2, $3, $4, NOW())`,
		leadID, eventType, payloadJSON, seq,
	)
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

// History returns the lead's events oldest first.
func (s *PostgresStore) History(ctx context.Context, leadID string) ([]types.InteractionEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lead_id, event_type, payload, sequence, timestamp
		 FROM interactions WHERE lead_id = $1 ORDER BY timestamp ASC, sequence ASC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var events []types.InteractionEvent
	for rows.Next() {
		var event types.InteractionEvent
		var payloadJSON []byte
		if err := rows.Scan(&event.LeadID, &event.EventType, &payloadJSON, &event.Sequence, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		if err := json.Unmarshal(payloadJSON, &event.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
