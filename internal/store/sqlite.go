package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jonathan/lead-agent/internal/types"
)

// SQLiteStore is the embedded persistence backend. It keeps the whole CRM
// in a single local database file that survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteSchema creates the base tables. Optional qualification columns added
// after first release are handled by migrateQualificationColumns, so this
// statement only ever grows, never changes existing columns.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
	lead_id    TEXT PRIMARY KEY,
	name       TEXT,
	company    TEXT,
	email      TEXT UNIQUE NOT NULL,
	status     TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS lead_qualifications (
	lead_id     TEXT PRIMARY KEY,
	priority    TEXT NOT NULL,
	lead_score  INTEGER NOT NULL,
	reasoning   TEXT NOT NULL,
	next_action TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	lead_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload    TEXT NOT NULL,
	sequence   INTEGER NOT NULL,
	timestamp  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_lead ON interactions (lead_id, timestamp, sequence);
`

// optionalQualificationColumns lists the extensible field set. Databases
// created before a column existed get it added on open; rows written before
// then read back as the field's default.
var optionalQualificationColumns = []struct {
	name string
	typ  string
}{
	{"disposition", "TEXT"},
	{"disposition_confidence", "INTEGER"},
	{"sentiment", "TEXT"},
	{"urgency", "TEXT"},
	{"follow_up_timing", "TEXT"},
	{"intent", "TEXT"},
	{"last_reply_analysis", "TEXT"},
}

// OpenSQLite opens (or creates) the database at path and applies schema
// migrations. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writes; a single connection avoids SQLITE_BUSY
	// churn under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := migrateQualificationColumns(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// migrateQualificationColumns adds any optional columns missing from an
// older database file.
func migrateQualificationColumns(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(lead_qualifications)`)
	if err != nil {
		return fmt.Errorf("failed to inspect qualification schema: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read column info: %w", err)
	}

	for _, col := range optionalQualificationColumns {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE lead_qualifications ADD COLUMN %s %s", col.name, col.typ)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
	}
	return nil
}

// CreateLead stores a new lead record.
func (s *SQLiteStore) CreateLead(ctx context.Context, lead *types.Lead) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (lead_id, name, company, email, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lead.LeadID, lead.Name, lead.Company,
		strings.ToLower(strings.TrimSpace(lead.Email)), lead.Status, now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("lead %s: %w", lead.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetLead returns a lead by id, or (nil, nil) if unknown.
func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*types.Lead, error) {
	return s.scanLead(s.db.QueryRowContext(ctx,
		`SELECT lead_id, name, company, email, status, created_at, updated_at
		 FROM leads WHERE lead_id = ?`, leadID))
}

// FindLeadByEmail returns the lead with the given address, or (nil, nil).
// Addresses are stored lower-cased, so the lookup is case-insensitive.
func (s *SQLiteStore) FindLeadByEmail(ctx context.Context, email string) (*types.Lead, error) {
	return s.scanLead(s.db.QueryRowContext(ctx,
		`SELECT lead_id, name, company, email, status, created_at, updated_at
		 FROM leads WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *SQLiteStore) scanLead(row *sql.Row) (*types.Lead, error) {
	var lead types.Lead
	var name, company, status sql.NullString
	err := row.Scan(&lead.LeadID, &name, &company, &lead.Email, &status, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	lead.Name = name.String
	lead.Company = company.String
	lead.Status = status.String
	return &lead, nil
}

// ListLeads returns all leads ordered by most recently updated first.
func (s *SQLiteStore) ListLeads(ctx context.Context) ([]types.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead_id, name, company, email, status, created_at, updated_at
		 FROM leads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []types.Lead
	for rows.Next() {
		var lead types.Lead
		var name, company, status sql.NullString
		if err := rows.Scan(&lead.LeadID, &name, &company, &lead.Email, &status, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		lead.Name = name.String
		lead.Company = company.String
		lead.Status = status.String
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// qualificationColumns is the full select list, base plus optional columns.
const qualificationColumns = `lead_id, priority, lead_score, reasoning, next_action,
	disposition, disposition_confidence, sentiment, urgency, follow_up_timing,
	intent, last_reply_analysis, created_at, updated_at`

// UpsertQualification merges update into the lead's record inside a
// transaction, so a concurrent reader never observes a partial merge.
// Creating a record requires the four required fields.
func (s *SQLiteStore) UpsertQualification(ctx context.Context, leadID string, update types.QualificationUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	record, err := scanQualification(tx.QueryRowContext(ctx,
		`SELECT `+qualificationColumns+` FROM lead_qualifications WHERE lead_id = ?`, leadID))
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

		_, err = tx.ExecContext(ctx,
			`INSERT INTO lead_qualifications (`+qualificationColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.LeadID, record.Priority, record.LeadScore, record.Reasoning, record.NextAction,
			nullString(string(record.Disposition)), nullInt(record.DispositionConfidence),
			nullString(string(record.Sentiment)), nullString(string(record.Urgency)),
			nullString(string(record.FollowUpTiming)), nullString(record.Intent),
			nullString(record.LastReplyAnalysis), record.CreatedAt, record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert qualification: %w", err)
		}
	} else {
		applyUpdate(record, update)
		record.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`UPDATE lead_qualifications SET priority = ?, lead_score = ?, reasoning = ?,
			 next_action = ?, disposition = ?, disposition_confidence = ?, sentiment = ?,
			 urgency = ?, follow_up_timing = ?, intent = ?, last_reply_analysis = ?,
			 updated_at = ? WHERE lead_id = ?`,
			record.Priority, record.LeadScore, record.Reasoning, record.NextAction,
			nullString(string(record.Disposition)), nullInt(record.DispositionConfidence),
			nullString(string(record.Sentiment)), nullString(string(record.Urgency)),
			nullString(string(record.FollowUpTiming)), nullString(record.Intent),
			nullString(record.LastReplyAnalysis), record.UpdatedAt, leadID,
		)
		if err != nil {
			return fmt.Errorf("failed to update qualification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// GetQualification returns the lead's record, or (nil, nil) if none exists.
func (s *SQLiteStore) GetQualification(ctx context.Context, leadID string) (*types.QualificationRecord, error) {
	return scanQualification(s.db.QueryRowContext(ctx,
		`SELECT `+qualificationColumns+` FROM lead_qualifications WHERE lead_id = ?`, leadID))
}

// ListQualifications returns all records ordered by most recently updated.
func (s *SQLiteStore) ListQualifications(ctx context.Context) ([]types.QualificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+qualificationColumns+` FROM lead_qualifications ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	defer rows.Close()

	var records []types.QualificationRecord
	for rows.Next() {
		record, err := scanQualificationRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQualification(row *sql.Row) (*types.QualificationRecord, error) {
	record, err := scanQualificationRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func scanQualificationRow(row rowScanner) (*types.QualificationRecord, error) {
	var record types.QualificationRecord
	var disposition, sentiment, urgency, followUp, intent, lastReply sql.NullString
	var confidence sql.NullInt64

	err := row.Scan(&record.LeadID, &record.Priority, &record.LeadScore, &record.Reasoning,
		&record.NextAction, &disposition, &confidence, &sentiment, &urgency, &followUp,
		&intent, &lastReply, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan qualification: %w", err)
	}

	record.Disposition = types.Disposition(disposition.String)
	record.DispositionConfidence = int(confidence.Int64)
	record.Sentiment = types.Sentiment(sentiment.String)
	record.Urgency = types.Urgency(urgency.String)
	record.FollowUpTiming = types.FollowUpTiming(followUp.String)
	record.Intent = intent.String
	record.LastReplyAnalysis = lastReply.String
	return &record, nil
}

// AppendInteraction appends an event to the lead's timeline. The per-lead
// sequence is allocated inside the insert transaction, so concurrent appends
// for the same lead never collide.
func (s *SQLiteStore) AppendInteraction(ctx context.Context, leadID, eventType string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM interactions WHERE lead_id = ?`, leadID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interactions (lead_id, event_type, payload, sequence, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		leadID, eventType, string(payloadJSON), seq, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

// History returns the lead's events oldest first.
func (s *SQLiteStore) History(ctx context.Context, leadID string) ([]types.InteractionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead_id, event_type, payload, sequence, timestamp
		 FROM interactions WHERE lead_id = ? ORDER BY timestamp ASC, sequence ASC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var events []types.InteractionEvent
	for rows.Next() {
		var event types.InteractionEvent
		var payloadJSON string
		if err := rows.Scan(&event.LeadID, &event.EventType, &payloadJSON, &event.Sequence, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &event.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
