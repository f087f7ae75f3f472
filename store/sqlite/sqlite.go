/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Persists payment batches, brigade members, and incidents. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

INTERFACES IMPLEMENTED:
  batch.Store: Payment batch persistence

KEY TABLES:
  payment_batches:        One row per pay run with status and date stamps
  members:                Brigade roster (seeded, read-only to the engine)
  incidents:              Response events with duration and risk level
  incident_participants:  (incident, member) pairs - the authoritative
                          eligibility list per incident

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The system is single-actor by
  design; the mutex only guards against accidental concurrent use.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/stipend.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - batch/store.go: Interface definition
  - batch/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/payroll"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ batch.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payment batches (pay runs)
	CREATE TABLE IF NOT EXISTS payment_batches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		created_date TEXT NOT NULL,
		confirmed_date TEXT,
		scheduled_payment_date TEXT,
		payment_date TEXT,
		description TEXT,
		total_amount INTEGER NOT NULL DEFAULT 0,
		member_count INTEGER NOT NULL DEFAULT 0,
		created_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_batches_status
		ON payment_batches(status);
	CREATE INDEX IF NOT EXISTS idx_batches_created
		ON payment_batches(created_date);

	-- Brigade roster
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rank TEXT NOT NULL,
		years_of_service INTEGER NOT NULL DEFAULT 0,
		join_date TEXT NOT NULL
	);

	-- Response events
	CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		duration REAL NOT NULL,
		risk_level INTEGER NOT NULL DEFAULT 1,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_incidents_type
		ON incidents(type);
	CREATE INDEX IF NOT EXISTS idx_incidents_date
		ON incidents(date);

	-- Eligibility: which members responded to which incident
	CREATE TABLE IF NOT EXISTS incident_participants (
		incident_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (incident_id, member_id),
		FOREIGN KEY (incident_id) REFERENCES incidents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_participants_member
		ON incident_participants(member_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYMENT BATCHES (implements batch.Store)
// =============================================================================

// Save inserts or replaces a batch. Monetary amounts are stored as
// whole-yen integers.
func (s *Store) Save(ctx context.Context, b batch.PaymentBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO payment_batches
		(id, name, type, status, created_date, confirmed_date,
		 scheduled_payment_date, payment_date, description,
		 total_amount, member_count, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(b.ID), b.Name, string(b.Type), string(b.Status),
		formatDate(b.CreatedDate), formatDatePtr(b.ConfirmedDate),
		formatDatePtr(b.ScheduledPaymentDate), formatDatePtr(b.PaymentDate),
		b.Description, b.TotalAmount.Int64(), b.MemberCount, b.CreatedBy,
	)
	return err
}

// Get returns a batch, or nil when it doesn't exist.
func (s *Store) Get(ctx context.Context, id batch.BatchID) (*batch.PaymentBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, status, created_date, confirmed_date,
		       scheduled_payment_date, payment_date, description,
		       total_amount, member_count, created_by
		FROM payment_batches WHERE id = ?`, string(id))

	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all batches ordered by creation date, then id.
func (s *Store) List(ctx context.Context) ([]batch.PaymentBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, status, created_date, confirmed_date,
		       scheduled_payment_date, payment_date, description,
		       total_amount, member_count, created_by
		FROM payment_batches ORDER BY created_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []batch.PaymentBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

// Delete removes a batch. Deleting a missing batch is not an error.
func (s *Store) Delete(ctx context.Context, id batch.BatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM payment_batches WHERE id = ?`, string(id))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*batch.PaymentBatch, error) {
	var (
		b                                    batch.PaymentBatch
		id, kind, status, createdDate        string
		confirmed, scheduled, paid, desc, by sql.NullString
		totalAmount                          int64
	)
	err := row.Scan(&id, &b.Name, &kind, &status, &createdDate,
		&confirmed, &scheduled, &paid, &desc, &totalAmount, &b.MemberCount, &by)
	if err != nil {
		return nil, err
	}

	b.ID = batch.BatchID(id)
	b.Type = payroll.PaymentType(kind)
	b.Status = batch.Status(status)
	b.CreatedDate, err = parseDate(createdDate)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}
	b.ConfirmedDate = parseDatePtr(confirmed)
	b.ScheduledPaymentDate = parseDatePtr(scheduled)
	b.PaymentDate = parseDatePtr(paid)
	b.Description = desc.String
	b.CreatedBy = by.String
	b.TotalAmount = payroll.Yen(totalAmount)
	return &b, nil
}

// =============================================================================
// MEMBERS
// =============================================================================

// SaveMember inserts or replaces a roster entry.
func (s *Store) SaveMember(ctx context.Context, m payroll.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO members (id, name, rank, years_of_service, join_date)
		VALUES (?, ?, ?, ?, ?)`,
		string(m.ID), m.Name, string(m.Rank), m.YearsOfService, formatDate(m.JoinDate))
	return err
}

// GetMember returns a member, or nil when it doesn't exist.
func (s *Store) GetMember(ctx context.Context, id payroll.MemberID) (*payroll.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, rank, years_of_service, join_date
		FROM members WHERE id = ?`, string(id))

	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMembers returns the roster ordered by id.
func (s *Store) ListMembers(ctx context.Context) ([]payroll.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rank, years_of_service, join_date
		FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []payroll.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func scanMember(row rowScanner) (*payroll.Member, error) {
	var (
		m              payroll.Member
		id, rank, join string
	)
	if err := row.Scan(&id, &m.Name, &rank, &m.YearsOfService, &join); err != nil {
		return nil, err
	}
	m.ID = payroll.MemberID(id)
	m.Rank = payroll.RankKey(rank)
	var err error
	m.JoinDate, err = parseDate(join)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", id, err)
	}
	return &m, nil
}

// =============================================================================
// INCIDENTS
// =============================================================================

// SaveIncident inserts or replaces an incident and its participant list.
func (s *Store) SaveIncident(ctx context.Context, in payroll.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO incidents (id, name, type, date, duration, risk_level, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(in.ID), in.Name, string(in.Type), formatDate(in.Date),
		in.Duration, in.RiskLevel, in.Description)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM incident_participants WHERE incident_id = ?`, string(in.ID)); err != nil {
		return err
	}
	for i, memberID := range in.Participants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO incident_participants (incident_id, member_id, position)
			VALUES (?, ?, ?)`, string(in.ID), string(memberID), i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListIncidents returns all incidents with participants, ordered by date
// then id. An optional type filter narrows the result.
func (s *Store) ListIncidents(ctx context.Context, typeFilter payroll.IncidentTypeKey) ([]payroll.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, type, date, duration, risk_level, description
		FROM incidents`
	var args []any
	if typeFilter != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typeFilter))
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []payroll.Incident
	for rows.Next() {
		var (
			in             payroll.Incident
			id, kind, date string
			desc           sql.NullString
		)
		if err := rows.Scan(&id, &in.Name, &kind, &date, &in.Duration, &in.RiskLevel, &desc); err != nil {
			return nil, err
		}
		in.ID = payroll.IncidentID(id)
		in.Type = payroll.IncidentTypeKey(kind)
		in.Description = desc.String
		in.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("incident %s: %w", id, err)
		}
		incidents = append(incidents, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range incidents {
		participants, err := s.loadParticipants(ctx, incidents[i].ID)
		if err != nil {
			return nil, err
		}
		incidents[i].Participants = participants
	}
	return incidents, nil
}

func (s *Store) loadParticipants(ctx context.Context, id payroll.IncidentID) ([]payroll.MemberID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id FROM incident_participants
		WHERE incident_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []payroll.MemberID
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, err
		}
		members = append(members, payroll.MemberID(memberID))
	}
	return members, rows.Err()
}

// =============================================================================
// DATE HELPERS - Dates stored as YYYY-MM-DD text
// =============================================================================

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

func formatDatePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func parseDate(s string) (time.Time, error) {
	// Tolerate full timestamps from older rows.
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseDatePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil
	}
	return &t
}
