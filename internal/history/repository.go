package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	// timestampLayout is fixed width so stored values sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// Entry is one persisted endpoint event.
type Entry struct {
	ID         int64           `json:"id"`
	RecordID   uuid.UUID       `json:"record_id"`
	EndpointID endpoint.ID     `json:"endpoint_id"`
	Kind       string          `json:"kind"`
	Name       string          `json:"name"`
	Input      int             `json:"input,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Repository stores and queries endpoint events.
type Repository interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, id endpoint.ID, limit int) ([]Entry, error)
	Latest(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteRepository implements Repository on the endpoint_events table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record inserts e. A record id already stored is ignored.
func (r *SQLiteRepository) Record(ctx context.Context, e Entry) error {
	if e.RecordID == uuid.Nil {
		return fmt.Errorf("%w: record id is required", ErrInvalidEntry)
	}
	if e.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidEntry)
	}
	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO endpoint_events
		 (record_id, endpoint_id, kind, name, input, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RecordID.String(), int(e.EndpointID), e.Kind, e.Name, e.Input, payload,
		created.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting endpoint event: %w", err)
	}
	return nil
}

// Recent returns an endpoint's events, newest first. limit <= 0 selects
// DefaultLimit; larger values are capped at MaxLimit.
func (r *SQLiteRepository) Recent(ctx context.Context, id endpoint.ID, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT id, record_id, endpoint_id, kind, name, input, payload, created_at
		 FROM endpoint_events
		 WHERE endpoint_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		int(id), clampLimit(limit))
}

// Latest returns events across the fleet, newest first.
func (r *SQLiteRepository) Latest(ctx context.Context, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT id, record_id, endpoint_id, kind, name, input, payload, created_at
		 FROM endpoint_events
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clampLimit(limit))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying endpoint events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			recordID   string
			endpointID int
			payload    string
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &recordID, &endpointID, &e.Kind, &e.Name, &e.Input, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning endpoint event: %w", err)
		}
		if e.RecordID, err = uuid.Parse(recordID); err != nil {
			return nil, fmt.Errorf("parsing record id %q: %w", recordID, err)
		}
		if e.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		e.EndpointID = endpoint.ID(endpointID)
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating endpoint events: %w", err)
	}
	return entries, nil
}

// Prune deletes events older than now-olderThan and returns how many.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}

	cutoff := r.now().UTC().Add(-olderThan).Format(timestampLayout)
	res, err := r.db.ExecContext(ctx, "DELETE FROM endpoint_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning endpoint events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
