package history

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/database"
	_ "github.com/nerrad567/nvx-fleet/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func entry(id endpoint.ID, name string, at time.Time) Entry {
	return Entry{
		RecordID:   uuid.New(),
		EndpointID: id,
		Kind:       "base",
		Name:       name,
		Payload:    json.RawMessage(`{"event_id":1}`),
		CreatedAt:  at,
	}
}

func TestRecord_AndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"Online", "Name", "IpAddress"} {
		if err := repo.Record(ctx, entry(0x13, name, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Record(%s) error = %v", name, err)
		}
	}
	if err := repo.Record(ctx, entry(0x10, "Online", base)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := repo.Recent(ctx, 0x13, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(got))
	}
	if got[0].Name != "IpAddress" || got[2].Name != "Online" {
		t.Errorf("Recent order = %s..%s, want newest first", got[0].Name, got[2].Name)
	}
	if got[0].EndpointID != 0x13 {
		t.Errorf("EndpointID = %v, want 0x13", got[0].EndpointID)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, base.Add(2*time.Second))
	}
	if string(got[0].Payload) != `{"event_id":1}` {
		t.Errorf("Payload = %s", got[0].Payload)
	}

	all, err := repo.Latest(ctx, 10)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("len(Latest) = %d, want 4", len(all))
	}
}

func TestRecord_DuplicateIgnored(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := entry(0x13, "Online", time.Now())
	for range 2 {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := repo.Recent(ctx, 0x13, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(Recent) = %d, want 1", len(got))
	}
}

func TestRecord_Invalid(t *testing.T) {
	repo := newTestRepo(t)

	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing record id", Entry{Kind: "base"}},
		{"missing kind", Entry{RecordID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Record(context.Background(), tt.entry)
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("Record() error = %v, want ErrInvalidEntry", err)
			}
		})
	}
}

func TestRecord_DefaultsPayloadAndTime(t *testing.T) {
	repo := newTestRepo(t)
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	e := Entry{RecordID: uuid.New(), EndpointID: 0x20, Kind: "online_status_change", Name: "Online"}
	if err := repo.Record(context.Background(), e); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := repo.Recent(context.Background(), 0x20, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(Recent) = %d, want 1", len(got))
	}
	if string(got[0].Payload) != "{}" {
		t.Errorf("Payload = %s, want {}", got[0].Payload)
	}
	if !got[0].CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, fixed)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrune(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Record(ctx, entry(0x13, "Old", now.Add(-48*time.Hour))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := repo.Record(ctx, entry(0x13, "Fresh", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() removed %d, want 1", n)
	}

	got, err := repo.Recent(ctx, 0x13, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Fresh" {
		t.Errorf("remaining = %+v, want only Fresh", got)
	}

	if _, err := repo.Prune(ctx, 0); !errors.Is(err, ErrInvalidRetention) {
		t.Errorf("Prune(0) error = %v, want ErrInvalidRetention", err)
	}
}
