package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/database"
	_ "github.com/nerrad567/nvx-fleet/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
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

func idPtr(id endpoint.ID) *endpoint.ID { return &id }

func TestCreate_FillsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	e := &Entry{Action: ActionReaffirm, EndpointID: idPtr(0x13), Actor: "ops", Source: "api", Outcome: OutcomeOK}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(e.ID, "aud-") {
		t.Errorf("ID = %q, want aud- prefix", e.ID)
	}
	if !e.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, fixed)
	}

	res, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("List() = %+v, want one entry", res)
	}
	got := res.Entries[0]
	if got.ID != e.ID || got.Actor != "ops" || got.EndpointID == nil || *got.EndpointID != 0x13 {
		t.Errorf("entry = %+v", got)
	}
	if res.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", res.Limit, DefaultLimit)
	}
}

func TestCreate_Invalid(t *testing.T) {
	repo := newTestRepo(t)
	tests := []Entry{
		{Source: "api", Outcome: OutcomeOK},
		{Action: ActionReaffirm, Outcome: OutcomeOK},
		{Action: ActionReaffirm, Source: "api"},
	}
	for i := range tests {
		if err := repo.Create(context.Background(), &tests[i]); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("Create(%+v) error = %v, want ErrInvalidEntry", tests[i], err)
		}
	}
}

func TestList_FilterAndPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	seed := []Entry{
		{Action: ActionReaffirm, EndpointID: idPtr(0x13), Source: "api", Outcome: OutcomeOK, CreatedAt: base},
		{Action: ActionReaffirm, EndpointID: idPtr(0x10), Source: "api", Outcome: OutcomeFailed,
			Details: map[string]any{"error": "device rejected name"}, CreatedAt: base.Add(time.Second)},
		{Action: ActionReaffirm, EndpointID: idPtr(0x13), Source: "api", Outcome: OutcomeOK, CreatedAt: base.Add(2 * time.Second)},
		{Action: "token", Source: "cli", Outcome: OutcomeOK, CreatedAt: base.Add(3 * time.Second)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
		wantIDs   []string
	}{
		{"all newest first", Filter{}, 4, []string{seed[3].ID, seed[2].ID, seed[1].ID, seed[0].ID}},
		{"by action", Filter{Action: ActionReaffirm}, 3, []string{seed[2].ID, seed[1].ID, seed[0].ID}},
		{"by endpoint", Filter{EndpointID: idPtr(0x13)}, 2, []string{seed[2].ID, seed[0].ID}},
		{"paged", Filter{Limit: 2, Offset: 1}, 4, []string{seed[2].ID, seed[1].ID}},
		{"past the end", Filter{Offset: 10}, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
			if len(res.Entries) != len(tt.wantIDs) {
				t.Fatalf("len(Entries) = %d, want %d", len(res.Entries), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if res.Entries[i].ID != id {
					t.Errorf("Entries[%d].ID = %s, want %s", i, res.Entries[i].ID, id)
				}
			}
		})
	}

	res, err := repo.List(ctx, Filter{EndpointID: idPtr(0x10)})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Entries[0].Details["error"] != "device rejected name" {
		t.Errorf("Details = %v", res.Entries[0].Details)
	}
	if res.Entries[0].Outcome != OutcomeFailed {
		t.Errorf("Outcome = %q, want failed", res.Entries[0].Outcome)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	res, err := repo.List(context.Background(), Filter{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != MaxLimit || res.Offset != 0 {
		t.Errorf("Limit/Offset = %d/%d, want %d/0", res.Limit, res.Offset, MaxLimit)
	}
	if res.Entries == nil {
		t.Error("Entries should be empty, not nil")
	}
}
