package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mdimg/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(started time.Time) *models.Run {
	return &models.Run{
		DocumentPath: "notes.md",
		BackupPath:   "notes_backup.md",
		Mode:         models.ModeFile,
		Folder:       "x",
		References:   3,
		Rewritten:    true,
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
		Outcomes: []models.Outcome{
			{
				URL:         "https://example.com/a.jpg?size=small",
				Status:      models.OutcomeSaved,
				Occurrences: 2,
				Replacement: "image/x/a.jpg",
				FileName:    "a.jpg",
				MediaType:   "image/jpeg",
				Attempts:    1,
				SizeBytes:   42,
				Digest:      "blake2b-256:abc",
			},
			{
				URL:      "https://example.com/missing.png",
				Status:   models.OutcomeFailed,
				Attempts: 3,
				Error:    "fetch https://example.com/missing.png: giving up after 3 attempts: unexpected status 404",
			},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordRunAssignsID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	run := sampleRun(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	if err := st.RecordRun(ctx, run); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.HasPrefix(run.ID, "run-") {
		t.Fatalf("expected generated run id, got %q", run.ID)
	}

	exists, err := st.RunExists(run.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected run to exist")
	}
	exists, err = st.RunExists("run-nope00")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected unknown run to be absent")
	}
}

func TestGetRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := sampleRun(started)
	run.ID = "run-abc123"

	if err := st.RecordRun(ctx, run); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := st.GetRun(ctx, "run-abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.DocumentPath != "notes.md" || got.Folder != "x" || got.Mode != models.ModeFile {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.Rewritten || got.References != 3 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("expected started %v, got %v", started, got.StartedAt)
	}
	if len(got.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(got.Outcomes))
	}
	if got.Outcomes[0].Replacement != "image/x/a.jpg" {
		t.Fatalf("expected replacement image/x/a.jpg, got %q", got.Outcomes[0].Replacement)
	}
	if got.Outcomes[1].Status != models.OutcomeFailed || got.Outcomes[1].Error == "" {
		t.Fatalf("expected failed outcome with error, got %+v", got.Outcomes[1])
	}

	missing, err := st.GetRun(ctx, "run-zzzzzz")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing run, got %+v", missing)
	}
}

func TestListFetches(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	first := sampleRun(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := st.RecordRun(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	second := &models.Run{
		DocumentPath: "other.md",
		BackupPath:   "other_backup.md",
		Mode:         models.ModeInline,
		References:   1,
		Rewritten:    true,
		StartedAt:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2026, 3, 2, 10, 0, 1, 0, time.UTC),
		Outcomes: []models.Outcome{
			{URL: "https://example.com/b.png", Status: models.OutcomeInlined, MediaType: "image/png", Attempts: 1, SizeBytes: 8},
		},
	}
	if err := st.RecordRun(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	tests := []struct {
		name   string
		filter HistoryFilter
		want   []string
	}{
		{"all newest first", HistoryFilter{}, []string{"https://example.com/b.png", "https://example.com/missing.png", "https://example.com/a.jpg?size=small"}},
		{"limit", HistoryFilter{Limit: 1}, []string{"https://example.com/b.png"}},
		{"status", HistoryFilter{Status: models.OutcomeFailed}, []string{"https://example.com/missing.png"}},
		{"url", HistoryFilter{URL: "https://example.com/a.jpg?size=small"}, []string{"https://example.com/a.jpg?size=small"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := st.ListFetches(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(records))
			}
			for i, url := range tt.want {
				if records[i].URL != url {
					t.Fatalf("record %d: expected %q, got %q", i, url, records[i].URL)
				}
			}
		})
	}

	records, err := st.ListFetches(ctx, HistoryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if records[0].Destination != "data:image/png;base64" {
		t.Fatalf("expected inline destination, got %q", records[0].Destination)
	}
	if records[0].DocumentPath != "other.md" || records[0].RunID != second.ID {
		t.Fatalf("expected join with run, got %+v", records[0])
	}
}

func TestMigrationPlanOnOpenStore(t *testing.T) {
	st := testStore(t)
	plan, err := st.MigrationPlan()
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Pending) != 0 {
		t.Fatalf("expected no pending migrations, got %+v", plan.Pending)
	}
}
