package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) (*ProfileRepo, *QuestRepo, *ProgressRepo, *BossRepo) {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewProfileRepo(db), NewQuestRepo(db), NewProgressRepo(db), NewBossRepo(db)
}

func TestOpenMigratesIdempotently(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
}

func TestProfileGetOrCreate(t *testing.T) {
	ctx := context.Background()
	profiles, _, _, _ := newTestDB(t)

	p, err := profiles.GetOrCreate(ctx, "main")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Integrity != DefaultIntegrity || p.XP != 0 {
		t.Fatalf("defaults wrong: %+v", p)
	}

	p.XP = 150
	p.Flags.BossesUnlocked = []string{"3"}
	if err := profiles.Update(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := profiles.GetOrCreate(ctx, "main")
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got.XP != 150 {
		t.Fatalf("xp = %d, want 150", got.XP)
	}
	if len(got.Flags.BossesUnlocked) != 1 || got.Flags.BossesUnlocked[0] != "3" {
		t.Fatalf("flags did not round-trip: %+v", got.Flags)
	}
}

func TestProgressUpsertSingleRow(t *testing.T) {
	ctx := context.Background()
	profiles, quests, progress, _ := newTestDB(t)

	if _, err := profiles.GetOrCreate(ctx, "main"); err != nil {
		t.Fatalf("profile: %v", err)
	}
	questID, err := quests.UpsertQuest(ctx, Quest{Slug: "q1", Title: "Q1", WorldSlug: "w"})
	if err != nil {
		t.Fatalf("quest: %v", err)
	}

	now := time.Now().UTC()
	row := &QuestProgress{ProfileKey: "main", QuestID: questID, State: "in_progress", Attempts: 1, BestScore: 40, LastSubmittedAt: &now}
	if err := progress.Upsert(ctx, row); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	row.Attempts = 2
	row.State = "completed"
	row.BestScore = 80
	row.CompletedAt = &now
	if err := progress.Upsert(ctx, row); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := progress.ListByProfile(ctx, "main")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.Attempts != 2 || got.State != "completed" || got.BestScore != 80 {
		t.Fatalf("row = %+v", got)
	}
	if got.CompletedAt == nil {
		t.Fatalf("completed_at lost in upsert")
	}
}

func TestActiveRunUniquePerProfile(t *testing.T) {
	ctx := context.Background()
	profiles, quests, _, bosses := newTestDB(t)

	if _, err := profiles.GetOrCreate(ctx, "main"); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if _, err := profiles.GetOrCreate(ctx, "alt"); err != nil {
		t.Fatalf("profile: %v", err)
	}
	trackID, err := quests.UpsertTrack(ctx, Track{Slug: "loops", WorldSlug: "w", Title: "Loops"})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	bossID, err := bosses.Upsert(ctx, Boss{Slug: "b1", Title: "B1", WorldSlug: "w", TrackID: trackID, MaxHP: 100, RubricSlug: "r", Enabled: true})
	if err != nil {
		t.Fatalf("boss: %v", err)
	}

	now := time.Now().UTC()
	if err := bosses.InsertRun(ctx, &BossRun{ID: "run-1", ProfileKey: "main", BossID: bossID, HPRemaining: 100, StartedAt: now}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A second open run for the same profile violates the partial index.
	err = bosses.InsertRun(ctx, &BossRun{ID: "run-2", ProfileKey: "main", BossID: bossID, HPRemaining: 100, StartedAt: now})
	if err == nil {
		t.Fatalf("second active run accepted")
	}

	// Other profiles are free to open one.
	if err := bosses.InsertRun(ctx, &BossRun{ID: "run-3", ProfileKey: "alt", BossID: bossID, HPRemaining: 100, StartedAt: now}); err != nil {
		t.Fatalf("other profile run: %v", err)
	}

	// Settling the run frees the slot.
	result := RunResultLoss
	run, err := bosses.ActiveRun(ctx, "main")
	if err != nil || run == nil {
		t.Fatalf("active: %v %v", run, err)
	}
	run.Result = &result
	run.CompletedAt = &now
	if err := bosses.UpdateRun(ctx, run); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := bosses.InsertRun(ctx, &BossRun{ID: "run-4", ProfileKey: "main", BossID: bossID, HPRemaining: 100, StartedAt: now}); err != nil {
		t.Fatalf("run after settle: %v", err)
	}
}

func TestEnabledForTrackPicksLowestID(t *testing.T) {
	ctx := context.Background()
	_, quests, _, bosses := newTestDB(t)

	trackID, err := quests.UpsertTrack(ctx, Track{Slug: "loops", WorldSlug: "w", Title: "Loops"})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	first, err := bosses.Upsert(ctx, Boss{Slug: "b1", Title: "B1", WorldSlug: "w", TrackID: trackID, MaxHP: 100, RubricSlug: "r", Enabled: true})
	if err != nil {
		t.Fatalf("boss: %v", err)
	}
	if _, err := bosses.Upsert(ctx, Boss{Slug: "b2", Title: "B2", WorldSlug: "w", TrackID: trackID, MaxHP: 100, RubricSlug: "r", Enabled: true}); err != nil {
		t.Fatalf("boss: %v", err)
	}
	if _, err := bosses.Upsert(ctx, Boss{Slug: "b0", Title: "B0", WorldSlug: "w", TrackID: trackID, MaxHP: 100, RubricSlug: "r", Enabled: false}); err != nil {
		t.Fatalf("boss: %v", err)
	}

	got, err := bosses.EnabledForTrack(ctx, "w", trackID)
	if err != nil {
		t.Fatalf("enabled for track: %v", err)
	}
	if got == nil || got.ID != first {
		t.Fatalf("got %+v, want id %d", got, first)
	}

	// No enabled boss on an unknown track is not an error.
	none, err := bosses.EnabledForTrack(ctx, "w", trackID+100)
	if err != nil {
		t.Fatalf("missing track: %v", err)
	}
	if none != nil {
		t.Fatalf("got %+v, want nil", none)
	}
}
