package engine

import (
	"context"
	"testing"
	"time"

	"codequest/internal/storage"
)

type fixedRand struct {
	v     float64
	calls int
}

func (f *fixedRand) Float64() float64 {
	f.calls++
	return f.v
}

type fakeTriggerStore struct {
	lastRun        *storage.BossRun
	completedAfter int
	boss           *storage.Boss

	lastRunCalls int
	bossCalls    int
}

func (f *fakeTriggerStore) LastRunOnTrack(ctx context.Context, profileKey string, trackID int64) (*storage.BossRun, error) {
	f.lastRunCalls++
	return f.lastRun, nil
}

func (f *fakeTriggerStore) CountCompletedOnTrackAfter(ctx context.Context, profileKey string, trackID int64, after time.Time) (int, error) {
	return f.completedAfter, nil
}

func (f *fakeTriggerStore) EnabledBossForTrack(ctx context.Context, worldSlug string, trackID int64) (*storage.Boss, error) {
	f.bossCalls++
	return f.boss, nil
}

func triggerTestConfig() TriggerConfig {
	return TriggerConfig{
		MinCompletedQuests: 3,
		ChanceAfterMin:     0.25,
		RequiredGrades:     []string{"A", "B"},
		CooldownQuests:     2,
	}
}

func passingContext() TriggerContext {
	trackID := int64(1)
	return TriggerContext{
		ProfileKey:             "main",
		WorldSlug:              "syntax-shores",
		TrackID:                &trackID,
		QuestID:                10,
		Passed:                 true,
		Grade:                  "A",
		CompletedQuestsOnTrack: 3,
	}
}

func TestTriggerSpawnsWhenAllGatesPass(t *testing.T) {
	store := &fakeTriggerStore{boss: &storage.Boss{ID: 5, Slug: "kraken"}}
	rng := &fixedRand{v: 0.1}
	trig := NewBossTrigger(triggerTestConfig(), rng, store)

	boss, err := trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss == nil || boss.ID != 5 {
		t.Fatalf("boss = %+v, want id 5", boss)
	}
}

func TestTriggerHardGates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TriggerContext)
	}{
		{"boss completion never chains", func(tc *TriggerContext) { tc.WasBoss = true }},
		{"failed submission", func(tc *TriggerContext) { tc.Passed = false }},
		{"trackless quest", func(tc *TriggerContext) { tc.TrackID = nil }},
		{"below min completions", func(tc *TriggerContext) { tc.CompletedQuestsOnTrack = 2 }},
		{"grade outside required set", func(tc *TriggerContext) { tc.Grade = "C" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := &fakeTriggerStore{boss: &storage.Boss{ID: 5}}
			rng := &fixedRand{v: 0.0}
			trig := NewBossTrigger(triggerTestConfig(), rng, store)

			tc := passingContext()
			c.mutate(&tc)
			boss, err := trig.Evaluate(context.Background(), tc)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if boss != nil {
				t.Fatalf("boss spawned through %s gate", c.name)
			}
			// Hard gates short-circuit before any storage read or roll.
			if store.lastRunCalls != 0 || rng.calls != 0 {
				t.Fatalf("gate %s did not short-circuit (store=%d rng=%d)", c.name, store.lastRunCalls, rng.calls)
			}
		})
	}
}

func TestTriggerCooldownBlocks(t *testing.T) {
	store := &fakeTriggerStore{
		lastRun:        &storage.BossRun{ID: "r1", StartedAt: time.Now().Add(-time.Hour)},
		completedAfter: 1,
		boss:           &storage.Boss{ID: 5},
	}
	rng := &fixedRand{v: 0.0}
	trig := NewBossTrigger(triggerTestConfig(), rng, store)

	boss, err := trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss != nil {
		t.Fatalf("boss spawned inside cooldown window")
	}
	if rng.calls != 0 {
		t.Fatalf("chance rolled during cooldown")
	}
}

func TestTriggerCooldownSatisfied(t *testing.T) {
	store := &fakeTriggerStore{
		lastRun:        &storage.BossRun{ID: "r1", StartedAt: time.Now().Add(-time.Hour)},
		completedAfter: 2,
		boss:           &storage.Boss{ID: 5},
	}
	trig := NewBossTrigger(triggerTestConfig(), &fixedRand{v: 0.0}, store)

	boss, err := trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss == nil {
		t.Fatalf("cooldown satisfied but no spawn")
	}
}

func TestTriggerChanceRoll(t *testing.T) {
	// Roll above the threshold: no spawn, and the boss lookup never happens.
	store := &fakeTriggerStore{boss: &storage.Boss{ID: 5}}
	trig := NewBossTrigger(triggerTestConfig(), &fixedRand{v: 0.26}, store)
	boss, err := trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss != nil {
		t.Fatalf("boss spawned on a failed roll")
	}
	if store.bossCalls != 0 {
		t.Fatalf("boss lookup ran after a failed roll")
	}

	// Roll exactly at the threshold: spawn.
	trig = NewBossTrigger(triggerTestConfig(), &fixedRand{v: 0.25}, store)
	boss, err = trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss == nil {
		t.Fatalf("no spawn on a roll equal to the threshold")
	}
}

func TestTriggerNoBossDefinedIsNotAnError(t *testing.T) {
	store := &fakeTriggerStore{boss: nil}
	trig := NewBossTrigger(triggerTestConfig(), &fixedRand{v: 0.0}, store)

	boss, err := trig.Evaluate(context.Background(), passingContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss != nil {
		t.Fatalf("boss = %+v, want nil", boss)
	}
}

func TestTriggerEmptyGradeSetAdmitsAll(t *testing.T) {
	cfg := triggerTestConfig()
	cfg.RequiredGrades = nil
	store := &fakeTriggerStore{boss: &storage.Boss{ID: 5}}
	trig := NewBossTrigger(cfg, &fixedRand{v: 0.0}, store)

	tc := passingContext()
	tc.Grade = "C"
	boss, err := trig.Evaluate(context.Background(), tc)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if boss == nil {
		t.Fatalf("empty grade set blocked the spawn")
	}
}
