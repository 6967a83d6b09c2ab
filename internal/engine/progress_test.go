package engine

import (
	"testing"
	"time"

	"codequest/internal/storage"
)

func TestNextStateTable(t *testing.T) {
	cases := []struct {
		state  QuestState
		passed bool
		want   QuestState
	}{
		{StateLocked, true, StateCompleted},
		{StateAvailable, true, StateCompleted},
		{StateInProgress, true, StateMastered},
		{StateCompleted, true, StateMastered},
		{StateMastered, true, StateMastered},
		{StateLocked, false, StateLocked},
		{StateAvailable, false, StateInProgress},
		{StateInProgress, false, StateInProgress},
		{StateCompleted, false, StateCompleted},
		{StateMastered, false, StateMastered},
	}
	for _, tc := range cases {
		got := NextState(tc.state, tc.passed)
		if got != tc.want {
			t.Errorf("NextState(%s, %v) = %s, want %s", tc.state, tc.passed, got, tc.want)
		}
	}
}

func TestApplySubmissionFirstPass(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &storage.QuestProgress{State: string(StateAvailable)}

	prev := ApplySubmission(p, 80, true, now)

	if prev != StateAvailable {
		t.Fatalf("prev = %s, want available", prev)
	}
	if p.State != string(StateCompleted) {
		t.Fatalf("state = %s, want completed", p.State)
	}
	if p.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", p.Attempts)
	}
	if p.BestScore != 80 {
		t.Fatalf("best score = %d, want 80", p.BestScore)
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
		t.Fatalf("completed_at = %v, want %v", p.CompletedAt, now)
	}
	if p.LastSubmittedAt == nil || !p.LastSubmittedAt.Equal(now) {
		t.Fatalf("last_submitted_at = %v, want %v", p.LastSubmittedAt, now)
	}
	if p.MasteredAt != nil {
		t.Fatalf("mastered_at set on first completion")
	}
}

func TestApplySubmissionBestScoreMonotonic(t *testing.T) {
	now := time.Now().UTC()
	p := &storage.QuestProgress{State: string(StateAvailable)}

	ApplySubmission(p, 90, true, now)
	ApplySubmission(p, 40, true, now.Add(time.Hour))

	if p.BestScore != 90 {
		t.Fatalf("best score = %d, want 90 after a lower resubmission", p.BestScore)
	}
	if p.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", p.Attempts)
	}
}

func TestApplySubmissionMasteryTimestampSetOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &storage.QuestProgress{State: string(StateCompleted)}

	ApplySubmission(p, 95, true, first)
	if p.State != string(StateMastered) {
		t.Fatalf("state = %s, want mastered", p.State)
	}
	if p.MasteredAt == nil || !p.MasteredAt.Equal(first) {
		t.Fatalf("mastered_at = %v, want %v", p.MasteredAt, first)
	}

	later := first.Add(48 * time.Hour)
	ApplySubmission(p, 100, true, later)
	if !p.MasteredAt.Equal(first) {
		t.Fatalf("mastered_at moved to %v on resubmission", p.MasteredAt)
	}
	if p.State != string(StateMastered) {
		t.Fatalf("state left mastered: %s", p.State)
	}
}

func TestApplySubmissionLockedFailStaysLocked(t *testing.T) {
	now := time.Now().UTC()
	p := &storage.QuestProgress{State: string(StateLocked)}

	prev := ApplySubmission(p, 30, false, now)

	if prev != StateLocked {
		t.Fatalf("prev = %s, want locked", prev)
	}
	if p.State != string(StateLocked) {
		t.Fatalf("state = %s, want locked", p.State)
	}
	// The row still records that the attempt happened.
	if p.Attempts != 1 || p.BestScore != 30 || p.LastSubmittedAt == nil {
		t.Fatalf("counters did not advance: %+v", p)
	}
	if p.CompletedAt != nil {
		t.Fatalf("completed_at set on a failing submission")
	}
}

func TestApplySubmissionUnknownStateTreatedAsDefault(t *testing.T) {
	now := time.Now().UTC()
	p := &storage.QuestProgress{State: "corrupted"}

	prev := ApplySubmission(p, 75, true, now)

	if prev != StateAvailable {
		t.Fatalf("prev = %s, want available fallback", prev)
	}
	if p.State != string(StateCompleted) {
		t.Fatalf("state = %s, want completed", p.State)
	}
}

func TestJustCompleted(t *testing.T) {
	cases := []struct {
		prev, next QuestState
		want       bool
	}{
		{StateAvailable, StateCompleted, true},
		{StateLocked, StateCompleted, true},
		{StateInProgress, StateMastered, true},
		{StateCompleted, StateMastered, false},
		{StateMastered, StateMastered, false},
		{StateAvailable, StateInProgress, false},
	}
	for _, tc := range cases {
		if got := JustCompleted(tc.prev, tc.next); got != tc.want {
			t.Errorf("JustCompleted(%s, %s) = %v, want %v", tc.prev, tc.next, got, tc.want)
		}
	}
}

func TestResolveUnlocksIdempotent(t *testing.T) {
	bossID := int64(7)
	layout := "reef-overlook"
	q := &storage.Quest{UnlocksBossID: &bossID, UnlocksLayoutID: &layout}

	flags, events := ResolveUnlocks(StateAvailable, StateCompleted, q, storage.ProfileFlags{})
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if len(flags.BossesUnlocked) != 1 || flags.BossesUnlocked[0] != "7" {
		t.Fatalf("bosses unlocked = %v", flags.BossesUnlocked)
	}
	if len(flags.LayoutsUnlocked) != 1 || flags.LayoutsUnlocked[0] != "reef-overlook" {
		t.Fatalf("layouts unlocked = %v", flags.LayoutsUnlocked)
	}

	// Same unlock targets against flags that already hold them: no events.
	flags2, events2 := ResolveUnlocks(StateAvailable, StateCompleted, q, flags)
	if len(events2) != 0 {
		t.Fatalf("re-fire produced %d events", len(events2))
	}
	if len(flags2.BossesUnlocked) != 1 || len(flags2.LayoutsUnlocked) != 1 {
		t.Fatalf("flags grew on re-fire: %+v", flags2)
	}

	// A transition that is not a fresh completion never unlocks.
	_, events3 := ResolveUnlocks(StateCompleted, StateMastered, q, storage.ProfileFlags{})
	if len(events3) != 0 {
		t.Fatalf("mastery transition fired %d unlock events", len(events3))
	}
}

func TestAddToSetKeepsInputIntact(t *testing.T) {
	in := []string{"a", "c"}
	out, added := addToSet(in, "b")
	if !added {
		t.Fatalf("expected insert")
	}
	if len(in) != 2 || in[0] != "a" || in[1] != "c" {
		t.Fatalf("input mutated: %v", in)
	}
	if len(out) != 3 || out[0] != "a" || out[1] != "b" || out[2] != "c" {
		t.Fatalf("out = %v", out)
	}
	if _, added := addToSet(out, "b"); added {
		t.Fatalf("duplicate insert reported as added")
	}
}
