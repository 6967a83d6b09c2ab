package engine

import (
	"testing"

	"codequest/internal/storage"
)

func evalWithScore(total, max int) EvalResult {
	return EvalResult{TotalScore: total, MaxScore: max}
}

func TestResolveCombatFullScoreKillsFromFull(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}
	run := &storage.BossRun{HPRemaining: 100}

	d := ResolveCombat(evalWithScore(60, 60), run, boss, 100)

	if d.Damage != 100 {
		t.Fatalf("damage = %d, want 100", d.Damage)
	}
	if d.BossHPAfter != 0 {
		t.Fatalf("hp after = %d, want 0", d.BossHPAfter)
	}
	if d.IntegrityDamage != 0 || d.IntegrityAfter != 100 {
		t.Fatalf("integrity touched on a full-score strike: %+v", d)
	}
}

func TestResolveCombatDamageScalesWithScore(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}
	prev := -1
	for total := 0; total <= 60; total += 10 {
		run := &storage.BossRun{HPRemaining: 100}
		d := ResolveCombat(evalWithScore(total, 60), run, boss, 100)
		if d.Damage < prev {
			t.Fatalf("damage dropped at total %d: %d < %d", total, d.Damage, prev)
		}
		prev = d.Damage
	}

	run := &storage.BossRun{HPRemaining: 100}
	d := ResolveCombat(evalWithScore(30, 60), run, boss, 100)
	if d.Damage != 50 {
		t.Fatalf("half score damage = %d, want 50", d.Damage)
	}
}

func TestResolveCombatHPNeverNegative(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}
	run := &storage.BossRun{HPRemaining: 10}

	d := ResolveCombat(evalWithScore(60, 60), run, boss, 100)

	if d.BossHPBefore != 10 {
		t.Fatalf("hp before = %d, want 10", d.BossHPBefore)
	}
	if d.BossHPAfter != 0 {
		t.Fatalf("hp after = %d, want clamp at 0", d.BossHPAfter)
	}
}

func TestResolveCombatDepletedRunRestartsAtFull(t *testing.T) {
	boss := &storage.Boss{MaxHP: 120}
	run := &storage.BossRun{HPRemaining: 0}

	d := ResolveCombat(evalWithScore(30, 60), run, boss, 100)

	if d.BossHPBefore != 120 {
		t.Fatalf("hp before = %d, want restart at max 120", d.BossHPBefore)
	}
	if d.BossHPAfter != 60 {
		t.Fatalf("hp after = %d, want 60", d.BossHPAfter)
	}
}

func TestResolveCombatWeakStrikeCostsIntegrity(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}

	// Just under half the rubric maximum.
	run := &storage.BossRun{HPRemaining: 100}
	d := ResolveCombat(evalWithScore(29, 60), run, boss, 80)
	if d.IntegrityDamage != WeakStrikeIntegrityDamage {
		t.Fatalf("integrity damage = %d, want %d", d.IntegrityDamage, WeakStrikeIntegrityDamage)
	}
	if d.IntegrityAfter != 70 {
		t.Fatalf("integrity after = %d, want 70", d.IntegrityAfter)
	}

	// Exactly half is not a weak strike.
	run = &storage.BossRun{HPRemaining: 100}
	d = ResolveCombat(evalWithScore(30, 60), run, boss, 80)
	if d.IntegrityDamage != 0 {
		t.Fatalf("integrity damage = %d at the half threshold, want 0", d.IntegrityDamage)
	}
}

func TestResolveCombatIntegrityNeverNegative(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}
	run := &storage.BossRun{HPRemaining: 100}

	d := ResolveCombat(evalWithScore(0, 60), run, boss, 5)

	if d.IntegrityAfter != 0 {
		t.Fatalf("integrity after = %d, want clamp at 0", d.IntegrityAfter)
	}
}

func TestResolveCombatZeroMaxScore(t *testing.T) {
	boss := &storage.Boss{MaxHP: 100}
	run := &storage.BossRun{HPRemaining: 100}

	// A degenerate eval must not divide by zero.
	d := ResolveCombat(evalWithScore(0, 0), run, boss, 100)

	if d.Damage != 0 {
		t.Fatalf("damage = %d, want 0", d.Damage)
	}
}
