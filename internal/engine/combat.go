package engine

import (
	"math"

	"codequest/internal/storage"
)

// WeakStrikeIntegrityDamage is the flat integrity cost of a strike scoring
// under half the rubric maximum.
const WeakStrikeIntegrityDamage = 10

type CombatDelta struct {
	Damage          int
	BossHPBefore    int
	BossHPAfter     int
	IntegrityDamage int
	IntegrityBefore int
	IntegrityAfter  int
}

// ResolveCombat converts a scored strike into boss HP and player integrity
// deltas. A run whose remaining HP is already non-positive is treated as
// freshly restarted at full HP. Damage scales with the score fraction of the
// boss's max HP; integrity damage is a flat threshold penalty, not
// proportional.
func ResolveCombat(ev EvalResult, run *storage.BossRun, boss *storage.Boss, integrityBefore int) CombatDelta {
	before := run.HPRemaining
	if before <= 0 {
		before = boss.MaxHP
	}

	maxScore := ev.MaxScore
	if maxScore < 1 {
		maxScore = 1
	}
	frac := float64(ev.TotalScore) / float64(maxScore)
	damage := int(math.Round(float64(boss.MaxHP) * frac))

	after := before - damage
	if after < 0 {
		after = 0
	}

	integrityDamage := 0
	if float64(ev.TotalScore) < float64(ev.MaxScore)*0.5 {
		integrityDamage = WeakStrikeIntegrityDamage
	}
	integrityAfter := integrityBefore - integrityDamage
	if integrityAfter < 0 {
		integrityAfter = 0
	}

	return CombatDelta{
		Damage:          damage,
		BossHPBefore:    before,
		BossHPAfter:     after,
		IntegrityDamage: integrityDamage,
		IntegrityBefore: integrityBefore,
		IntegrityAfter:  integrityAfter,
	}
}
