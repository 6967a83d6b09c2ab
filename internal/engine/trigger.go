package engine

import (
	"context"
	"math/rand"
	"time"

	"codequest/internal/storage"
)

// Rand is the chance source for the boss gate. Production uses a wall-clock
// seeded source (spawns should feel random); tests inject a fixed one. This
// is deliberately distinct from the practice selector, which seeds from the
// profile and date so plans are reproducible.
type Rand interface {
	Float64() float64
}

func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// TriggerConfig holds the spawn gate tunables.
type TriggerConfig struct {
	MinCompletedQuests int      `env:"MIN_QUESTS" envDefault:"3"`
	ChanceAfterMin     float64  `env:"CHANCE" envDefault:"0.25"`
	RequiredGrades     []string `env:"GRADES" envDefault:"A,B" envSeparator:","`
	CooldownQuests     int      `env:"COOLDOWN" envDefault:"2"`
}

// TriggerContext describes the quest completion being evaluated.
type TriggerContext struct {
	ProfileKey             string
	WorldSlug              string
	TrackID                *int64
	QuestID                int64
	WasBoss                bool
	Passed                 bool
	Grade                  string
	CompletedQuestsOnTrack int
}

// TriggerStore is the slice of storage the evaluator reads.
type TriggerStore interface {
	LastRunOnTrack(ctx context.Context, profileKey string, trackID int64) (*storage.BossRun, error)
	CountCompletedOnTrackAfter(ctx context.Context, profileKey string, trackID int64, after time.Time) (int, error)
	EnabledBossForTrack(ctx context.Context, worldSlug string, trackID int64) (*storage.Boss, error)
}

type BossTrigger struct {
	cfg   TriggerConfig
	rng   Rand
	store TriggerStore
}

func NewBossTrigger(cfg TriggerConfig, rng Rand, store TriggerStore) *BossTrigger {
	return &BossTrigger{cfg: cfg, rng: rng, store: store}
}

// Evaluate decides whether a quest completion spawns a boss encounter. The
// gates short-circuit in order; a nil boss with nil error means no spawn.
func (t *BossTrigger) Evaluate(ctx context.Context, tc TriggerContext) (*storage.Boss, error) {
	// Never chain an encounter off a boss outcome.
	if tc.WasBoss {
		return nil, nil
	}
	if !tc.Passed {
		return nil, nil
	}
	// Bosses belong to tracks; a trackless quest cannot spawn one.
	if tc.TrackID == nil {
		return nil, nil
	}
	if tc.CompletedQuestsOnTrack < t.cfg.MinCompletedQuests {
		return nil, nil
	}
	if len(t.cfg.RequiredGrades) > 0 && !containsString(t.cfg.RequiredGrades, tc.Grade) {
		return nil, nil
	}

	// Cooldown: enough fresh completions since the last run on this track.
	last, err := t.store.LastRunOnTrack(ctx, tc.ProfileKey, *tc.TrackID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		n, err := t.store.CountCompletedOnTrackAfter(ctx, tc.ProfileKey, *tc.TrackID, last.StartedAt)
		if err != nil {
			return nil, err
		}
		if n < t.cfg.CooldownQuests {
			return nil, nil
		}
	}

	if t.rng.Float64() > t.cfg.ChanceAfterMin {
		return nil, nil
	}

	// A missing definition is "no spawn", not an error.
	return t.store.EnabledBossForTrack(ctx, tc.WorldSlug, *tc.TrackID)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
