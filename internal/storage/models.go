package storage

import "time"

type Profile struct {
	Key       string
	XP        int
	Integrity int
	Flags     ProfileFlags
}

// ProfileFlags is stored as a single JSON blob on the profile row. Treat it
// as an immutable value: build a new one and store it wholesale, never mutate
// the slices in place.
type ProfileFlags struct {
	LayoutsUnlocked []string `json:"layouts_unlocked"`
	BossesUnlocked  []string `json:"bosses_unlocked"`
}

type Track struct {
	ID        int64
	Slug      string
	WorldSlug string
	Title     string
}

// Quest is a catalog row. Seeded once, never mutated by the engine.
type Quest struct {
	ID              int64
	Slug            string
	Title           string
	WorldSlug       string
	TrackID         *int64
	OrderIndex      int
	UnlocksBossID   *int64
	UnlocksLayoutID *string
	RewardXP        int
	MasteryBonusXP  int
}

// QuestProgress is the one-per-(profile, quest) row backing the state
// machine. The UNIQUE(profile_key, quest_id) constraint makes the upsert in
// ProgressRepo safe under concurrent submissions.
type QuestProgress struct {
	ID              int64
	ProfileKey      string
	QuestID         int64
	State           string
	Attempts        int
	BestScore       int
	LastSubmittedAt *time.Time
	CompletedAt     *time.Time
	MasteredAt      *time.Time
}

type Boss struct {
	ID         int64
	Slug       string
	Title      string
	WorldSlug  string
	TrackID    int64
	MaxHP      int
	RubricSlug string
	RewardXP   int
	Enabled    bool
}

const (
	RunResultWin  = "win"
	RunResultLoss = "loss"
)

// BossRun is one encounter attempt. Result stays nil while the encounter is
// active; a partial unique index allows at most one such row per profile.
type BossRun struct {
	ID          string
	ProfileKey  string
	BossID      int64
	HPRemaining int
	Result      *string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Rubric holds the JSON-encoded scoring spec. Parsing and validation happen
// in the engine package at load time.
type Rubric struct {
	Slug string
	Spec string
}
