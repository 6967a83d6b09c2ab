package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"codequest/internal/storage"
)

// Built-in starter catalog: one world, two tracks, a quest line per track,
// and a rubric-graded boss at the end of each. Seeding is idempotent; rerun
// `cq seed` after editing to refresh definitions in place.

type catalogTrack struct {
	Slug      string
	WorldSlug string
	Title     string
}

type catalogQuest struct {
	Slug            string
	Title           string
	WorldSlug       string
	TrackSlug       string
	OrderIndex      int
	UnlocksBossSlug string
	UnlocksLayoutID string
	RewardXP        int
	MasteryBonusXP  int
}

type catalogBoss struct {
	Slug       string
	Title      string
	WorldSlug  string
	TrackSlug  string
	MaxHP      int
	RubricSlug string
	RewardXP   int
	Enabled    bool
}

func builtinTracks() []catalogTrack {
	return []catalogTrack{
		{Slug: "loops", WorldSlug: "syntax-shores", Title: "The Loop Lagoon"},
		{Slug: "functions", WorldSlug: "syntax-shores", Title: "Function Falls"},
	}
}

func builtinQuests() []catalogQuest {
	return []catalogQuest{
		{Slug: "first-for", Title: "Count to Ten", WorldSlug: "syntax-shores", TrackSlug: "loops", OrderIndex: 1, RewardXP: 50, MasteryBonusXP: 25},
		{Slug: "fizz-tide", Title: "The Fizzing Tide", WorldSlug: "syntax-shores", TrackSlug: "loops", OrderIndex: 2, RewardXP: 75, MasteryBonusXP: 30},
		{Slug: "nested-reef", Title: "The Nested Reef", WorldSlug: "syntax-shores", TrackSlug: "loops", OrderIndex: 3, UnlocksLayoutID: "reef-overlook", RewardXP: 100, MasteryBonusXP: 40},
		{Slug: "while-undertow", Title: "The While Undertow", WorldSlug: "syntax-shores", TrackSlug: "loops", OrderIndex: 4, UnlocksBossSlug: "kraken-of-iteration", RewardXP: 125, MasteryBonusXP: 50},
		{Slug: "first-func", Title: "A Function Takes Shape", WorldSlug: "syntax-shores", TrackSlug: "functions", OrderIndex: 1, RewardXP: 50, MasteryBonusXP: 25},
		{Slug: "pure-springs", Title: "The Pure Springs", WorldSlug: "syntax-shores", TrackSlug: "functions", OrderIndex: 2, RewardXP: 75, MasteryBonusXP: 30},
		{Slug: "recursion-rapids", Title: "Recursion Rapids", WorldSlug: "syntax-shores", TrackSlug: "functions", OrderIndex: 3, UnlocksBossSlug: "mirror-warden", RewardXP: 125, MasteryBonusXP: 50},
	}
}

func builtinBosses() []catalogBoss {
	return []catalogBoss{
		{Slug: "kraken-of-iteration", Title: "Kraken of Iteration", WorldSlug: "syntax-shores", TrackSlug: "loops", MaxHP: 100, RubricSlug: "code-review-v1", RewardXP: 300, Enabled: true},
		{Slug: "mirror-warden", Title: "The Mirror Warden", WorldSlug: "syntax-shores", TrackSlug: "functions", MaxHP: 120, RubricSlug: "code-review-v1", RewardXP: 350, Enabled: true},
	}
}

func builtinRubrics() []RubricSpec {
	return []RubricSpec{
		{
			Slug:     "code-review-v1",
			MaxScore: 60,
			Dimensions: []Dimension{
				{
					Key:   "correctness",
					Title: "Correctness",
					Bands: []Band{
						{Level: 1, Score: 0, Label: "Does not run or wrong output"},
						{Level: 2, Score: 10, Label: "Partially correct"},
						{Level: 3, Score: 20, Label: "Correct on all cases"},
					},
				},
				{
					Key:   "readability",
					Title: "Readability",
					Bands: []Band{
						{Level: 1, Score: 0, Label: "Hard to follow"},
						{Level: 2, Score: 10, Label: "Readable with effort"},
						{Level: 3, Score: 20, Label: "Clear naming and structure"},
					},
				},
				{
					Key:   "efficiency",
					Title: "Efficiency",
					Bands: []Band{
						{Level: 1, Score: 0, Label: "Wasteful approach"},
						{Level: 2, Score: 10, Label: "Reasonable approach"},
						{Level: 3, Score: 20, Label: "Appropriate algorithm and data structures"},
					},
				},
			},
			GradeBands: []GradeBand{
				{MinScore: 54, Label: "S"},
				{MinScore: 48, Label: "A"},
				{MinScore: 36, Label: "B"},
				{MinScore: 24, Label: "C"},
				{MinScore: 0, Label: "F"},
			},
			AutofailConditions: []string{"hardcoded_output", "plagiarism", "policy_violation"},
		},
	}
}

// SeedCatalog loads the built-in catalog, validating every rubric before it
// touches the store. Returns counts of seeded tracks, quests, and bosses.
func (s *Service) SeedCatalog(ctx context.Context) (tracks, quests, bosses int, err error) {
	for _, spec := range builtinRubrics() {
		if err := spec.Validate(); err != nil {
			return 0, 0, 0, err
		}
		data, err := json.Marshal(spec)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("marshal rubric %s: %w", spec.Slug, err)
		}
		if err := s.rubrics.Upsert(ctx, storage.Rubric{Slug: spec.Slug, Spec: string(data)}); err != nil {
			return 0, 0, 0, err
		}
	}

	trackIDs := map[string]int64{}
	for _, t := range builtinTracks() {
		id, err := s.quests.UpsertTrack(ctx, storage.Track{Slug: t.Slug, WorldSlug: t.WorldSlug, Title: t.Title})
		if err != nil {
			return 0, 0, 0, err
		}
		trackIDs[t.Slug] = id
		tracks++
	}

	bossIDs := map[string]int64{}
	for _, b := range builtinBosses() {
		trackID, ok := trackIDs[b.TrackSlug]
		if !ok {
			return 0, 0, 0, fmt.Errorf("boss %s references unknown track %s", b.Slug, b.TrackSlug)
		}
		id, err := s.bosses.Upsert(ctx, storage.Boss{
			Slug:       b.Slug,
			Title:      b.Title,
			WorldSlug:  b.WorldSlug,
			TrackID:    trackID,
			MaxHP:      b.MaxHP,
			RubricSlug: b.RubricSlug,
			RewardXP:   b.RewardXP,
			Enabled:    b.Enabled,
		})
		if err != nil {
			return 0, 0, 0, err
		}
		bossIDs[b.Slug] = id
		bosses++
	}

	for _, q := range builtinQuests() {
		trackID, ok := trackIDs[q.TrackSlug]
		if !ok {
			return 0, 0, 0, fmt.Errorf("quest %s references unknown track %s", q.Slug, q.TrackSlug)
		}
		quest := storage.Quest{
			Slug:           q.Slug,
			Title:          q.Title,
			WorldSlug:      q.WorldSlug,
			TrackID:        &trackID,
			OrderIndex:     q.OrderIndex,
			RewardXP:       q.RewardXP,
			MasteryBonusXP: q.MasteryBonusXP,
		}
		if q.UnlocksBossSlug != "" {
			bossID, ok := bossIDs[q.UnlocksBossSlug]
			if !ok {
				return 0, 0, 0, fmt.Errorf("quest %s references unknown boss %s", q.Slug, q.UnlocksBossSlug)
			}
			quest.UnlocksBossID = &bossID
		}
		if q.UnlocksLayoutID != "" {
			layout := q.UnlocksLayoutID
			quest.UnlocksLayoutID = &layout
		}
		if _, err := s.quests.UpsertQuest(ctx, quest); err != nil {
			return 0, 0, 0, err
		}
		quests++
	}

	return tracks, quests, bosses, nil
}
