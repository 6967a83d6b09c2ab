package engine

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"codequest/internal/storage"
)

type Service struct {
	db  *sql.DB
	cfg Config
	rng Rand

	profiles *storage.ProfileRepo
	quests   *storage.QuestRepo
	progress *storage.ProgressRepo
	bosses   *storage.BossRepo
	rubrics  *storage.RubricRepo
}

func NewService(db *sql.DB) *Service {
	return NewServiceWith(db, DefaultConfig(), NewRand())
}

// NewServiceWith lets callers pin the config and the trigger RNG; tests use
// it to force both branches of the spawn roll.
func NewServiceWith(db *sql.DB, cfg Config, rng Rand) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		rng:      rng,
		profiles: storage.NewProfileRepo(db),
		quests:   storage.NewQuestRepo(db),
		progress: storage.NewProgressRepo(db),
		bosses:   storage.NewBossRepo(db),
		rubrics:  storage.NewRubricRepo(db),
	}
}

func (s *Service) Config() Config                      { return s.cfg }
func (s *Service) ProfileRepo() *storage.ProfileRepo   { return s.profiles }
func (s *Service) QuestRepo() *storage.QuestRepo       { return s.quests }
func (s *Service) ProgressRepo() *storage.ProgressRepo { return s.progress }
func (s *Service) BossRepo() *storage.BossRepo         { return s.bosses }
func (s *Service) RubricRepo() *storage.RubricRepo     { return s.rubrics }

type SubmitResult struct {
	Progress  storage.QuestProgress
	PrevState QuestState
	Grade     string
	XPAwarded int
	Unlocks   []UnlockEvent
	BossSpawn *storage.Boss
}

// SubmitQuest folds one graded submission into the progress row, fires
// unlocks, pays rewards, and evaluates the boss trigger. The read-modify-write
// over the progress row and profile runs in a single transaction so two
// concurrent submissions for the same (profile, quest) cannot interleave.
func (s *Service) SubmitQuest(ctx context.Context, profileKey, questSlug string, score int, passed bool) (*SubmitResult, error) {
	quest, err := s.quests.GetBySlug(ctx, questSlug)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, UnknownQuestError{Slug: questSlug}
	}

	var res *SubmitResult
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		profiles := storage.NewProfileRepo(tx)
		progress := storage.NewProgressRepo(tx)

		p, err := profiles.GetOrCreate(ctx, profileKey)
		if err != nil {
			return err
		}

		row, err := progress.Get(ctx, profileKey, quest.ID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &storage.QuestProgress{
				ProfileKey: profileKey,
				QuestID:    quest.ID,
				State:      string(DefaultState),
			}
		}

		now := time.Now().UTC()
		prev := ApplySubmission(row, score, passed, now)
		if err := progress.Upsert(ctx, row); err != nil {
			return err
		}

		next := QuestState(row.State)
		flags, events := ResolveUnlocks(prev, next, quest, p.Flags)

		xp := 0
		if JustCompleted(prev, next) {
			xp += quest.RewardXP
		}
		if next == StateMastered && prev != StateMastered {
			xp += quest.MasteryBonusXP
		}
		if xp > 0 || len(events) > 0 {
			p.XP += xp
			p.Flags = flags
			if err := profiles.Update(ctx, p); err != nil {
				return err
			}
		}

		res = &SubmitResult{
			Progress:  *row,
			PrevState: prev,
			Grade:     LetterGrade(score),
			XPAwarded: xp,
			Unlocks:   events,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.labelUnlocks(ctx, res.Unlocks)

	// Trigger evaluation reads history committed above, so it runs after the
	// transaction.
	if quest.TrackID != nil {
		completed, err := s.progress.CountCompletedOnTrack(ctx, profileKey, *quest.TrackID)
		if err != nil {
			return nil, err
		}
		trigger := NewBossTrigger(s.cfg.Trigger, s.rng, triggerStore{bosses: s.bosses, progress: s.progress})
		spawn, err := trigger.Evaluate(ctx, TriggerContext{
			ProfileKey:             profileKey,
			WorldSlug:              quest.WorldSlug,
			TrackID:                quest.TrackID,
			QuestID:                quest.ID,
			WasBoss:                false,
			Passed:                 passed,
			Grade:                  res.Grade,
			CompletedQuestsOnTrack: completed,
		})
		if err != nil {
			return nil, err
		}
		res.BossSpawn = spawn
	}

	return res, nil
}

// triggerStore adapts the repos to the evaluator's narrow view of storage.
type triggerStore struct {
	bosses   *storage.BossRepo
	progress *storage.ProgressRepo
}

func (t triggerStore) LastRunOnTrack(ctx context.Context, profileKey string, trackID int64) (*storage.BossRun, error) {
	return t.bosses.LastRunOnTrack(ctx, profileKey, trackID)
}

func (t triggerStore) CountCompletedOnTrackAfter(ctx context.Context, profileKey string, trackID int64, after time.Time) (int, error) {
	return t.progress.CountCompletedOnTrackAfter(ctx, profileKey, trackID, after)
}

func (t triggerStore) EnabledBossForTrack(ctx context.Context, worldSlug string, trackID int64) (*storage.Boss, error) {
	return t.bosses.EnabledForTrack(ctx, worldSlug, trackID)
}

func (s *Service) labelUnlocks(ctx context.Context, events []UnlockEvent) {
	for i := range events {
		if events[i].Type != UnlockTypeBoss {
			continue
		}
		id, err := strconv.ParseInt(events[i].ID, 10, 64)
		if err != nil {
			continue
		}
		if boss, err := s.bosses.Get(ctx, id); err == nil && boss != nil {
			events[i].Label = boss.Title
		}
	}
}

// StartRun materializes a spawned encounter. The partial unique index on
// boss_runs backs the one-active-run invariant; a violating insert is mapped
// to ActiveRunError rather than parsed out of the driver error.
func (s *Service) StartRun(ctx context.Context, profileKey string, bossID int64) (*storage.BossRun, error) {
	boss, err := s.bosses.Get(ctx, bossID)
	if err != nil {
		return nil, err
	}
	if boss == nil {
		return nil, UnknownBossError{ID: bossID}
	}
	if _, err := s.profiles.GetOrCreate(ctx, profileKey); err != nil {
		return nil, err
	}

	run := &storage.BossRun{
		ID:          uuid.NewString(),
		ProfileKey:  profileKey,
		BossID:      bossID,
		HPRemaining: boss.MaxHP,
		StartedAt:   time.Now().UTC(),
	}
	if err := s.bosses.InsertRun(ctx, run); err != nil {
		if active, aerr := s.bosses.ActiveRun(ctx, profileKey); aerr == nil && active != nil {
			return nil, ActiveRunError{ProfileKey: profileKey, RunID: active.ID}
		}
		return nil, err
	}
	return run, nil
}

type StrikeResult struct {
	Run       storage.BossRun
	Boss      storage.Boss
	Eval      EvalResult
	Delta     CombatDelta
	Result    string
	XPAwarded int
}

// StrikeBoss scores a judge's EvalChoice against the boss rubric, resolves
// combat, and settles the run: win when the boss HP hits zero, loss when the
// profile's integrity is exhausted, otherwise the encounter stays open.
func (s *Service) StrikeBoss(ctx context.Context, profileKey string, choice EvalChoice) (*StrikeResult, error) {
	var res *StrikeResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		bosses := storage.NewBossRepo(tx)
		profiles := storage.NewProfileRepo(tx)
		rubrics := storage.NewRubricRepo(tx)

		run, err := bosses.ActiveRun(ctx, profileKey)
		if err != nil {
			return err
		}
		if run == nil {
			return NoActiveRunError{ProfileKey: profileKey}
		}
		boss, err := bosses.Get(ctx, run.BossID)
		if err != nil {
			return err
		}
		if boss == nil {
			return UnknownBossError{ID: run.BossID}
		}
		rubricRow, err := rubrics.Get(ctx, boss.RubricSlug)
		if err != nil {
			return err
		}
		if rubricRow == nil {
			return RubricError{Slug: boss.RubricSlug, Reason: "not found"}
		}
		spec, err := ParseRubric([]byte(rubricRow.Spec))
		if err != nil {
			return err
		}
		p, err := profiles.GetOrCreate(ctx, profileKey)
		if err != nil {
			return err
		}

		ev := Score(spec, choice)
		delta := ResolveCombat(ev, run, boss, p.Integrity)

		now := time.Now().UTC()
		run.HPRemaining = delta.BossHPAfter
		result := ""
		xp := 0
		switch {
		case delta.BossHPAfter == 0:
			result = storage.RunResultWin
			xp = boss.RewardXP
		case delta.IntegrityAfter == 0:
			result = storage.RunResultLoss
		}
		if result != "" {
			run.Result = &result
			run.CompletedAt = &now
		}
		if err := bosses.UpdateRun(ctx, run); err != nil {
			return err
		}

		p.Integrity = delta.IntegrityAfter
		p.XP += xp
		if err := profiles.Update(ctx, p); err != nil {
			return err
		}

		res = &StrikeResult{
			Run:       *run,
			Boss:      *boss,
			Eval:      ev,
			Delta:     delta,
			Result:    result,
			XPAwarded: xp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DailyPlan builds the deterministic practice gauntlet for a date.
func (s *Service) DailyPlan(ctx context.Context, profileKey string, date time.Time, maxItems int, includeWorlds, includeProjects []string) (*DailyPracticePlan, error) {
	candidates, err := s.BuildCandidates(ctx, profileKey)
	if err != nil {
		return nil, err
	}
	plan := BuildDailyPlan(s.cfg.Practice, profileKey, date, candidates, maxItems, includeWorlds, includeProjects)

	times, err := s.progress.CompletionTimes(ctx, profileKey)
	if err != nil {
		return nil, err
	}
	plan.Stats = CompletionStats(times, date)
	return &plan, nil
}

// BuildCandidates aggregates quest progress and boss run history into
// practice candidates. Built fresh per request; nothing here is persisted.
func (s *Service) BuildCandidates(ctx context.Context, profileKey string) ([]PracticeCandidate, error) {
	quests, err := s.quests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tracks, err := s.quests.ListTracks(ctx)
	if err != nil {
		return nil, err
	}
	trackSlugs := make(map[int64]string, len(tracks))
	for _, t := range tracks {
		trackSlugs[t.ID] = t.Slug
	}

	rows, err := s.progress.ListByProfile(ctx, profileKey)
	if err != nil {
		return nil, err
	}
	byQuest := make(map[int64]*storage.QuestProgress, len(rows))
	for i := range rows {
		byQuest[rows[i].QuestID] = &rows[i]
	}

	var out []PracticeCandidate
	for _, q := range quests {
		state := DefaultState
		attempts := 0
		best := 0
		if row, ok := byQuest[q.ID]; ok {
			state = QuestState(row.State)
			attempts = row.Attempts
			best = row.BestScore
		}
		project := ""
		if q.TrackID != nil {
			project = trackSlugs[*q.TrackID]
		}
		out = append(out, PracticeCandidate{
			ItemType:      ItemTypeQuest,
			Identifier:    q.Slug,
			Title:         q.Title,
			WorldSlug:     q.WorldSlug,
			ProjectSlug:   project,
			StruggleScore: StruggleScoreForQuest(state, attempts, best),
			Attempts:      attempts,
		})
	}

	bosses, err := s.bosses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	runs, err := s.bosses.ListRuns(ctx, profileKey)
	if err != nil {
		return nil, err
	}
	type tally struct {
		wins, losses, attempts int
		lastHPFraction         float64
	}
	perBoss := map[int64]*tally{}
	byID := make(map[int64]*storage.Boss, len(bosses))
	for i := range bosses {
		byID[bosses[i].ID] = &bosses[i]
	}
	for _, run := range runs {
		t := perBoss[run.BossID]
		if t == nil {
			t = &tally{}
			perBoss[run.BossID] = t
		}
		t.attempts++
		if run.Result != nil {
			switch *run.Result {
			case storage.RunResultWin:
				t.wins++
			case storage.RunResultLoss:
				t.losses++
			}
		}
		if boss := byID[run.BossID]; boss != nil && boss.MaxHP > 0 {
			t.lastHPFraction = float64(run.HPRemaining) / float64(boss.MaxHP)
		}
	}

	for _, b := range bosses {
		if !b.Enabled {
			continue
		}
		t := perBoss[b.ID]
		if t == nil {
			continue
		}
		out = append(out, PracticeCandidate{
			ItemType:      ItemTypeBoss,
			Identifier:    b.Slug,
			Title:         b.Title,
			WorldSlug:     b.WorldSlug,
			ProjectSlug:   trackSlugs[b.TrackID],
			StruggleScore: StruggleScoreForBoss(t.wins, t.losses, t.lastHPFraction),
			Attempts:      t.attempts,
			Legendary:     true,
		})
	}

	return out, nil
}
