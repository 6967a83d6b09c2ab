package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BossRepo covers boss definitions and encounter runs.
type BossRepo struct {
	db DBTX
}

func NewBossRepo(db DBTX) *BossRepo {
	return &BossRepo{db: db}
}

const bossCols = `id, slug, title, world_slug, track_id, max_hp, rubric_slug, reward_xp, enabled`

func (r *BossRepo) Upsert(ctx context.Context, b Boss) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bosses (slug, title, world_slug, track_id, max_hp, rubric_slug, reward_xp, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			world_slug = excluded.world_slug,
			track_id = excluded.track_id,
			max_hp = excluded.max_hp,
			rubric_slug = excluded.rubric_slug,
			reward_xp = excluded.reward_xp,
			enabled = excluded.enabled
	`, b.Slug, b.Title, b.WorldSlug, b.TrackID, b.MaxHP, b.RubricSlug, b.RewardXP, boolToInt(b.Enabled))
	if err != nil {
		return 0, fmt.Errorf("boss upsert: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT id FROM bosses WHERE slug = ?`, b.Slug)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("boss id: %w", err)
	}
	return id, nil
}

func (r *BossRepo) Get(ctx context.Context, id int64) (*Boss, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bossCols+` FROM bosses WHERE id = ?`, id)
	return scanBoss(row)
}

func (r *BossRepo) GetBySlug(ctx context.Context, slug string) (*Boss, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bossCols+` FROM bosses WHERE slug = ?`, slug)
	return scanBoss(row)
}

func (r *BossRepo) ListAll(ctx context.Context) ([]Boss, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bossCols+` FROM bosses ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("boss list: %w", err)
	}
	defer rows.Close()

	var out []Boss
	for rows.Next() {
		b, err := scanBoss(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boss rows: %w", err)
	}
	return out, nil
}

// EnabledForTrack returns the enabled boss for a world/track pair. Lowest id
// wins when several match, so the pick is stable across storage engines.
func (r *BossRepo) EnabledForTrack(ctx context.Context, worldSlug string, trackID int64) (*Boss, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+bossCols+`
		FROM bosses
		WHERE world_slug = ? AND track_id = ? AND enabled = 1
		ORDER BY id ASC
		LIMIT 1
	`, worldSlug, trackID)
	return scanBoss(row)
}

func (r *BossRepo) InsertRun(ctx context.Context, run *BossRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO boss_runs (id, profile_key, boss_id, hp_remaining, result, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProfileKey, run.BossID, run.HPRemaining, run.Result, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("boss run insert: %w", err)
	}
	return nil
}

func (r *BossRepo) UpdateRun(ctx context.Context, run *BossRun) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE boss_runs
		SET hp_remaining = ?, result = ?, completed_at = ?
		WHERE id = ?
	`, run.HPRemaining, run.Result, run.CompletedAt, run.ID)
	if err != nil {
		return fmt.Errorf("boss run update: %w", err)
	}
	return nil
}

const runCols = `id, profile_key, boss_id, hp_remaining, result, started_at, completed_at`

// ActiveRun returns the profile's open encounter, if any.
func (r *BossRepo) ActiveRun(ctx context.Context, profileKey string) (*BossRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+runCols+`
		FROM boss_runs
		WHERE profile_key = ? AND result IS NULL
	`, profileKey)
	return scanRun(row)
}

// LastRunOnTrack returns the most recently started run against any boss on
// the track. Used by the trigger cooldown.
func (r *BossRepo) LastRunOnTrack(ctx context.Context, profileKey string, trackID int64) (*BossRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.profile_key, r.boss_id, r.hp_remaining, r.result, r.started_at, r.completed_at
		FROM boss_runs r
		JOIN bosses b ON b.id = r.boss_id
		WHERE r.profile_key = ? AND b.track_id = ?
		ORDER BY r.started_at DESC
		LIMIT 1
	`, profileKey, trackID)
	return scanRun(row)
}

func (r *BossRepo) ListRuns(ctx context.Context, profileKey string) ([]BossRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runCols+`
		FROM boss_runs
		WHERE profile_key = ?
		ORDER BY started_at ASC
	`, profileKey)
	if err != nil {
		return nil, fmt.Errorf("boss run list: %w", err)
	}
	defer rows.Close()

	var out []BossRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boss run rows: %w", err)
	}
	return out, nil
}

func scanBoss(row scanner) (*Boss, error) {
	var (
		b       Boss
		enabled int
	)
	if err := row.Scan(&b.ID, &b.Slug, &b.Title, &b.WorldSlug, &b.TrackID, &b.MaxHP, &b.RubricSlug, &b.RewardXP, &enabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("boss scan: %w", err)
	}
	b.Enabled = enabled != 0
	return &b, nil
}

func scanRun(row scanner) (*BossRun, error) {
	var (
		run         BossRun
		result      sql.NullString
		completedAt sql.NullTime
		startedAt   time.Time
	)
	if err := row.Scan(&run.ID, &run.ProfileKey, &run.BossID, &run.HPRemaining, &result, &startedAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("boss run scan: %w", err)
	}
	run.StartedAt = startedAt
	if result.Valid {
		v := result.String
		run.Result = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		run.CompletedAt = &v
	}
	return &run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
