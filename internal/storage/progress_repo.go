package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ProgressRepo struct {
	db DBTX
}

func NewProgressRepo(db DBTX) *ProgressRepo {
	return &ProgressRepo{db: db}
}

const progressCols = `id, profile_key, quest_id, state, attempts, best_score, last_submitted_at, completed_at, mastered_at`

func (r *ProgressRepo) Get(ctx context.Context, profileKey string, questID int64) (*QuestProgress, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+progressCols+` FROM quest_progress WHERE profile_key = ? AND quest_id = ?`, profileKey, questID)
	return scanProgress(row)
}

// Upsert writes a progress row keyed on the unique (profile_key, quest_id)
// pair. Concurrent submissions resolve at the constraint instead of racing a
// separate existence check.
func (r *ProgressRepo) Upsert(ctx context.Context, p *QuestProgress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_progress (profile_key, quest_id, state, attempts, best_score, last_submitted_at, completed_at, mastered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_key, quest_id) DO UPDATE SET
			state = excluded.state,
			attempts = excluded.attempts,
			best_score = excluded.best_score,
			last_submitted_at = excluded.last_submitted_at,
			completed_at = excluded.completed_at,
			mastered_at = excluded.mastered_at
	`, p.ProfileKey, p.QuestID, p.State, p.Attempts, p.BestScore, p.LastSubmittedAt, p.CompletedAt, p.MasteredAt)
	if err != nil {
		return fmt.Errorf("progress upsert: %w", err)
	}
	return nil
}

func (r *ProgressRepo) ListByProfile(ctx context.Context, profileKey string) ([]QuestProgress, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+progressCols+` FROM quest_progress WHERE profile_key = ? ORDER BY quest_id ASC`, profileKey)
	if err != nil {
		return nil, fmt.Errorf("progress list: %w", err)
	}
	defer rows.Close()

	var out []QuestProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress rows: %w", err)
	}
	return out, nil
}

// CountCompletedOnTrack counts quests on the track this profile has taken to
// completed or mastered.
func (r *ProgressRepo) CountCompletedOnTrack(ctx context.Context, profileKey string, trackID int64) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM quest_progress p
		JOIN quests q ON q.id = p.quest_id
		WHERE p.profile_key = ? AND q.track_id = ? AND p.state IN ('completed', 'mastered')
	`, profileKey, trackID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("progress count on track: %w", err)
	}
	return n, nil
}

// CountCompletedOnTrackAfter counts track completions reached strictly after
// the given instant. The completion instant is completed_at, or mastered_at
// for quests that jumped straight to mastered.
func (r *ProgressRepo) CountCompletedOnTrackAfter(ctx context.Context, profileKey string, trackID int64, after time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM quest_progress p
		JOIN quests q ON q.id = p.quest_id
		WHERE p.profile_key = ? AND q.track_id = ?
			AND p.state IN ('completed', 'mastered')
			AND COALESCE(p.completed_at, p.mastered_at) > ?
	`, profileKey, trackID, after)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("progress count after: %w", err)
	}
	return n, nil
}

// CompletionTimes returns every completion instant for the profile, oldest
// first. Feeds the daily plan's streak and today counters.
func (r *ProgressRepo) CompletionTimes(ctx context.Context, profileKey string) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(completed_at, mastered_at)
		FROM quest_progress
		WHERE profile_key = ? AND COALESCE(completed_at, mastered_at) IS NOT NULL
		ORDER BY 1 ASC
	`, profileKey)
	if err != nil {
		return nil, fmt.Errorf("completion times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		// The COALESCE expression has no declared column type, so the sqlite
		// driver hands it back as text rather than a time.Time.
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("completion time scan: %w", err)
		}
		t, err := time.Parse("2006-01-02 15:04:05.999999999 -0700 MST", s)
		if err != nil {
			return nil, fmt.Errorf("completion time scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion time rows: %w", err)
	}
	return out, nil
}

func scanProgress(row scanner) (*QuestProgress, error) {
	var (
		p             QuestProgress
		lastSubmitted sql.NullTime
		completedAt   sql.NullTime
		masteredAt    sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.ProfileKey, &p.QuestID, &p.State, &p.Attempts, &p.BestScore, &lastSubmitted, &completedAt, &masteredAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("progress scan: %w", err)
	}
	if lastSubmitted.Valid {
		v := lastSubmitted.Time
		p.LastSubmittedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		p.CompletedAt = &v
	}
	if masteredAt.Valid {
		v := masteredAt.Time
		p.MasteredAt = &v
	}
	return &p, nil
}
