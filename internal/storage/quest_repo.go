package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// QuestRepo covers the static catalog: tracks and quest definitions.
type QuestRepo struct {
	db DBTX
}

func NewQuestRepo(db DBTX) *QuestRepo {
	return &QuestRepo{db: db}
}

func (r *QuestRepo) UpsertTrack(ctx context.Context, t Track) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracks (slug, world_slug, title) VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET world_slug = excluded.world_slug, title = excluded.title
	`, t.Slug, t.WorldSlug, t.Title)
	if err != nil {
		return 0, fmt.Errorf("track upsert: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT id FROM tracks WHERE slug = ?`, t.Slug)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("track id: %w", err)
	}
	return id, nil
}

func (r *QuestRepo) GetTrack(ctx context.Context, id int64) (*Track, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, slug, world_slug, title FROM tracks WHERE id = ?`, id)
	var t Track
	if err := row.Scan(&t.ID, &t.Slug, &t.WorldSlug, &t.Title); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("track get: %w", err)
	}
	return &t, nil
}

func (r *QuestRepo) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, slug, world_slug, title FROM tracks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("track list: %w", err)
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.Slug, &t.WorldSlug, &t.Title); err != nil {
			return nil, fmt.Errorf("track scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("track rows: %w", err)
	}
	return out, nil
}

func (r *QuestRepo) UpsertQuest(ctx context.Context, q Quest) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (slug, title, world_slug, track_id, order_index, unlocks_boss_id, unlocks_layout_id, reward_xp, mastery_bonus_xp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			world_slug = excluded.world_slug,
			track_id = excluded.track_id,
			order_index = excluded.order_index,
			unlocks_boss_id = excluded.unlocks_boss_id,
			unlocks_layout_id = excluded.unlocks_layout_id,
			reward_xp = excluded.reward_xp,
			mastery_bonus_xp = excluded.mastery_bonus_xp
	`, q.Slug, q.Title, q.WorldSlug, q.TrackID, q.OrderIndex, q.UnlocksBossID, q.UnlocksLayoutID, q.RewardXP, q.MasteryBonusXP)
	if err != nil {
		return 0, fmt.Errorf("quest upsert: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT id FROM quests WHERE slug = ?`, q.Slug)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("quest id: %w", err)
	}
	return id, nil
}

const questCols = `id, slug, title, world_slug, track_id, order_index, unlocks_boss_id, unlocks_layout_id, reward_xp, mastery_bonus_xp`

func (r *QuestRepo) Get(ctx context.Context, id int64) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questCols+` FROM quests WHERE id = ?`, id)
	return scanQuest(row)
}

func (r *QuestRepo) GetBySlug(ctx context.Context, slug string) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questCols+` FROM quests WHERE slug = ?`, slug)
	return scanQuest(row)
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questCols+` FROM quests ORDER BY world_slug, track_id, order_index, id`)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuest(row scanner) (*Quest, error) {
	var (
		q        Quest
		trackID  sql.NullInt64
		bossID   sql.NullInt64
		layoutID sql.NullString
	)
	if err := row.Scan(&q.ID, &q.Slug, &q.Title, &q.WorldSlug, &trackID, &q.OrderIndex, &bossID, &layoutID, &q.RewardXP, &q.MasteryBonusXP); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("quest scan: %w", err)
	}
	if trackID.Valid {
		v := trackID.Int64
		q.TrackID = &v
	}
	if bossID.Valid {
		v := bossID.Int64
		q.UnlocksBossID = &v
	}
	if layoutID.Valid {
		v := layoutID.String
		q.UnlocksLayoutID = &v
	}
	return &q, nil
}
