package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			key TEXT PRIMARY KEY,
			xp INTEGER DEFAULT 0,
			integrity INTEGER DEFAULT 100,
			flags TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			world_slug TEXT NOT NULL,
			title TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			world_slug TEXT NOT NULL,
			track_id INTEGER NULL,
			order_index INTEGER DEFAULT 0,
			unlocks_boss_id INTEGER NULL,
			unlocks_layout_id TEXT NULL,
			reward_xp INTEGER DEFAULT 0,
			mastery_bonus_xp INTEGER DEFAULT 0,

			FOREIGN KEY(track_id) REFERENCES tracks(id)
		);`,
		`CREATE TABLE IF NOT EXISTS rubrics (
			slug TEXT PRIMARY KEY,
			spec TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bosses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			world_slug TEXT NOT NULL,
			track_id INTEGER NOT NULL,
			max_hp INTEGER NOT NULL,
			rubric_slug TEXT NOT NULL,
			reward_xp INTEGER DEFAULT 0,
			enabled INTEGER DEFAULT 1,

			FOREIGN KEY(track_id) REFERENCES tracks(id),
			FOREIGN KEY(rubric_slug) REFERENCES rubrics(slug)
		);`,
		// One row per (profile, quest); submissions upsert against the UNIQUE
		// pair instead of check-then-insert.
		`CREATE TABLE IF NOT EXISTS quest_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_key TEXT NOT NULL,
			quest_id INTEGER NOT NULL,
			state TEXT NOT NULL DEFAULT 'available',
			attempts INTEGER DEFAULT 0,
			best_score INTEGER DEFAULT 0,
			last_submitted_at DATETIME,
			completed_at DATETIME,
			mastered_at DATETIME,

			UNIQUE(profile_key, quest_id),
			FOREIGN KEY(quest_id) REFERENCES quests(id)
		);`,
		`CREATE TABLE IF NOT EXISTS boss_runs (
			id TEXT PRIMARY KEY,
			profile_key TEXT NOT NULL,
			boss_id INTEGER NOT NULL,
			hp_remaining INTEGER NOT NULL,
			result TEXT,
			started_at DATETIME NOT NULL,
			completed_at DATETIME,

			FOREIGN KEY(boss_id) REFERENCES bosses(id)
		);`,
		// At most one active encounter per profile, enforced by the database
		// rather than an application-level existence check.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_boss_runs_active ON boss_runs(profile_key) WHERE result IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_quest_progress_profile ON quest_progress(profile_key);`,
		`CREATE INDEX IF NOT EXISTS idx_boss_runs_profile_started ON boss_runs(profile_key, started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_track ON quests(track_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
