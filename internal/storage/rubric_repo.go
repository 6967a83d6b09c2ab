package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type RubricRepo struct {
	db DBTX
}

func NewRubricRepo(db DBTX) *RubricRepo {
	return &RubricRepo{db: db}
}

func (r *RubricRepo) Get(ctx context.Context, slug string) (*Rubric, error) {
	row := r.db.QueryRowContext(ctx, `SELECT slug, spec FROM rubrics WHERE slug = ?`, slug)
	var rb Rubric
	if err := row.Scan(&rb.Slug, &rb.Spec); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("rubric get: %w", err)
	}
	return &rb, nil
}

func (r *RubricRepo) Upsert(ctx context.Context, rb Rubric) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rubrics (slug, spec) VALUES (?, ?)
		ON CONFLICT(slug) DO UPDATE SET spec = excluded.spec
	`, rb.Slug, rb.Spec)
	if err != nil {
		return fmt.Errorf("rubric upsert: %w", err)
	}
	return nil
}
