package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const DefaultProfileKey = "main"

// DefaultIntegrity is the starting integrity for a fresh profile.
const DefaultIntegrity = 100

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Get(ctx context.Context, key string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, xp, integrity, flags FROM profiles WHERE key = ?`, key)

	var p Profile
	var flagsRaw sql.NullString
	if err := row.Scan(&p.Key, &p.XP, &p.Integrity, &flagsRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	if flagsRaw.Valid && flagsRaw.String != "" {
		if err := json.Unmarshal([]byte(flagsRaw.String), &p.Flags); err != nil {
			return nil, fmt.Errorf("unmarshal profile flags: %w", err)
		}
	}
	return &p, nil
}

func (r *ProfileRepo) GetOrCreate(ctx context.Context, key string) (*Profile, error) {
	p, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO profiles (key, integrity) VALUES (?, ?)`, key, DefaultIntegrity); err != nil {
		return nil, fmt.Errorf("profile insert: %w", err)
	}
	return r.Get(ctx, key)
}

// Update writes the whole profile, flags included. Flags are reassigned
// wholesale so an unlock is never lost to partial mutation.
func (r *ProfileRepo) Update(ctx context.Context, p *Profile) error {
	flagsJSON, err := json.Marshal(p.Flags)
	if err != nil {
		return fmt.Errorf("marshal profile flags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE profiles
		SET xp = ?, integrity = ?, flags = ?
		WHERE key = ?
	`, p.XP, p.Integrity, string(flagsJSON), p.Key)
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	return nil
}
