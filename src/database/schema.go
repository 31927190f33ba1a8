package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`DO $$ BEGIN
		CREATE TYPE priority_enum AS ENUM ('high', 'medium', 'low');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS ideas (
		id            SERIAL PRIMARY KEY,
		content       TEXT NOT NULL,
		is_voice      BOOLEAN NOT NULL DEFAULT FALSE,
		priority      priority_enum NOT NULL DEFAULT 'medium',
		improved_text TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ideas_created_at ON ideas (created_at DESC)`,
}

// EnsureSchema creates the ideas table and its priority type when missing.
// Safe to run on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	db.logger.Info("スキーマを確認しました")
	return nil
}
