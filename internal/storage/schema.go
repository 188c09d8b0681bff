package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kids (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			multiplier REAL NOT NULL DEFAULT 1,
			balance REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS chores (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			criteria TEXT NOT NULL,
			reset_mode TEXT NOT NULL,
			overdue_mode TEXT NOT NULL,
			pending_action TEXT NOT NULL,
			interval TEXT NOT NULL,
			due_date DATETIME,
			points REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chore_assignments (
			chore_id TEXT NOT NULL,
			kid_id TEXT NOT NULL,
			PRIMARY KEY(chore_id, kid_id),
			FOREIGN KEY(chore_id) REFERENCES chores(id),
			FOREIGN KEY(kid_id) REFERENCES kids(id)
		);`,
		`CREATE TABLE IF NOT EXISTS chore_records (
			kid_id TEXT NOT NULL,
			chore_id TEXT NOT NULL,
			state TEXT NOT NULL,
			last_claimed DATETIME,
			last_approved DATETIME,
			period_start DATETIME,
			pending_claims INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(kid_id, chore_id)
		);`,
		// chore_id is '' for the kid-global rollup rows.
		`CREATE TABLE IF NOT EXISTS buckets (
			kid_id TEXT NOT NULL,
			chore_id TEXT NOT NULL DEFAULT '',
			period_type TEXT NOT NULL,
			period_key TEXT NOT NULL,
			claimed INTEGER NOT NULL DEFAULT 0,
			approved INTEGER NOT NULL DEFAULT 0,
			disapproved INTEGER NOT NULL DEFAULT 0,
			overdue INTEGER NOT NULL DEFAULT 0,
			points_earned REAL NOT NULL DEFAULT 0,
			points_spent REAL NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(kid_id, chore_id, period_type, period_key)
		);`,
		`CREATE TABLE IF NOT EXISTS ledger (
			id TEXT PRIMARY KEY,
			kid_id TEXT NOT NULL,
			amount REAL NOT NULL,
			reason TEXT,
			actor TEXT,
			at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rewards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			cost REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reward_claims (
			id TEXT PRIMARY KEY,
			reward_id TEXT NOT NULL,
			kid_id TEXT NOT NULL,
			status TEXT NOT NULL,
			claimed_at DATETIME NOT NULL,
			resolved_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS penalties (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			points REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS badges_earned (
			kid_id TEXT NOT NULL,
			badge_id TEXT NOT NULL,
			earned_at DATETIME NOT NULL,
			PRIMARY KEY(kid_id, badge_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_kid_at ON ledger(kid_id, at);`,
		`CREATE INDEX IF NOT EXISTS idx_reward_claims_status ON reward_claims(status);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
