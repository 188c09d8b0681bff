package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
)

// Store is the durable side of the engine's commit seam. Each Commit call
// persists one logical transaction atomically.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Commit(ctx context.Context, m *engine.Mutation) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, k := range m.Kids {
			if err := upsertKid(ctx, tx, k); err != nil {
				return err
			}
		}
		for _, d := range m.Chores {
			if err := upsertChore(ctx, tx, d); err != nil {
				return err
			}
		}
		for _, rec := range m.Records {
			if err := upsertRecord(ctx, tx, rec); err != nil {
				return err
			}
		}
		for _, e := range m.Ledger {
			if err := insertLedger(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, c := range m.RewardClaims {
			if err := upsertRewardClaim(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, b := range m.Badges {
			if err := insertBadge(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertKid(ctx context.Context, tx *sql.Tx, k *engine.Kid) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO kids (id, name, multiplier, balance) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, multiplier = excluded.multiplier, balance = excluded.balance
	`, k.ID.String(), k.Name, k.Multiplier, k.Balance)
	if err != nil {
		return fmt.Errorf("kid upsert: %w", err)
	}
	return saveBuckets(ctx, tx, k.ID.String(), "", k.Buckets)
}

func upsertChore(ctx context.Context, tx *sql.Tx, d *engine.ChoreDefinition) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chores (id, name, description, criteria, reset_mode, overdue_mode, pending_action, interval, due_date, points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			criteria = excluded.criteria,
			reset_mode = excluded.reset_mode,
			overdue_mode = excluded.overdue_mode,
			pending_action = excluded.pending_action,
			interval = excluded.interval,
			due_date = excluded.due_date,
			points = excluded.points
	`, d.ID.String(), d.Name, d.Description, string(d.Criteria), string(d.ResetMode), string(d.OverdueMode), string(d.PendingAction), string(d.Interval), d.DueDate, d.Points)
	if err != nil {
		return fmt.Errorf("chore upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chore_assignments WHERE chore_id = ?`, d.ID.String()); err != nil {
		return fmt.Errorf("chore assignments clear: %w", err)
	}
	for _, kidID := range d.AssignedKids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chore_assignments (chore_id, kid_id) VALUES (?, ?)`, d.ID.String(), kidID.String()); err != nil {
			return fmt.Errorf("chore assignment insert: %w", err)
		}
	}
	return nil
}

func upsertRecord(ctx context.Context, tx *sql.Tx, rec *engine.ChoreRecord) error {
	var periodStart *time.Time
	if !rec.PeriodStart.IsZero() {
		periodStart = &rec.PeriodStart
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chore_records (kid_id, chore_id, state, last_claimed, last_approved, period_start, pending_claims)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kid_id, chore_id) DO UPDATE SET
			state = excluded.state,
			last_claimed = excluded.last_claimed,
			last_approved = excluded.last_approved,
			period_start = excluded.period_start,
			pending_claims = excluded.pending_claims
	`, rec.KidID.String(), rec.ChoreID.String(), string(rec.State), rec.LastClaimed, rec.LastApproved, periodStart, rec.PendingClaims)
	if err != nil {
		return fmt.Errorf("record upsert: %w", err)
	}
	return saveBuckets(ctx, tx, rec.KidID.String(), rec.ChoreID.String(), rec.Buckets)
}

// saveBuckets replaces the owner's bucket rows wholesale so pruned periods
// disappear from disk too.
func saveBuckets(ctx context.Context, tx *sql.Tx, kidID, choreID string, set engine.BucketSet) error {
	if set == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM buckets WHERE kid_id = ? AND chore_id = ?`, kidID, choreID); err != nil {
		return fmt.Errorf("buckets clear: %w", err)
	}
	for _, pt := range engine.PeriodTypes {
		for key, entry := range set[pt] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO buckets (kid_id, chore_id, period_type, period_key, claimed, approved, disapproved, overdue, points_earned, points_spent, streak)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, kidID, choreID, string(pt), key, entry.Claimed, entry.Approved, entry.Disapproved, entry.Overdue, entry.PointsEarned, entry.PointsSpent, entry.Streak)
			if err != nil {
				return fmt.Errorf("bucket insert: %w", err)
			}
		}
	}
	return nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, e *engine.LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO ledger (id, kid_id, amount, reason, actor, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.KidID.String(), e.Amount, e.Reason, e.Actor, e.At)
	if err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	return nil
}

func upsertRewardClaim(ctx context.Context, tx *sql.Tx, c *engine.RewardClaim) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reward_claims (id, reward_id, kid_id, status, claimed_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, resolved_at = excluded.resolved_at
	`, c.ID.String(), c.RewardID.String(), c.KidID.String(), c.Status, c.ClaimedAt, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("reward claim upsert: %w", err)
	}
	return nil
}

func insertBadge(ctx context.Context, tx *sql.Tx, b *engine.BadgeAward) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO badges_earned (kid_id, badge_id, earned_at)
		VALUES (?, ?, ?)
	`, b.KidID.String(), b.BadgeID, b.At)
	if err != nil {
		return fmt.Errorf("badge insert: %w", err)
	}
	return nil
}

// SaveReward persists a reward definition outside the engine commit path
// (household loading).
func (s *Store) SaveReward(ctx context.Context, w *engine.Reward) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewards (id, name, description, cost) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description, cost = excluded.cost
	`, w.ID.String(), w.Name, w.Description, w.Cost)
	if err != nil {
		return fmt.Errorf("reward upsert: %w", err)
	}
	return nil
}

// SavePenalty persists a penalty definition.
func (s *Store) SavePenalty(ctx context.Context, p *engine.Penalty) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO penalties (id, name, points) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, points = excluded.points
	`, p.ID.String(), p.Name, p.Points)
	if err != nil {
		return fmt.Errorf("penalty upsert: %w", err)
	}
	return nil
}

// SaveKid persists a kid outside the engine commit path (household loading).
func (s *Store) SaveKid(ctx context.Context, k *engine.Kid) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return upsertKid(ctx, tx, k)
	})
}

// SaveChore persists a chore definition outside the engine commit path.
func (s *Store) SaveChore(ctx context.Context, d *engine.ChoreDefinition) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return upsertChore(ctx, tx, d)
	})
}

// LedgerHistory returns a kid's most recent ledger entries, newest first.
func (s *Store) LedgerHistory(ctx context.Context, kidID uuid.UUID, limit int) ([]engine.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kid_id, amount, reason, actor, at
		FROM ledger
		WHERE kid_id = ?
		ORDER BY at DESC
		LIMIT ?
	`, kidID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("ledger history: %w", err)
	}
	defer rows.Close()

	var out []engine.LedgerEntry
	for rows.Next() {
		var (
			e             engine.LedgerEntry
			idRaw, kidRaw string
			reason, actor sql.NullString
		)
		if err := rows.Scan(&idRaw, &kidRaw, &e.Amount, &reason, &actor, &e.At); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		e.ID, _ = uuid.Parse(idRaw)
		e.KidID, _ = uuid.Parse(kidRaw)
		e.Reason = reason.String
		e.Actor = actor.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	return out, nil
}
