package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
)

// LoadRegistry reads the whole household into a fresh registry. The engine
// is the single writer afterwards; nothing re-reads the database during
// normal operation.
func LoadRegistry(ctx context.Context, db *sql.DB) (*engine.Registry, error) {
	reg := engine.NewRegistry()

	if err := loadKids(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadChores(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadRecords(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadBuckets(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadRewards(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadPenalties(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadRewardClaims(ctx, db, reg); err != nil {
		return nil, err
	}
	if err := loadBadges(ctx, db, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func loadKids(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name, multiplier, balance FROM kids`)
	if err != nil {
		return fmt.Errorf("load kids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idRaw string
			k     engine.Kid
		)
		if err := rows.Scan(&idRaw, &k.Name, &k.Multiplier, &k.Balance); err != nil {
			return fmt.Errorf("kid scan: %w", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return fmt.Errorf("kid id %q: %w", idRaw, err)
		}
		k.ID = id
		reg.AddKid(&k)
	}
	return rows.Err()
}

func loadChores(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, criteria, reset_mode, overdue_mode, pending_action, interval, due_date, points
		FROM chores
	`)
	if err != nil {
		return fmt.Errorf("load chores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idRaw       string
			description sql.NullString
			criteria    string
			resetMode   string
			overdueMode string
			pending     string
			interval    string
			dueDate     sql.NullTime
			d           engine.ChoreDefinition
		)
		if err := rows.Scan(&idRaw, &d.Name, &description, &criteria, &resetMode, &overdueMode, &pending, &interval, &dueDate, &d.Points); err != nil {
			return fmt.Errorf("chore scan: %w", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return fmt.Errorf("chore id %q: %w", idRaw, err)
		}
		d.ID = id
		d.Description = description.String
		d.Criteria = engine.CompletionCriteria(criteria)
		d.ResetMode = engine.ResetMode(resetMode)
		d.OverdueMode = engine.OverdueMode(overdueMode)
		d.PendingAction = engine.PendingClaimAction(pending)
		d.Interval = engine.Interval(interval)
		if dueDate.Valid {
			due := dueDate.Time
			d.DueDate = &due
		}
		reg.AddChore(&d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	assignRows, err := db.QueryContext(ctx, `SELECT chore_id, kid_id FROM chore_assignments`)
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var choreRaw, kidRaw string
		if err := assignRows.Scan(&choreRaw, &kidRaw); err != nil {
			return fmt.Errorf("assignment scan: %w", err)
		}
		choreID, err := uuid.Parse(choreRaw)
		if err != nil {
			return fmt.Errorf("assignment chore id: %w", err)
		}
		kidID, err := uuid.Parse(kidRaw)
		if err != nil {
			return fmt.Errorf("assignment kid id: %w", err)
		}
		if d, err := reg.Chore(choreID); err == nil {
			d.AssignedKids = append(d.AssignedKids, kidID)
		}
	}
	return assignRows.Err()
}

func loadRecords(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `
		SELECT kid_id, chore_id, state, last_claimed, last_approved, period_start, pending_claims
		FROM chore_records
	`)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kidRaw, choreRaw string
			state            string
			lastClaimed      sql.NullTime
			lastApproved     sql.NullTime
			periodStart      sql.NullTime
			rec              engine.ChoreRecord
		)
		if err := rows.Scan(&kidRaw, &choreRaw, &state, &lastClaimed, &lastApproved, &periodStart, &rec.PendingClaims); err != nil {
			return fmt.Errorf("record scan: %w", err)
		}
		kidID, err := uuid.Parse(kidRaw)
		if err != nil {
			return fmt.Errorf("record kid id: %w", err)
		}
		choreID, err := uuid.Parse(choreRaw)
		if err != nil {
			return fmt.Errorf("record chore id: %w", err)
		}
		rec.KidID = kidID
		rec.ChoreID = choreID
		rec.State = engine.ChoreState(state)
		if lastClaimed.Valid {
			t := lastClaimed.Time
			rec.LastClaimed = &t
		}
		if lastApproved.Valid {
			t := lastApproved.Time
			rec.LastApproved = &t
		}
		if periodStart.Valid {
			rec.PeriodStart = periodStart.Time
		}
		reg.AddRecord(&rec)
	}
	return rows.Err()
}

func loadBuckets(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `
		SELECT kid_id, chore_id, period_type, period_key, claimed, approved, disapproved, overdue, points_earned, points_spent, streak
		FROM buckets
	`)
	if err != nil {
		return fmt.Errorf("load buckets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kidRaw, choreRaw string
			ptRaw, key       string
			entry            engine.BucketEntry
		)
		if err := rows.Scan(&kidRaw, &choreRaw, &ptRaw, &key, &entry.Claimed, &entry.Approved, &entry.Disapproved, &entry.Overdue, &entry.PointsEarned, &entry.PointsSpent, &entry.Streak); err != nil {
			return fmt.Errorf("bucket scan: %w", err)
		}
		kidID, err := uuid.Parse(kidRaw)
		if err != nil {
			return fmt.Errorf("bucket kid id: %w", err)
		}

		var set engine.BucketSet
		if choreRaw == "" {
			kid, err := reg.Kid(kidID)
			if err != nil {
				continue // orphan row, owner deleted
			}
			set = kid.Buckets
		} else {
			choreID, err := uuid.Parse(choreRaw)
			if err != nil {
				return fmt.Errorf("bucket chore id: %w", err)
			}
			rec, ok := reg.RecordIfExists(kidID, choreID)
			if !ok {
				continue
			}
			set = rec.Buckets
		}

		pt := engine.PeriodType(ptRaw)
		if set[pt] == nil {
			continue
		}
		e := entry
		set[pt][key] = &e
	}
	return rows.Err()
}

func loadRewards(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name, description, cost FROM rewards`)
	if err != nil {
		return fmt.Errorf("load rewards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idRaw       string
			description sql.NullString
			w           engine.Reward
		)
		if err := rows.Scan(&idRaw, &w.Name, &description, &w.Cost); err != nil {
			return fmt.Errorf("reward scan: %w", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return fmt.Errorf("reward id: %w", err)
		}
		w.ID = id
		w.Description = description.String
		reg.AddReward(&w)
	}
	return rows.Err()
}

func loadPenalties(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name, points FROM penalties`)
	if err != nil {
		return fmt.Errorf("load penalties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idRaw string
			p     engine.Penalty
		)
		if err := rows.Scan(&idRaw, &p.Name, &p.Points); err != nil {
			return fmt.Errorf("penalty scan: %w", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return fmt.Errorf("penalty id: %w", err)
		}
		p.ID = id
		reg.AddPenalty(&p)
	}
	return rows.Err()
}

func loadRewardClaims(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `SELECT id, reward_id, kid_id, status, claimed_at, resolved_at FROM reward_claims`)
	if err != nil {
		return fmt.Errorf("load reward claims: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idRaw, rewardRaw, kidRaw string
			resolved                 sql.NullTime
			c                        engine.RewardClaim
		)
		if err := rows.Scan(&idRaw, &rewardRaw, &kidRaw, &c.Status, &c.ClaimedAt, &resolved); err != nil {
			return fmt.Errorf("reward claim scan: %w", err)
		}
		var err error
		if c.ID, err = uuid.Parse(idRaw); err != nil {
			return fmt.Errorf("reward claim id: %w", err)
		}
		if c.RewardID, err = uuid.Parse(rewardRaw); err != nil {
			return fmt.Errorf("reward claim reward id: %w", err)
		}
		if c.KidID, err = uuid.Parse(kidRaw); err != nil {
			return fmt.Errorf("reward claim kid id: %w", err)
		}
		if resolved.Valid {
			t := resolved.Time
			c.ResolvedAt = &t
		}
		reg.AddRewardClaim(&c)
	}
	return rows.Err()
}

func loadBadges(ctx context.Context, db *sql.DB, reg *engine.Registry) error {
	rows, err := db.QueryContext(ctx, `SELECT kid_id, badge_id, earned_at FROM badges_earned`)
	if err != nil {
		return fmt.Errorf("load badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kidRaw, badgeID string
			earnedAt        time.Time
		)
		if err := rows.Scan(&kidRaw, &badgeID, &earnedAt); err != nil {
			return fmt.Errorf("badge scan: %w", err)
		}
		kidID, err := uuid.Parse(kidRaw)
		if err != nil {
			return fmt.Errorf("badge kid id: %w", err)
		}
		if kid, err := reg.Kid(kidID); err == nil {
			kid.Badges[badgeID] = earnedAt
		}
	}
	return rows.Err()
}
