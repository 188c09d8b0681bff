package engine

import (
	"context"
	"time"
)

type BadgeKind string

const (
	BadgeChoreCount BadgeKind = "chore_count"
	BadgeStreak     BadgeKind = "streak"
)

// Badge is a milestone a kid earns once and keeps forever.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Kind        BadgeKind
	Threshold   int
}

// DefaultBadges are evaluated against the kid-global lifetime bucket after
// every approval.
var DefaultBadges = []Badge{
	{ID: "first_chore", Name: "First Chore", Description: "Get a chore approved", Icon: "🌱", Kind: BadgeChoreCount, Threshold: 1},
	{ID: "helper", Name: "Helper", Description: "10 approved chores", Icon: "🧹", Kind: BadgeChoreCount, Threshold: 10},
	{ID: "workhorse", Name: "Workhorse", Description: "50 approved chores", Icon: "🏅", Kind: BadgeChoreCount, Threshold: 50},
	{ID: "champion", Name: "Chore Champion", Description: "100 approved chores", Icon: "🏆", Kind: BadgeChoreCount, Threshold: 100},
	{ID: "streak_3", Name: "On a Roll", Description: "3-day approval streak", Icon: "🔥", Kind: BadgeStreak, Threshold: 3},
	{ID: "streak_7", Name: "Full Week", Description: "7-day approval streak", Icon: "⚡", Kind: BadgeStreak, Threshold: 7},
	{ID: "streak_30", Name: "Habit Master", Description: "30-day approval streak", Icon: "💫", Kind: BadgeStreak, Threshold: 30},
}

// BadgeByID looks up a default badge definition.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range DefaultBadges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// awardBadges runs after the cache has absorbed an approval, so thresholds
// are judged on up-to-date lifetime numbers. Each badge is awarded at most
// once; awards are their own small transaction.
func (s *Service) awardBadges(ctx context.Context, kid *Kid, now time.Time) {
	all := kid.Buckets.AllTime()
	if all == nil {
		return
	}

	var newAwards []*BadgeAward
	for _, b := range DefaultBadges {
		if _, earned := kid.Badges[b.ID]; earned {
			continue
		}
		var value int
		switch b.Kind {
		case BadgeChoreCount:
			value = all.Approved
		case BadgeStreak:
			value = all.Streak
		}
		if value < b.Threshold {
			continue
		}
		kid.Badges[b.ID] = now
		newAwards = append(newAwards, &BadgeAward{KidID: kid.ID, BadgeID: b.ID, At: now})
	}
	if len(newAwards) == 0 {
		return
	}

	if err := s.commit(ctx, "badges", &Mutation{Badges: newAwards}); err != nil {
		s.log.Error("badge award not persisted", "kid", kid.Name, "err", err)
	}
	for _, award := range newAwards {
		s.bus.Publish(BadgeEarned{KidID: award.KidID, BadgeID: award.BadgeID, At: award.At})
	}
}
