package engine

import (
	"fmt"
	"strings"
)

// ChoreState is the lifecycle state of one (kid, chore) record.
type ChoreState string

const (
	StatePending          ChoreState = "pending"
	StateClaimed          ChoreState = "claimed"
	StateApproved         ChoreState = "approved"
	StateOverdue          ChoreState = "overdue"
	StateCompletedByOther ChoreState = "completed_by_other"
)

func (s ChoreState) IsValid() bool {
	switch s {
	case StatePending, StateClaimed, StateApproved, StateOverdue, StateCompletedByOther:
		return true
	default:
		return false
	}
}

// CompletionCriteria controls how a multi-kid chore is satisfied.
type CompletionCriteria string

const (
	CriteriaIndependent CompletionCriteria = "independent"
	CriteriaSharedAll   CompletionCriteria = "shared_all"
	CriteriaSharedFirst CompletionCriteria = "shared_first"
)

func (c CompletionCriteria) IsValid() bool {
	switch c {
	case CriteriaIndependent, CriteriaSharedAll, CriteriaSharedFirst:
		return true
	default:
		return false
	}
}

func ParseCompletionCriteria(input string) (CompletionCriteria, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return CriteriaIndependent, nil
	}
	c := CompletionCriteria(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid completion criteria: %q", input)
	}
	return c, nil
}

// ResetMode controls how often a chore may be re-earned and when its
// "already approved" gate clears.
type ResetMode string

const (
	ResetAtMidnightOnce  ResetMode = "at_midnight_once"
	ResetAtMidnightMulti ResetMode = "at_midnight_multi"
	ResetAtDueDateOnce   ResetMode = "at_due_date_once"
	ResetAtDueDateMulti  ResetMode = "at_due_date_multi"
	ResetUponCompletion  ResetMode = "upon_completion"
)

func (m ResetMode) IsValid() bool {
	switch m {
	case ResetAtMidnightOnce, ResetAtMidnightMulti, ResetAtDueDateOnce, ResetAtDueDateMulti, ResetUponCompletion:
		return true
	default:
		return false
	}
}

// OncePerPeriod reports whether the mode permits at most one approval per
// period.
func (m ResetMode) OncePerPeriod() bool {
	return m == ResetAtMidnightOnce || m == ResetAtDueDateOnce
}

func ParseResetMode(input string) (ResetMode, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return ResetAtMidnightOnce, nil
	}
	m := ResetMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid reset mode: %q", input)
	}
	return m, nil
}

// OverdueMode controls whether and how a missed due date is surfaced.
type OverdueMode string

const (
	OverdueAtDueDate          OverdueMode = "at_due_date"
	OverdueNever              OverdueMode = "never_overdue"
	OverdueAtDueDateThenReset OverdueMode = "at_due_date_then_reset"
)

func (m OverdueMode) IsValid() bool {
	switch m {
	case OverdueAtDueDate, OverdueNever, OverdueAtDueDateThenReset:
		return true
	default:
		return false
	}
}

func ParseOverdueMode(input string) (OverdueMode, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return OverdueAtDueDate, nil
	}
	m := OverdueMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid overdue mode: %q", input)
	}
	return m, nil
}

// PendingClaimAction decides what a boundary reset does with a claim that was
// never approved or rejected.
type PendingClaimAction string

const (
	PendingHold        PendingClaimAction = "hold"
	PendingClear       PendingClaimAction = "clear"
	PendingAutoApprove PendingClaimAction = "auto_approve"
)

func (a PendingClaimAction) IsValid() bool {
	switch a {
	case PendingHold, PendingClear, PendingAutoApprove:
		return true
	default:
		return false
	}
}

func ParsePendingClaimAction(input string) (PendingClaimAction, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return PendingClear, nil
	}
	a := PendingClaimAction(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid pending claim action: %q", input)
	}
	return a, nil
}
