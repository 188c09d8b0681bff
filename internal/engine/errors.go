package engine

import "fmt"

// InvalidTransitionError is returned when a claim/approve/etc. call violates
// the lifecycle rules. No state change happened.
type InvalidTransitionError struct {
	Op     string
	Kid    string
	Chore  string
	Reason string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s/%s: %s", e.Op, e.Kid, e.Chore, e.Reason)
}

// UnknownEntityError is returned when a kid, chore, reward or penalty id does
// not resolve.
type UnknownEntityError struct {
	Kind string
	ID   string
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.ID)
}

// PersistenceError wraps a failed durable commit. The in-memory transition it
// followed is kept; the next successful commit reconciles.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// MissingBucketError is returned by a tenant write against a bucket set that
// genesis never created (or that a data reset tore down). The write is
// skipped; the set is never recreated by the tenant.
type MissingBucketError struct {
	Scope string
	Owner string
}

func (e MissingBucketError) Error() string {
	return fmt.Sprintf("bucket set missing for %s %s", e.Scope, e.Owner)
}
