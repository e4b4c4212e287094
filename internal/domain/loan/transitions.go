package loan

import "time"

// transitions is the single source of truth for the lifecycle. No status
// change happens outside this table.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusOpen},
	StatusOpen:     {StatusOffered},
	StatusOffered:  {StatusOpen, StatusAccepted},
	StatusAccepted: {StatusFunded},
	StatusFunded:   {StatusCompleted, StatusDefaulted},
	// completed and defaulted are terminal
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo advances the loan or fails with ErrInvalidState. It only
// mutates Status and StatusUpdatedAt; callers attach the side effects
// (ledger moves, schedule generation) in the same transaction.
func (l *Loan) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(l.Status, to) {
		return ErrInvalidState
	}
	l.Status = to
	l.StatusUpdatedAt = now.UTC()
	return nil
}
