package loan

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition_LegalMoves(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusDraft, StatusOpen},
		{StatusOpen, StatusOffered},
		{StatusOffered, StatusOpen},
		{StatusOffered, StatusAccepted},
		{StatusAccepted, StatusFunded},
		{StatusFunded, StatusCompleted},
		{StatusFunded, StatusDefaulted},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}
}

func TestCanTransition_IllegalMoves(t *testing.T) {
	illegal := []struct{ from, to Status }{
		{StatusDraft, StatusOffered},
		{StatusDraft, StatusFunded},
		{StatusOpen, StatusAccepted},
		{StatusOpen, StatusDraft},
		{StatusOffered, StatusFunded},
		{StatusAccepted, StatusOpen},
		{StatusAccepted, StatusCompleted},
		{StatusFunded, StatusOpen},
		{StatusCompleted, StatusOpen},
		{StatusCompleted, StatusFunded},
		{StatusDefaulted, StatusFunded},
		{StatusDefaulted, StatusCompleted},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
		}
	}
}

func TestTransitionTo_SetsStatusAndTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := &Loan{Status: StatusDraft}

	if err := l.TransitionTo(StatusOpen, now); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}
	if l.Status != StatusOpen {
		t.Fatalf("status = %s", l.Status)
	}
	if !l.StatusUpdatedAt.Equal(now) {
		t.Fatalf("StatusUpdatedAt = %v, want %v", l.StatusUpdatedAt, now)
	}
}

func TestTransitionTo_IllegalMoveLeavesLoanUntouched(t *testing.T) {
	l := &Loan{Status: StatusFunded}
	err := l.TransitionTo(StatusOpen, time.Now())
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if l.Status != StatusFunded {
		t.Fatalf("status mutated on illegal transition: %s", l.Status)
	}
}
