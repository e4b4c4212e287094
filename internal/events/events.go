package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the signals the core hands to external collaborators
// (notification/late-fee delivery lives outside this service).
type Type string

const (
	TypePaymentCollected Type = "payment.collected"
	TypePaymentOverdue   Type = "payment.overdue"
	TypeLoanDefaulted    Type = "loan.defaulted"
	TypeLoanCompleted    Type = "loan.completed"
)

// Event is the wire payload published to the side channel.
type Event struct {
	EventID    string    `json:"event_id"`
	Type       Type      `json:"type"`
	LoanID     string    `json:"loan_id"`
	PaymentID  string    `json:"payment_id,omitempty"`
	AccountID  string    `json:"account_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	LateFee    string    `json:"late_fee,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps a fresh event with a unique id.
func New(t Type, occurredAt time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       t,
		OccurredAt: occurredAt.UTC(),
	}
}

// Publisher delivers events to the external side channel. Publishing is
// best-effort from the core's point of view: a failed publish never rolls
// back a committed balance movement.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards everything; used in tests and when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
