package payment

import "context"

type Repository interface {
	// CreateBatch inserts a full schedule in one go.
	CreateBatch(ctx context.Context, ps []Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	Save(ctx context.Context, p *Payment) error
	// ListByLoanID returns the schedule ordered by sequence.
	ListByLoanID(ctx context.Context, loanID uint64) ([]Payment, error)
	// FirstUnpaidByLoanID returns the lowest-sequence unpaid installment, or
	// ErrNotFound when everything is settled.
	FirstUnpaidByLoanID(ctx context.Context, loanID uint64) (*Payment, error)
	// CountUnpaidByLoanID counts unsettled installments.
	CountUnpaidByLoanID(ctx context.Context, loanID uint64) (int64, error)
}
