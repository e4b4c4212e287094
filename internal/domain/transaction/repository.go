package transaction

import "context"

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	// ListByPair returns every movement from one account to another, oldest
	// first. Used by the audit cross-check, never by balance computation.
	ListByPair(ctx context.Context, fromAccountID, toAccountID string) ([]Transaction, error)
	ListByAccountID(ctx context.Context, accountID string) ([]Transaction, error)
}
