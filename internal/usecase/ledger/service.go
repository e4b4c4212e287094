package ledger

import (
	"context"
	"fmt"
	"sort"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/transaction"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/pkg/clock"
	"lenme-backend/pkg/id"

	"github.com/shopspring/decimal"
)

// Ledger implements the balance primitives: reserve (a promise), release
// (undo a promise) and transfer (a settlement). Methods operate on
// transaction-bound repositories — the caller owns the in-process locks and
// the unit of work, so a multi-step operation (accept-offer, payment
// settlement) composes several primitives into one atomic commit.
type Ledger struct {
	clk clock.Clock
}

func New(clk clock.Clock) *Ledger { return &Ledger{clk: clk} }

// Reserve places a hold of amount on the account.
func (l *Ledger) Reserve(ctx context.Context, r uow.Repos, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: reserve amount %s", account.ErrValidation, amount)
	}
	a, err := r.Accounts.GetByAccountIDForUpdate(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.Reserve(amount); err != nil {
		return fmt.Errorf("reserve %s on account %s: %w", amount, accountID, err)
	}
	return r.Accounts.Save(ctx, a)
}

// Release drops a hold of amount on the account. A mismatch surfaces as
// ErrInvariantViolation and is never clamped away.
func (l *Ledger) Release(ctx context.Context, r uow.Repos, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: release amount %s", account.ErrValidation, amount)
	}
	a, err := r.Accounts.GetByAccountIDForUpdate(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.Release(amount); err != nil {
		return fmt.Errorf("release %s on account %s: %w", amount, accountID, err)
	}
	return r.Accounts.Save(ctx, a)
}

// Transfer settles amount from one account to another and appends exactly
// one Transaction. With fromReserved the funds were pre-reserved, so the
// sender's hold shrinks together with its total; otherwise the amount must
// fit in the sender's available balance.
func (l *Ledger) Transfer(ctx context.Context, r uow.Repos, fromID, toID string, amount decimal.Decimal, fromReserved bool, note string) (*transaction.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount %s", account.ErrValidation, amount)
	}
	if fromID == toID {
		return nil, fmt.Errorf("%w: transfer to self", account.ErrValidation)
	}

	// row locks in ascending account id order, same discipline as the
	// in-process registry
	ids := []string{fromID, toID}
	sort.Strings(ids)
	rows := make(map[string]*account.Account, 2)
	for _, aid := range ids {
		a, err := r.Accounts.GetByAccountIDForUpdate(ctx, aid)
		if err != nil {
			return nil, err
		}
		rows[aid] = a
	}
	from, to := rows[fromID], rows[toID]

	if err := from.Debit(amount, fromReserved); err != nil {
		return nil, fmt.Errorf("debit %s from account %s: %w", amount, fromID, err)
	}
	to.Credit(amount)

	if err := r.Accounts.Save(ctx, from); err != nil {
		return nil, err
	}
	if err := r.Accounts.Save(ctx, to); err != nil {
		return nil, err
	}

	t := &transaction.Transaction{
		TxID:          id.NewID32(),
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Note:          note,
		CreatedAt:     l.clk.Now(),
	}
	if err := r.Transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
