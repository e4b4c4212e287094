package account

import (
	"context"
	"fmt"

	domainAccount "lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/transaction"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/internal/lock"
	"lenme-backend/pkg/clock"
	"lenme-backend/pkg/id"

	"github.com/shopspring/decimal"
)

// Usecase manages participant accounts and the money that enters or leaves
// the platform. Movements between accounts belong to the ledger; deposits
// and withdrawals are the platform's edge with the outside world.
type Usecase struct {
	uowork uow.UnitOfWork
	locks  *lock.Registry
	clk    clock.Clock
}

func NewUsecase(u uow.UnitOfWork, locks *lock.Registry, clk clock.Clock) *Usecase {
	return &Usecase{uowork: u, locks: locks, clk: clk}
}

func (u *Usecase) Create(ctx context.Context, ownerName string) (*AccountDTO, error) {
	if ownerName == "" {
		return nil, fmt.Errorf("%w: owner name required", domainAccount.ErrValidation)
	}
	a := &domainAccount.Account{
		AccountID: id.NewID32(),
		OwnerName: ownerName,
	}
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		return r.Accounts.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// Deposit books external money onto the account. No Transaction row: those
// record movements between platform accounts only.
func (u *Usecase) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*AccountDTO, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount %s", domainAccount.ErrValidation, amount)
	}
	release, err := u.locks.Acquire(ctx, lock.AccountKey(accountID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *AccountDTO
	err = u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByAccountIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		a.Credit(amount)
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Withdraw takes money off the platform. Only the available balance may
// leave; held reservations stay put.
func (u *Usecase) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*AccountDTO, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdraw amount %s", domainAccount.ErrValidation, amount)
	}
	release, err := u.locks.Acquire(ctx, lock.AccountKey(accountID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *AccountDTO
	err = u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByAccountIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := a.Debit(amount, false); err != nil {
			return fmt.Errorf("withdraw %s from account %s: %w", amount, accountID, err)
		}
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, accountID string) (*AccountDTO, error) {
	var dto *AccountDTO
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Statement lists every ledger movement touching the account, oldest first.
func (u *Usecase) Statement(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Accounts.GetByAccountID(ctx, accountID); err != nil {
			return err
		}
		var err error
		out, err = r.Transactions.ListByAccountID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toDTO(a *domainAccount.Account) *AccountDTO {
	return &AccountDTO{
		AccountID:       a.AccountID,
		OwnerName:       a.OwnerName,
		TotalBalance:    a.TotalBalance,
		ReservedBalance: a.ReservedBalance,
		Available:       a.Available(),
	}
}
