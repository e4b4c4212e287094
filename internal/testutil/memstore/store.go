package memstore

import (
	"context"
	"sort"
	"sync"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/loan"
	"lenme-backend/internal/domain/offer"
	"lenme-backend/internal/domain/payment"
	"lenme-backend/internal/domain/transaction"
	"lenme-backend/internal/domain/uow"
)

// Store is an in-memory implementation of every repository plus the unit of
// work, for usecase tests. WithinTx snapshots the whole state and restores
// it when fn fails, so atomic all-or-nothing behavior is observable without
// a database.
type Store struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	loans    map[string]loan.Loan
	offers   map[string]offer.Offer
	payments map[string]payment.Payment
	txs      []transaction.Transaction
	nextID   uint64
}

func New() *Store {
	return &Store{
		accounts: make(map[string]account.Account),
		loans:    make(map[string]loan.Loan),
		offers:   make(map[string]offer.Offer),
		payments: make(map[string]payment.Payment),
	}
}

func (s *Store) nextNumericID() uint64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	accounts map[string]account.Account
	loans    map[string]loan.Loan
	offers   map[string]offer.Offer
	payments map[string]payment.Payment
	txs      []transaction.Transaction
	nextID   uint64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		accounts: make(map[string]account.Account, len(s.accounts)),
		loans:    make(map[string]loan.Loan, len(s.loans)),
		offers:   make(map[string]offer.Offer, len(s.offers)),
		payments: make(map[string]payment.Payment, len(s.payments)),
		txs:      append([]transaction.Transaction(nil), s.txs...),
		nextID:   s.nextID,
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.loans {
		snap.loans[k] = v
	}
	for k, v := range s.offers {
		snap.offers[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.loans = snap.loans
	s.offers = snap.offers
	s.payments = snap.payments
	s.txs = snap.txs
	s.nextID = snap.nextID
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{
		Accounts:     &accountRepo{s: s},
		Loans:        &loanRepo{s: s},
		Offers:       &offerRepo{s: s},
		Payments:     &paymentRepo{s: s},
		Transactions: &txRepo{s: s},
	}
}

// Repos returns repositories for direct (non-transactional) use in tests.
func (s *Store) Repos() uow.Repos { return s.repos() }

// WithinTx serializes on the store mutex and rolls every change back when fn
// returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(s.repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

var _ uow.UnitOfWork = (*Store)(nil)

// ---- seed/assert helpers ----

// SeedAccount inserts an account and returns its public id.
func (s *Store) SeedAccount(a account.Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextNumericID()
	}
	s.accounts[a.AccountID] = a
	return a.AccountID
}

func (s *Store) Account(accountID string) account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[accountID]
}

func (s *Store) Loan(loanID string) loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loans[loanID]
}

func (s *Store) Offer(offerID string) offer.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers[offerID]
}

func (s *Store) PaymentsOf(loanNumericID uint64) []payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payment.Payment
	for _, p := range s.payments {
		if p.LoanID == loanNumericID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func (s *Store) Transactions() []transaction.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transaction.Transaction(nil), s.txs...)
}
