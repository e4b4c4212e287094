package memstore

import (
	"context"
	"sort"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/loan"
	"lenme-backend/internal/domain/offer"
	"lenme-backend/internal/domain/payment"
	"lenme-backend/internal/domain/transaction"
)

// The repo types below hold entities by value, hand out pointers to copies
// and write back on Save — mirroring database semantics closely enough for
// usecase tests.

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(_ context.Context, a *account.Account) error {
	a.ID = r.s.nextNumericID()
	r.s.accounts[a.AccountID] = *a
	return nil
}

func (r *accountRepo) GetByAccountID(_ context.Context, accountID string) (*account.Account, error) {
	a, ok := r.s.accounts[accountID]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) GetByAccountIDForUpdate(ctx context.Context, accountID string) (*account.Account, error) {
	return r.GetByAccountID(ctx, accountID)
}

func (r *accountRepo) Save(_ context.Context, a *account.Account) error {
	r.s.accounts[a.AccountID] = *a
	return nil
}

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *loan.Loan) error {
	l.ID = r.s.nextNumericID()
	r.s.loans[l.LoanID] = *l
	return nil
}

func (r *loanRepo) GetByLoanID(_ context.Context, loanID string) (*loan.Loan, error) {
	l, ok := r.s.loans[loanID]
	if !ok {
		return nil, loan.ErrNotFound
	}
	return &l, nil
}

func (r *loanRepo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loan.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *loanRepo) Save(_ context.Context, l *loan.Loan) error {
	r.s.loans[l.LoanID] = *l
	return nil
}

func (r *loanRepo) ListByStatus(_ context.Context, status loan.Status) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.Status == status {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type offerRepo struct{ s *Store }

func (r *offerRepo) Create(_ context.Context, o *offer.Offer) error {
	o.ID = r.s.nextNumericID()
	r.s.offers[o.OfferID] = *o
	return nil
}

func (r *offerRepo) GetByOfferID(_ context.Context, offerID string) (*offer.Offer, error) {
	o, ok := r.s.offers[offerID]
	if !ok {
		return nil, offer.ErrNotFound
	}
	return &o, nil
}

func (r *offerRepo) Save(_ context.Context, o *offer.Offer) error {
	r.s.offers[o.OfferID] = *o
	return nil
}

func (r *offerRepo) list(loanID uint64, keep func(offer.Offer) bool) []offer.Offer {
	var out []offer.Offer
	for _, o := range r.s.offers {
		if o.LoanID == loanID && keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *offerRepo) ListByLoanID(_ context.Context, loanID uint64) ([]offer.Offer, error) {
	return r.list(loanID, func(o offer.Offer) bool { return o.Status != offer.StatusRejected }), nil
}

func (r *offerRepo) ListPendingByLoanID(_ context.Context, loanID uint64) ([]offer.Offer, error) {
	return r.list(loanID, func(o offer.Offer) bool { return o.Status == offer.StatusPending }), nil
}

func (r *offerRepo) GetActiveByLoanAndLender(_ context.Context, loanID uint64, lenderID string) (*offer.Offer, error) {
	for _, o := range r.s.offers {
		if o.LoanID == loanID && o.LenderID == lenderID && !o.Terminal() {
			return &o, nil
		}
	}
	return nil, offer.ErrNotFound
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) CreateBatch(_ context.Context, ps []payment.Payment) error {
	for i := range ps {
		ps[i].ID = r.s.nextNumericID()
		r.s.payments[ps[i].PaymentID] = ps[i]
	}
	return nil
}

func (r *paymentRepo) GetByPaymentID(_ context.Context, paymentID string) (*payment.Payment, error) {
	p, ok := r.s.payments[paymentID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepo) Save(_ context.Context, p *payment.Payment) error {
	r.s.payments[p.PaymentID] = *p
	return nil
}

func (r *paymentRepo) ListByLoanID(_ context.Context, loanID uint64) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *paymentRepo) FirstUnpaidByLoanID(ctx context.Context, loanID uint64) (*payment.Payment, error) {
	ps, _ := r.ListByLoanID(ctx, loanID)
	for _, p := range ps {
		if !p.Paid {
			cp := p
			return &cp, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (r *paymentRepo) CountUnpaidByLoanID(ctx context.Context, loanID uint64) (int64, error) {
	ps, _ := r.ListByLoanID(ctx, loanID)
	var n int64
	for _, p := range ps {
		if !p.Paid {
			n++
		}
	}
	return n, nil
}

type txRepo struct{ s *Store }

func (r *txRepo) Create(_ context.Context, t *transaction.Transaction) error {
	t.ID = r.s.nextNumericID()
	r.s.txs = append(r.s.txs, *t)
	return nil
}

func (r *txRepo) ListByPair(_ context.Context, fromAccountID, toAccountID string) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	for _, t := range r.s.txs {
		if t.FromAccountID == fromAccountID && t.ToAccountID == toAccountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *txRepo) ListByAccountID(_ context.Context, accountID string) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	for _, t := range r.s.txs {
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

var (
	_ account.Repository     = (*accountRepo)(nil)
	_ loan.Repository        = (*loanRepo)(nil)
	_ offer.Repository       = (*offerRepo)(nil)
	_ payment.Repository     = (*paymentRepo)(nil)
	_ transaction.Repository = (*txRepo)(nil)
)
