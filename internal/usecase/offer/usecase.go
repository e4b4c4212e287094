package offer

import (
	"context"
	"errors"
	"fmt"

	domainLoan "lenme-backend/internal/domain/loan"
	domainOffer "lenme-backend/internal/domain/offer"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/internal/lock"
	"lenme-backend/internal/usecase/ledger"
	"lenme-backend/pkg/clock"
	"lenme-backend/pkg/id"
)

// Usecase is the offer market: competing reservations against a loan, one
// winner, everyone else released. platformAccountID receives the platform
// fee at acceptance.
type Usecase struct {
	uowork            uow.UnitOfWork
	locks             *lock.Registry
	led               *ledger.Ledger
	clk               clock.Clock
	platformAccountID string
}

func NewUsecase(u uow.UnitOfWork, locks *lock.Registry, led *ledger.Ledger, clk clock.Clock, platformAccountID string) *Usecase {
	return &Usecase{uowork: u, locks: locks, led: led, clk: clk, platformAccountID: platformAccountID}
}

// Submit reserves principal + platform fee on the lender's account and
// records a PENDING offer. The first offer moves the loan OPEN -> OFFERED;
// later ones accumulate.
func (u *Usecase) Submit(ctx context.Context, in SubmitOfferInput) (*OfferDTO, error) {
	if len(in.LenderID) != 32 {
		return nil, fmt.Errorf("%w: lender id must be 32-char hex", domainLoan.ErrValidation)
	}
	if in.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: rate must be non-negative", domainLoan.ErrValidation)
	}

	release, err := u.locks.Acquire(ctx, lock.LoanKey(in.LoanID), lock.AccountKey(in.LenderID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *OfferDTO
	err = u.uowork.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusOpen && l.Status != domainLoan.StatusOffered {
			return fmt.Errorf("%w: loan is %s, not open for offers", domainLoan.ErrInvalidState, l.Status)
		}
		if l.BorrowerID == in.LenderID {
			return fmt.Errorf("%w: borrower cannot lend to own loan", domainLoan.ErrValidation)
		}
		if _, err := r.Offers.GetActiveByLoanAndLender(ctx, l.ID, in.LenderID); err == nil {
			return domainOffer.ErrDuplicate
		} else if !errors.Is(err, domainOffer.ErrNotFound) {
			return err
		}

		total := l.TotalReservable()
		if err := u.led.Reserve(ctx, r, in.LenderID, total); err != nil {
			return err
		}

		o := &domainOffer.Offer{
			OfferID:        id.NewID32(),
			LoanID:         l.ID,
			LenderID:       in.LenderID,
			InterestRate:   in.Rate,
			ReservedAmount: total,
			Status:         domainOffer.StatusPending,
			CreatedAt:      u.clk.Now(),
		}
		if err := r.Offers.Create(ctx, o); err != nil {
			return err
		}

		if l.Status == domainLoan.StatusOpen {
			if err := l.TransitionTo(domainLoan.StatusOffered, u.clk.Now()); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
		}
		dto = toDTO(l.LoanID, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// List returns a loan's offers, REJECTED ones excluded.
func (u *Usecase) List(ctx context.Context, loanID string) ([]OfferDTO, error) {
	var out []OfferDTO
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		os, err := r.Offers.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		out = make([]OfferDTO, 0, len(os))
		for i := range os {
			out = append(out, *toDTO(l.LoanID, &os[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectWinner ranks PENDING offers: lowest rate wins, ties broken by
// earliest submission. This is the sole ranking rule.
func SelectWinner(offers []domainOffer.Offer) *domainOffer.Offer {
	var best *domainOffer.Offer
	for i := range offers {
		o := &offers[i]
		if o.Status != domainOffer.StatusPending {
			continue
		}
		if best == nil ||
			o.InterestRate.LessThan(best.InterestRate) ||
			(o.InterestRate.Equal(best.InterestRate) && o.CreatedAt.Before(best.CreatedAt)) {
			best = o
		}
	}
	return best
}

// Accept settles the market for a loan: the chosen offer's reservation is
// converted into transfers (principal to the borrower, fee to the platform),
// every other PENDING offer is released and rejected, and the loan advances
// to ACCEPTED. One atomic unit: a failure anywhere rolls everything back.
// An empty offerID accepts the best offer per SelectWinner.
func (u *Usecase) Accept(ctx context.Context, loanID, offerID string) (*OfferDTO, error) {
	// first pass without locks, to learn which accounts take part
	var lockKeys []string
	lockedAccts := make(map[string]bool)
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		pendings, err := r.Offers.ListPendingByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		lockKeys = []string{lock.LoanKey(loanID), lock.AccountKey(l.BorrowerID), lock.AccountKey(u.platformAccountID)}
		lockedAccts[l.BorrowerID] = true
		lockedAccts[u.platformAccountID] = true
		for _, o := range pendings {
			lockKeys = append(lockKeys, lock.AccountKey(o.LenderID))
			lockedAccts[o.LenderID] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	release, err := u.locks.Acquire(ctx, lockKeys...)
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *OfferDTO
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusOffered {
			return fmt.Errorf("%w: loan is %s, not offered", domainLoan.ErrInvalidState, l.Status)
		}
		pendings, err := r.Offers.ListPendingByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(pendings) == 0 {
			return fmt.Errorf("%w: no pending offers", domainLoan.ErrInvalidState)
		}
		// an offer submitted between the read pass and lock acquisition
		// touches an unlocked account; back off and let the caller retry
		for _, o := range pendings {
			if !lockedAccts[o.LenderID] {
				return lock.ErrBusy
			}
		}

		var winner *domainOffer.Offer
		if offerID == "" {
			winner = SelectWinner(pendings)
		} else {
			for i := range pendings {
				if pendings[i].OfferID == offerID {
					winner = &pendings[i]
					break
				}
			}
			if winner == nil {
				return fmt.Errorf("%w: offer %s is not pending on this loan", domainLoan.ErrInvalidState, offerID)
			}
		}

		now := u.clk.Now()
		principalNote := fmt.Sprintf("loan principal for %s", l.LoanID)
		if _, err := u.led.Transfer(ctx, r, winner.LenderID, l.BorrowerID, l.Principal, true, principalNote); err != nil {
			return err
		}
		if l.PlatformFee.IsPositive() {
			feeNote := fmt.Sprintf("platform fee for %s", l.LoanID)
			if _, err := u.led.Transfer(ctx, r, winner.LenderID, u.platformAccountID, l.PlatformFee, true, feeNote); err != nil {
				return err
			}
		}

		for i := range pendings {
			o := &pendings[i]
			if o.OfferID == winner.OfferID {
				continue
			}
			if err := u.led.Release(ctx, r, o.LenderID, o.ReservedAmount); err != nil {
				return err
			}
			o.Status = domainOffer.StatusRejected
			if err := r.Offers.Save(ctx, o); err != nil {
				return err
			}
		}

		winner.Status = domainOffer.StatusAccepted
		if err := r.Offers.Save(ctx, winner); err != nil {
			return err
		}

		lenderID := winner.LenderID
		l.LenderID = &lenderID
		if err := l.TransitionTo(domainLoan.StatusAccepted, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l.LoanID, winner)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Reject releases one PENDING offer's reservation on the borrower's behalf.
// When the last pending offer goes, the loan falls back to OPEN.
func (u *Usecase) Reject(ctx context.Context, loanID, offerID string) (*OfferDTO, error) {
	// learn the lender account before locking
	var lenderID string
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		lenderID = o.LenderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	release, err := u.locks.Acquire(ctx, lock.LoanKey(loanID), lock.AccountKey(lenderID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *OfferDTO
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusOffered {
			return fmt.Errorf("%w: loan is %s, not offered", domainLoan.ErrInvalidState, l.Status)
		}
		o, err := r.Offers.GetByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		if o.LoanID != l.ID {
			return fmt.Errorf("%w: offer belongs to another loan", domainLoan.ErrInvalidState)
		}
		if o.Status != domainOffer.StatusPending {
			return fmt.Errorf("%w: offer is %s", domainOffer.ErrInvalidState, o.Status)
		}

		if err := u.led.Release(ctx, r, o.LenderID, o.ReservedAmount); err != nil {
			return err
		}
		o.Status = domainOffer.StatusRejected
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}

		remaining, err := r.Offers.ListPendingByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := l.TransitionTo(domainLoan.StatusOpen, u.clk.Now()); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
		}
		dto = toDTO(l.LoanID, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func toDTO(loanID string, o *domainOffer.Offer) *OfferDTO {
	return &OfferDTO{
		OfferID:        o.OfferID,
		LoanID:         loanID,
		LenderID:       o.LenderID,
		InterestRate:   o.InterestRate,
		ReservedAmount: o.ReservedAmount,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
}
