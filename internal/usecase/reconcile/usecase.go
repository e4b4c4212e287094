package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lenme-backend/internal/domain/account"
	domainLoan "lenme-backend/internal/domain/loan"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/internal/events"
	"lenme-backend/internal/lock"
	"lenme-backend/internal/usecase/ledger"
	loanuc "lenme-backend/internal/usecase/loan"
	"lenme-backend/pkg/clock"

	"github.com/shopspring/decimal"
)

// Policy holds the configurable thresholds of the sweep. The original
// operation ran with a 7-day grace window and a 30-day default threshold;
// both are deployment knobs here, not constants.
type Policy struct {
	// GracePeriod after the due date during which no automatic action is
	// taken (the borrower may still self-pay).
	GracePeriod time.Duration
	// DefaultAfter is how long past due an installment counts toward
	// defaulting the loan.
	DefaultAfter time.Duration
	// MinOverdueForDefault is how many installments must be past
	// DefaultAfter before the loan defaults.
	MinOverdueForDefault int
}

// Summary reports what one sweep did.
type Summary struct {
	Swept     int
	Collected int
	Overdue   int
	Completed int
	Defaulted int
	Skipped   int
}

// Usecase is the reconciliation sweep: a time-driven pass that collects due
// installments and detects defaults without user stimulus. It funnels every
// settlement through the same locks and Settle path as manual payments, so
// running it concurrently with a borrower's own payment can never
// double-charge an installment.
type Usecase struct {
	uowork uow.UnitOfWork
	locks  *lock.Registry
	led    *ledger.Ledger
	clk    clock.Clock
	pub    events.Publisher
	policy Policy
}

func NewUsecase(u uow.UnitOfWork, locks *lock.Registry, led *ledger.Ledger, clk clock.Clock, pub events.Publisher, policy Policy) *Usecase {
	return &Usecase{uowork: u, locks: locks, led: led, clk: clk, pub: pub, policy: policy}
}

var pctLateFee = decimal.NewFromFloat(0.05)
var minLateFee = decimal.RequireFromString("10.00")

// Sweep walks every FUNDED loan once. Loans whose locks are contended are
// skipped and picked up by the next run.
func (u *Usecase) Sweep(ctx context.Context) (Summary, error) {
	var targets []struct{ loanID, borrowerID, lenderID string }
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		ls, err := r.Loans.ListByStatus(ctx, domainLoan.StatusFunded)
		if err != nil {
			return err
		}
		for _, l := range ls {
			if l.LenderID == nil {
				continue // unreachable by the lifecycle, but never deref nil
			}
			targets = append(targets, struct{ loanID, borrowerID, lenderID string }{l.LoanID, l.BorrowerID, *l.LenderID})
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, t := range targets {
		sum.Swept++
		res, err := u.sweepLoan(ctx, t.loanID, t.borrowerID, t.lenderID)
		switch {
		case errors.Is(err, lock.ErrBusy):
			sum.Skipped++
		case err != nil:
			log.Printf("reconcile: loan %s: %v", t.loanID, err)
		default:
			sum.Collected += res.Collected
			sum.Overdue += res.Overdue
			sum.Completed += res.Completed
			sum.Defaulted += res.Defaulted
		}
	}
	return sum, nil
}

func (u *Usecase) sweepLoan(ctx context.Context, loanID, borrowerID, lenderID string) (Summary, error) {
	release, err := u.locks.Acquire(ctx,
		lock.LoanKey(loanID), lock.AccountKey(borrowerID), lock.AccountKey(lenderID))
	if err != nil {
		return Summary{}, err
	}
	defer release()

	var (
		res     Summary
		emitted []events.Event
	)
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		res = Summary{}
		emitted = emitted[:0]
		if l.Status != domainLoan.StatusFunded {
			return nil // raced with a manual completion or another sweep
		}
		now := u.clk.Now()

		ps, err := r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}

		severelyOverdue := 0
		for _, p := range ps {
			if !p.Paid && !now.Before(p.DueDate.Add(u.policy.DefaultAfter)) {
				severelyOverdue++
			}
		}
		if severelyOverdue >= u.policy.MinOverdueForDefault {
			if err := l.TransitionTo(domainLoan.StatusDefaulted, now); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			e := events.New(events.TypeLoanDefaulted, now)
			e.LoanID = l.LoanID
			e.AccountID = l.BorrowerID
			emitted = append(emitted, e)
			res.Defaulted++
			return nil
		}

		// collect strictly in sequence; stop at the first installment that
		// is not yet collectable
		for i := range ps {
			p := &ps[i]
			if p.Paid {
				continue
			}
			if now.Before(p.DueDate.Add(u.policy.GracePeriod)) {
				break // not due or still inside grace
			}

			completed, err := loanuc.Settle(ctx, r, u.led, now, l, p)
			if errors.Is(err, account.ErrInsufficientFunds) {
				e := events.New(events.TypePaymentOverdue, now)
				e.LoanID = l.LoanID
				e.PaymentID = p.PaymentID
				e.AccountID = l.BorrowerID
				e.Amount = p.Amount.StringFixed(2)
				e.LateFee = lateFee(p.Amount).StringFixed(2)
				emitted = append(emitted, e)
				res.Overdue++
				break
			}
			if err != nil {
				return err
			}

			e := events.New(events.TypePaymentCollected, now)
			e.LoanID = l.LoanID
			e.PaymentID = p.PaymentID
			e.AccountID = l.BorrowerID
			e.Amount = p.Amount.StringFixed(2)
			emitted = append(emitted, e)
			res.Collected++

			if completed {
				ec := events.New(events.TypeLoanCompleted, now)
				ec.LoanID = l.LoanID
				ec.AccountID = l.BorrowerID
				emitted = append(emitted, ec)
				res.Completed++
				break
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	// publish only after the transaction committed
	for _, e := range emitted {
		if perr := u.pub.Publish(ctx, e); perr != nil {
			log.Printf("reconcile: publish %s for loan %s: %v", e.Type, e.LoanID, perr)
		}
	}
	return res, nil
}

// lateFee mirrors the platform's penalty rule: 5% of the installment or
// 10.00, whichever is higher. The fee itself is charged by an external
// collaborator; the core only reports it.
func lateFee(installment decimal.Decimal) decimal.Decimal {
	fee := installment.Mul(pctLateFee).Round(2)
	if fee.LessThan(minLateFee) {
		return minLateFee
	}
	return fee
}

// String implements a compact log form for sweep summaries.
func (s Summary) String() string {
	return fmt.Sprintf("swept=%d collected=%d overdue=%d completed=%d defaulted=%d skipped=%d",
		s.Swept, s.Collected, s.Overdue, s.Completed, s.Defaulted, s.Skipped)
}
