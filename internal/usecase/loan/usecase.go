package loan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domainLoan "lenme-backend/internal/domain/loan"
	domainPayment "lenme-backend/internal/domain/payment"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/internal/events"
	"lenme-backend/internal/lock"
	"lenme-backend/internal/usecase/ledger"
	"lenme-backend/pkg/clock"
	"lenme-backend/pkg/id"

	"github.com/shopspring/decimal"
)

type Usecase struct {
	uowork      uow.UnitOfWork
	locks       *lock.Registry
	led         *ledger.Ledger
	clk         clock.Clock
	pub         events.Publisher
	platformFee decimal.Decimal
}

func NewUsecase(u uow.UnitOfWork, locks *lock.Registry, led *ledger.Ledger, clk clock.Clock, pub events.Publisher, platformFee decimal.Decimal) *Usecase {
	return &Usecase{uowork: u, locks: locks, led: led, clk: clk, pub: pub, platformFee: platformFee}
}

// Create registers a DRAFT loan request for the borrower. The platform fee
// is fixed at creation time so later offers reserve a stable amount.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if len(in.BorrowerID) != 32 {
		return nil, fmt.Errorf("%w: borrower id must be 32-char hex", domainLoan.ErrValidation)
	}
	if !in.Principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", domainLoan.ErrValidation)
	}
	if in.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive", domainLoan.ErrValidation)
	}
	if in.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: rate must be non-negative", domainLoan.ErrValidation)
	}

	l := &domainLoan.Loan{
		LoanID:          id.NewID32(),
		BorrowerID:      in.BorrowerID,
		Principal:       in.Principal,
		TermMonths:      in.TermMonths,
		InterestRate:    in.Rate,
		PlatformFee:     u.platformFee,
		Status:          domainLoan.StatusDraft,
		StatusUpdatedAt: u.clk.Now(),
	}

	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Accounts.GetByAccountID(ctx, in.BorrowerID); err != nil {
			return fmt.Errorf("%w: unknown borrower account", domainLoan.ErrValidation)
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// Publish moves a DRAFT loan to OPEN, making it visible to lenders.
func (u *Usecase) Publish(ctx context.Context, loanID string) (*LoanDTO, error) {
	release, err := u.locks.Acquire(ctx, lock.LoanKey(loanID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *LoanDTO
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := l.TransitionTo(domainLoan.StatusOpen, u.clk.Now()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListOpen returns loans currently accepting first offers.
func (u *Usecase) ListOpen(ctx context.Context) ([]LoanDTO, error) {
	return u.listByStatus(ctx, domainLoan.StatusOpen)
}

// ListAvailable returns loans that already have offers but no lender yet.
func (u *Usecase) ListAvailable(ctx context.Context) ([]LoanDTO, error) {
	return u.listByStatus(ctx, domainLoan.StatusOffered)
}

func (u *Usecase) listByStatus(ctx context.Context, status domainLoan.Status) ([]LoanDTO, error) {
	var out []LoanDTO
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		ls, err := r.Loans.ListByStatus(ctx, status)
		if err != nil {
			return err
		}
		out = make([]LoanDTO, 0, len(ls))
		for i := range ls {
			out = append(out, *toDTO(&ls[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fund materializes the payment schedule for an ACCEPTED loan and stamps
// funded_at. The principal and fee already moved at acceptance, so funding
// moves no money.
func (u *Usecase) Fund(ctx context.Context, loanID string) (*LoanDTO, error) {
	release, err := u.locks.Acquire(ctx, lock.LoanKey(loanID))
	if err != nil {
		return nil, err
	}
	defer release()

	var dto *LoanDTO
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		now := u.clk.Now()
		if err := l.TransitionTo(domainLoan.StatusFunded, now); err != nil {
			return err
		}
		l.FundedAt = &now

		schedule, err := domainPayment.BuildSchedule(l.ID, l.Principal, l.InterestRate, l.TermMonths, now, id.NewID32)
		if err != nil {
			return err
		}
		if err := r.Payments.CreateBatch(ctx, schedule); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListPayments returns a funded loan's schedule.
func (u *Usecase) ListPayments(ctx context.Context, loanID string) ([]PaymentDTO, error) {
	var out []PaymentDTO
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		ps, err := r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		out = make([]PaymentDTO, 0, len(ps))
		for i := range ps {
			out = append(out, toPaymentDTO(l.LoanID, &ps[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MakePayment settles one installment from borrower to lender. Installments
// settle strictly in sequence; the scheduler's automatic collection funnels
// through Settle under the same locks, so a given installment is paid at
// most once.
func (u *Usecase) MakePayment(ctx context.Context, loanID, paymentID string) (*PaymentDTO, error) {
	// read outside the locks to learn which accounts to lock
	var borrowerID, lenderID string
	err := u.uowork.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if l.LenderID == nil {
			return fmt.Errorf("%w: loan has no lender", domainLoan.ErrInvalidState)
		}
		borrowerID, lenderID = l.BorrowerID, *l.LenderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	release, err := u.locks.Acquire(ctx,
		lock.LoanKey(loanID), lock.AccountKey(borrowerID), lock.AccountKey(lenderID))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		dto       *PaymentDTO
		completed bool
	)
	err = u.uowork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		p, err := r.Payments.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.LoanID != l.ID {
			return fmt.Errorf("%w: payment belongs to another loan", domainLoan.ErrInvalidState)
		}
		completed, err = Settle(ctx, r, u.led, u.clk.Now(), l, p)
		if err != nil {
			return err
		}
		d := toPaymentDTO(l.LoanID, p)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		e := events.New(events.TypeLoanCompleted, u.clk.Now())
		e.LoanID = loanID
		e.AccountID = borrowerID
		if err := u.pub.Publish(ctx, e); err != nil {
			log.Printf("loan: publish completed event for %s: %v", loanID, err)
		}
	}
	return dto, nil
}

// Settle is the single settlement path for an installment, shared by manual
// payments and the reconciliation sweep. The caller holds the loan and
// account locks and runs inside the unit of work. Reports whether this was
// the final installment (the loan is then COMPLETED).
func Settle(ctx context.Context, r uow.Repos, led *ledger.Ledger, now time.Time, l *domainLoan.Loan, p *domainPayment.Payment) (bool, error) {
	if l.Status != domainLoan.StatusFunded {
		return false, fmt.Errorf("%w: loan is %s, not funded", domainLoan.ErrInvalidState, l.Status)
	}
	if l.LenderID == nil {
		return false, fmt.Errorf("%w: funded loan without lender", domainLoan.ErrInvalidState)
	}
	if p.Paid {
		return false, fmt.Errorf("settle installment %d: %w", p.Sequence, domainPayment.ErrAlreadyPaid)
	}

	first, err := r.Payments.FirstUnpaidByLoanID(ctx, l.ID)
	if err != nil {
		return false, err
	}
	if first.PaymentID != p.PaymentID {
		return false, fmt.Errorf("settle installment %d before %d: %w", p.Sequence, first.Sequence, domainPayment.ErrOutOfOrder)
	}

	note := fmt.Sprintf("installment %d/%d for loan %s", p.Sequence, l.TermMonths, l.LoanID)
	if _, err := led.Transfer(ctx, r, l.BorrowerID, *l.LenderID, p.Amount, false, note); err != nil {
		return false, err
	}

	p.Paid = true
	p.PaidAt = &now
	if err := r.Payments.Save(ctx, p); err != nil {
		return false, err
	}

	remaining, err := r.Payments.CountUnpaidByLoanID(ctx, l.ID)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}
	if err := l.TransitionTo(domainLoan.StatusCompleted, now); err != nil {
		return false, err
	}
	return true, r.Loans.Save(ctx, l)
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:       l.LoanID,
		BorrowerID:   l.BorrowerID,
		Principal:    l.Principal,
		TermMonths:   l.TermMonths,
		InterestRate: l.InterestRate,
		PlatformFee:  l.PlatformFee,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
		FundedAt:     l.FundedAt,
	}
	if l.LenderID != nil {
		dto.LenderID = *l.LenderID
	}
	return dto
}

func toPaymentDTO(loanID string, p *domainPayment.Payment) PaymentDTO {
	return PaymentDTO{
		PaymentID: p.PaymentID,
		LoanID:    loanID,
		Sequence:  p.Sequence,
		DueDate:   p.DueDate,
		Amount:    p.Amount,
		Paid:      p.Paid,
		PaidAt:    p.PaidAt,
	}
}

// IsInvalidState groups the sentinel kinds the boundary maps to an
// invalid-state response.
func IsInvalidState(err error) bool {
	return errors.Is(err, domainLoan.ErrInvalidState) ||
		errors.Is(err, domainPayment.ErrAlreadyPaid) ||
		errors.Is(err, domainPayment.ErrOutOfOrder)
}
