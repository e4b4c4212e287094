package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one            = decimal.NewFromInt(1)
	monthsTimes100 = decimal.NewFromInt(1200) // 12 months * 100 percent
)

// Amortize computes the fixed monthly installment for a loan and the amount
// of every installment. All amounts are rounded half-up to 2 decimal places.
//
// The compound formula is installment = P*r*(1+r)^n / ((1+r)^n - 1) with
// r = annualRatePct/100/12. A zero rate degenerates to a straight-line split
// (the compound formula would divide by zero).
//
// Rounding the installment leaves a residual of at most a few cents over the
// life of the loan; that residual is absorbed into the final installment so
// the schedule always pays the loan off exactly.
func Amortize(principal, annualRatePct decimal.Decimal, termMonths int) (decimal.Decimal, []decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, nil, fmt.Errorf("principal must be positive, got %s", principal)
	}
	if termMonths <= 0 {
		return decimal.Zero, nil, fmt.Errorf("term must be positive, got %d", termMonths)
	}
	if annualRatePct.IsNegative() {
		return decimal.Zero, nil, fmt.Errorf("rate must be non-negative, got %s", annualRatePct)
	}

	n := int64(termMonths)
	amounts := make([]decimal.Decimal, termMonths)

	if annualRatePct.IsZero() {
		installment := principal.DivRound(decimal.NewFromInt(n), 2)
		for i := range amounts {
			amounts[i] = installment
		}
		// straight-line residual also lands on the last installment
		amounts[termMonths-1] = principal.Sub(installment.Mul(decimal.NewFromInt(n - 1)))
		return installment, amounts, nil
	}

	r := annualRatePct.DivRound(monthsTimes100, 12)
	pow := one.Add(r).Pow(decimal.NewFromInt(n))
	installment := principal.Mul(r).Mul(pow).DivRound(pow.Sub(one), 2)

	// Simulate the amortization to place the rounding residual on the final
	// installment: each month accrues interest on the outstanding balance,
	// then the fixed installment is paid; the last installment pays the
	// balance off exactly.
	balance := principal
	for i := 0; i < termMonths-1; i++ {
		amounts[i] = installment
		balance = balance.Add(balance.Mul(r)).Sub(installment)
	}
	amounts[termMonths-1] = balance.Add(balance.Mul(r)).Round(2)

	return installment, amounts, nil
}

// DueDates returns termMonths dates, one calendar month apart, anchored on
// the funding date's day of month. The anchor clamps to the last day of
// shorter months (funded Jan 31 -> due Feb 28, Mar 31, ...), never spilling
// into the next month.
func DueDates(fundedAt time.Time, termMonths int) []time.Time {
	fundedAt = fundedAt.UTC()
	year, month, day := fundedAt.Date()
	out := make([]time.Time, termMonths)
	for i := 1; i <= termMonths; i++ {
		y, m := year, int(month)+i
		y += (m - 1) / 12
		m = (m-1)%12 + 1
		d := day
		if last := daysIn(y, time.Month(m)); d > last {
			d = last
		}
		out[i-1] = time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	return out
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildSchedule materializes the full Payment set for a loan at funding time.
// newID supplies the public payment ids so callers control id generation.
func BuildSchedule(loanID uint64, principal, annualRatePct decimal.Decimal, termMonths int, fundedAt time.Time, newID func() string) ([]Payment, error) {
	_, amounts, err := Amortize(principal, annualRatePct, termMonths)
	if err != nil {
		return nil, err
	}
	dues := DueDates(fundedAt, termMonths)

	ps := make([]Payment, termMonths)
	for i := 0; i < termMonths; i++ {
		ps[i] = Payment{
			PaymentID: newID(),
			LoanID:    loanID,
			Sequence:  i + 1,
			DueDate:   dues[i],
			Amount:    amounts[i],
		}
	}
	return ps, nil
}
