package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAmortize_CompoundSixMonths(t *testing.T) {
	// 5000.00 at 15% APR over 6 months: r = 0.0125
	installment, amounts, err := Amortize(dec("5000.00"), dec("15.00"), 6)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}
	if want := dec("870.17"); !installment.Equal(want) {
		t.Fatalf("installment = %s, want %s", installment, want)
	}
	if len(amounts) != 6 {
		t.Fatalf("len(amounts) = %d", len(amounts))
	}
	for i := 0; i < 5; i++ {
		if !amounts[i].Equal(installment) {
			t.Errorf("amounts[%d] = %s, want %s", i, amounts[i], installment)
		}
	}
	// residual absorbed into the final installment, at most one cent here
	final := amounts[5]
	if final.Sub(installment).Abs().GreaterThan(dec("0.01")) {
		t.Fatalf("final installment %s deviates more than one cent from %s", final, installment)
	}

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	if want := dec("5221.01"); !sum.Equal(want) {
		t.Fatalf("schedule total = %s, want %s", sum, want)
	}
	// total repaid covers principal plus interest
	if sum.LessThan(dec("5000.00")) {
		t.Fatalf("schedule total %s below principal", sum)
	}
}

func TestAmortize_ZeroRateStraightLine(t *testing.T) {
	installment, amounts, err := Amortize(dec("5000.00"), decimal.Zero, 6)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}
	if want := dec("833.33"); !installment.Equal(want) {
		t.Fatalf("installment = %s, want %s", installment, want)
	}
	if want := dec("833.35"); !amounts[5].Equal(want) {
		t.Fatalf("final installment = %s, want %s", amounts[5], want)
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	if !sum.Equal(dec("5000.00")) {
		t.Fatalf("zero-rate schedule total = %s, want 5000.00", sum)
	}
}

func TestAmortize_SingleInstallment(t *testing.T) {
	installment, amounts, err := Amortize(dec("1000.00"), dec("12.00"), 1)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}
	if want := dec("1010.00"); !installment.Equal(want) {
		t.Fatalf("installment = %s, want %s", installment, want)
	}
	if !amounts[0].Equal(dec("1010.00")) {
		t.Fatalf("amounts[0] = %s", amounts[0])
	}
}

func TestAmortize_RejectsBadInput(t *testing.T) {
	if _, _, err := Amortize(decimal.Zero, dec("10"), 6); err == nil {
		t.Error("zero principal accepted")
	}
	if _, _, err := Amortize(dec("-5"), dec("10"), 6); err == nil {
		t.Error("negative principal accepted")
	}
	if _, _, err := Amortize(dec("100"), dec("10"), 0); err == nil {
		t.Error("zero term accepted")
	}
	if _, _, err := Amortize(dec("100"), dec("-1"), 6); err == nil {
		t.Error("negative rate accepted")
	}
}

func TestDueDates_CalendarMonthsWithClamping(t *testing.T) {
	funded := time.Date(2025, 1, 31, 15, 30, 0, 0, time.UTC)
	dues := DueDates(funded, 6)

	want := []time.Time{
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !dues[i].Equal(want[i]) {
			t.Errorf("dues[%d] = %v, want %v", i, dues[i], want[i])
		}
	}
}

func TestDueDates_CrossesYearBoundary(t *testing.T) {
	funded := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
	dues := DueDates(funded, 3)

	want := []time.Time{
		time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !dues[i].Equal(want[i]) {
			t.Errorf("dues[%d] = %v, want %v", i, dues[i], want[i])
		}
	}
}

func TestBuildSchedule(t *testing.T) {
	funded := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	seq := 0
	newID := func() string { seq++; return fmt.Sprintf("%032d", seq) }

	ps, err := BuildSchedule(42, dec("1200.00"), decimal.Zero, 3, funded, newID)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("len = %d", len(ps))
	}
	for i, p := range ps {
		if p.LoanID != 42 {
			t.Errorf("ps[%d].LoanID = %d", i, p.LoanID)
		}
		if p.Sequence != i+1 {
			t.Errorf("ps[%d].Sequence = %d", i, p.Sequence)
		}
		if p.Paid {
			t.Errorf("ps[%d] created paid", i)
		}
		if !p.Amount.Equal(dec("400.00")) {
			t.Errorf("ps[%d].Amount = %s", i, p.Amount)
		}
	}
	if !ps[0].DueDate.Equal(time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first due = %v", ps[0].DueDate)
	}
}
