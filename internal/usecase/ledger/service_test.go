package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/uow"
	"lenme-backend/internal/testutil/memstore"
	"lenme-backend/pkg/clock"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newLedger() (*Ledger, *memstore.Store) {
	clk := clock.NewMock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	return New(clk), memstore.New()
}

func seed(s *memstore.Store, accountID, total, reserved string) {
	s.SeedAccount(account.Account{
		AccountID:       accountID,
		TotalBalance:    dec(total),
		ReservedBalance: dec(reserved),
	})
}

func TestReserveRelease_RoundTrip(t *testing.T) {
	led, s := newLedger()
	seed(s, "lender01", "1000.00", "0.00")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		if err := led.Reserve(ctx, r, "lender01", dec("600.00")); err != nil {
			return err
		}
		return led.Release(ctx, r, "lender01", dec("600.00"))
	})
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}

	a := s.Account("lender01")
	if !a.ReservedBalance.IsZero() {
		t.Fatalf("reserved = %s, want 0", a.ReservedBalance)
	}
	if !a.TotalBalance.Equal(dec("1000.00")) {
		t.Fatalf("total = %s, want 1000.00", a.TotalBalance)
	}
}

func TestReserve_InsufficientFunds(t *testing.T) {
	led, s := newLedger()
	seed(s, "lender01", "1000.00", "800.00") // available 200
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		return led.Reserve(ctx, r, "lender01", dec("200.01"))
	})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := s.Account("lender01").ReservedBalance; !got.Equal(dec("800.00")) {
		t.Fatalf("reserved mutated on failure: %s", got)
	}
}

func TestRelease_MismatchIsInvariantViolation(t *testing.T) {
	led, s := newLedger()
	seed(s, "lender01", "1000.00", "50.00")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		return led.Release(ctx, r, "lender01", dec("50.01"))
	})
	if !errors.Is(err, account.ErrInvariantViolation) {
		t.Fatalf("err = %v, want ErrInvariantViolation", err)
	}
}

func TestTransfer_FromReserved(t *testing.T) {
	led, s := newLedger()
	seed(s, "lender01", "1000.00", "500.00")
	seed(s, "borrower", "10.00", "0.00")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		_, err := led.Transfer(ctx, r, "lender01", "borrower", dec("500.00"), true, "loan principal")
		return err
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	lender := s.Account("lender01")
	if !lender.TotalBalance.Equal(dec("500.00")) || !lender.ReservedBalance.IsZero() {
		t.Fatalf("lender total=%s reserved=%s", lender.TotalBalance, lender.ReservedBalance)
	}
	borrower := s.Account("borrower")
	if !borrower.TotalBalance.Equal(dec("510.00")) {
		t.Fatalf("borrower total = %s", borrower.TotalBalance)
	}

	txs := s.Transactions()
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if txs[0].FromAccountID != "lender01" || txs[0].ToAccountID != "borrower" || !txs[0].Amount.Equal(dec("500.00")) {
		t.Fatalf("unexpected transaction: %+v", txs[0])
	}
	if txs[0].Note != "loan principal" {
		t.Fatalf("note = %q", txs[0].Note)
	}
}

func TestTransfer_UnreservedChecksAvailable(t *testing.T) {
	led, s := newLedger()
	seed(s, "borrower", "100.00", "60.00") // available 40
	seed(s, "lender01", "0.00", "0.00")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		_, err := led.Transfer(ctx, r, "borrower", "lender01", dec("40.01"), false, "installment")
		return err
	})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("failed transfer recorded a transaction")
	}

	// exactly at the available boundary succeeds
	err = s.WithinTx(ctx, func(r uow.Repos) error {
		_, err := led.Transfer(ctx, r, "borrower", "lender01", dec("40.00"), false, "installment")
		return err
	})
	if err != nil {
		t.Fatalf("boundary transfer: %v", err)
	}
}

func TestTransfer_RejectsSelfAndNonPositive(t *testing.T) {
	led, s := newLedger()
	seed(s, "a1", "100.00", "0.00")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		_, err := led.Transfer(ctx, r, "a1", "a1", dec("10.00"), false, "self")
		return err
	})
	if !errors.Is(err, account.ErrValidation) {
		t.Fatalf("self transfer err = %v, want ErrValidation", err)
	}

	err = s.WithinTx(ctx, func(r uow.Repos) error {
		return led.Reserve(ctx, r, "a1", dec("0.00"))
	})
	if !errors.Is(err, account.ErrValidation) {
		t.Fatalf("zero reserve err = %v, want ErrValidation", err)
	}
}

func TestInvariant_ReservedNeverExceedsTotal(t *testing.T) {
	led, s := newLedger()
	seed(s, "a1", "300.00", "0.00")
	seed(s, "a2", "0.00", "0.00")
	ctx := context.Background()

	// reserve, settle part of it, release the rest: the invariant
	// 0 <= reserved <= total must hold at every commit point
	steps := []func(r uow.Repos) error{
		func(r uow.Repos) error { return led.Reserve(ctx, r, "a1", dec("300.00")) },
		func(r uow.Repos) error {
			_, err := led.Transfer(ctx, r, "a1", "a2", dec("200.00"), true, "partial settle")
			return err
		},
		func(r uow.Repos) error { return led.Release(ctx, r, "a1", dec("100.00")) },
	}
	for i, step := range steps {
		if err := s.WithinTx(ctx, step); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		a := s.Account("a1")
		if a.ReservedBalance.IsNegative() || a.ReservedBalance.GreaterThan(a.TotalBalance) {
			t.Fatalf("step %d violated invariant: total=%s reserved=%s", i, a.TotalBalance, a.ReservedBalance)
		}
	}

	if got := s.Account("a1").TotalBalance; !got.Equal(dec("100.00")) {
		t.Fatalf("a1 total = %s, want 100.00", got)
	}
	if got := s.Account("a2").TotalBalance; !got.Equal(dec("200.00")) {
		t.Fatalf("a2 total = %s, want 200.00", got)
	}
}
