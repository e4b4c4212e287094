package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "lenme-backend/internal/domain/payment"
	"lenme-backend/pkg/id"

	"github.com/shopspring/decimal"
)

func makeSchedule(loanID uint64, n int) []domain.Payment {
	due := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Payment, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Payment{
			PaymentID: id.NewID32(),
			LoanID:    loanID,
			Sequence:  i,
			DueDate:   due.AddDate(0, i-1, 0),
			Amount:    decimal.RequireFromString("870.17"),
		})
	}
	return out
}

func TestPaymentCreateBatchAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	if err := repo.CreateBatch(ctx, makeSchedule(9, 6)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := repo.ListByLoanID(ctx, 9)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("schedule length = %d, want 6", len(got))
	}
	for i, p := range got {
		if p.Sequence != i+1 {
			t.Fatalf("sequence at %d = %d, want ascending order", i, p.Sequence)
		}
	}
}

func TestPaymentFirstUnpaidFollowsSettlement(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	if err := repo.CreateBatch(ctx, makeSchedule(4, 3)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	first, err := repo.FirstUnpaidByLoanID(ctx, 4)
	if err != nil {
		t.Fatalf("FirstUnpaidByLoanID: %v", err)
	}
	if first.Sequence != 1 {
		t.Fatalf("first unpaid = %d, want 1", first.Sequence)
	}

	now := time.Now().UTC()
	first.Paid = true
	first.PaidAt = &now
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	next, err := repo.FirstUnpaidByLoanID(ctx, 4)
	if err != nil {
		t.Fatalf("FirstUnpaidByLoanID after settle: %v", err)
	}
	if next.Sequence != 2 {
		t.Fatalf("next unpaid = %d, want 2", next.Sequence)
	}

	n, err := repo.CountUnpaidByLoanID(ctx, 4)
	if err != nil {
		t.Fatalf("CountUnpaidByLoanID: %v", err)
	}
	if n != 2 {
		t.Fatalf("unpaid count = %d, want 2", n)
	}
}

func TestPaymentFirstUnpaid_NoneLeft(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	ps := makeSchedule(2, 1)
	ps[0].Paid = true
	if err := repo.CreateBatch(ctx, ps); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if _, err := repo.FirstUnpaidByLoanID(ctx, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
