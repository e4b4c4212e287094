package http

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateLoan_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name, body string
	}{
		{"short borrower id", `{"borrower_id":"abc","principal":"5000.00","term_months":6,"rate":"15.00"}`},
		{"missing principal", `{"borrower_id":"` + ts.platform + `","term_months":6,"rate":"15.00"}`},
		{"three decimal places", `{"borrower_id":"` + ts.platform + `","principal":"5000.001","term_months":6,"rate":"15.00"}`},
		{"zero term", `{"borrower_id":"` + ts.platform + `","principal":"5000.00","term_months":0,"rate":"15.00"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/loans", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("code = %d, want 422: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateLoan_UnknownBorrowerIsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	body := `{"borrower_id":"ffffffffffffffffffffffffffffffff","principal":"5000.00","term_months":6,"rate":"15.00"}`
	rec := ts.do(t, http.MethodPost, "/loans", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

// TestLoanLifecycle drives the whole happy path through the HTTP surface:
// create, publish, two competing offers, accept, fund, and the first payment.
func TestLoanLifecycle(t *testing.T) {
	ts := newTestServer(t)

	borrower := ts.createFundedAccount(t, "borrower", "100.00")
	cheap := ts.createFundedAccount(t, "cheap lender", "6000.00")
	pricey := ts.createFundedAccount(t, "pricey lender", "6000.00")

	// create + publish
	rec := ts.do(t, http.MethodPost, "/loans",
		`{"borrower_id":"`+borrower+`","principal":"5000.00","term_months":6,"rate":"15.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: %d %s", rec.Code, rec.Body.String())
	}
	var loan struct {
		LoanID string `json:"loan_id"`
		Status string `json:"status"`
	}
	decodeJSON(t, rec, &loan)

	// funding before acceptance is a state conflict
	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/fund", ""); rec.Code != http.StatusConflict {
		t.Fatalf("fund draft loan: %d, want 409", rec.Code)
	}

	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/publish", ""); rec.Code != http.StatusOK {
		t.Fatalf("publish: %d %s", rec.Code, rec.Body.String())
	}

	// two competing offers
	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/offers",
		`{"lender_id":"`+pricey+`","rate":"15.00"}`); rec.Code != http.StatusCreated {
		t.Fatalf("submit pricey offer: %d %s", rec.Code, rec.Body.String())
	}
	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/offers",
		`{"lender_id":"`+cheap+`","rate":"12.00"}`); rec.Code != http.StatusCreated {
		t.Fatalf("submit cheap offer: %d %s", rec.Code, rec.Body.String())
	}

	// the loan now shows up as available
	rec = ts.do(t, http.MethodGet, "/loans/available", "")
	var avail []struct {
		LoanID string `json:"loan_id"`
	}
	decodeJSON(t, rec, &avail)
	if len(avail) != 1 || avail[0].LoanID != loan.LoanID {
		t.Fatalf("available = %+v, want the offered loan", avail)
	}

	// accept best: the 12% offer wins
	rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/offers/accept", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	var won struct {
		LenderID string `json:"lender_id"`
	}
	decodeJSON(t, rec, &won)
	if won.LenderID != cheap {
		t.Fatalf("winner = %s, want the 12%% lender %s", won.LenderID, cheap)
	}

	// accepting twice is a conflict
	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/offers/accept", `{}`); rec.Code != http.StatusConflict {
		t.Fatalf("double accept: %d, want 409", rec.Code)
	}

	// fund and inspect the schedule
	if rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/fund", ""); rec.Code != http.StatusOK {
		t.Fatalf("fund: %d %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodGet, "/loans/"+loan.LoanID+"/payments", "")
	var schedule []struct {
		PaymentID string `json:"payment_id"`
		Amount    string `json:"amount"`
	}
	decodeJSON(t, rec, &schedule)
	if len(schedule) != 6 {
		t.Fatalf("schedule = %d installments, want 6", len(schedule))
	}
	if schedule[0].Amount != "870.17" {
		t.Fatalf("installment = %s, want 870.17", schedule[0].Amount)
	}

	// the borrower received the principal and can pay the first installment
	rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/payments/"+schedule[0].PaymentID+"/pay", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pay first installment: %d %s", rec.Code, rec.Body.String())
	}
	// paying out of order is a conflict
	rec = ts.do(t, http.MethodPost, "/loans/"+loan.LoanID+"/payments/"+schedule[2].PaymentID+"/pay", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("out-of-order pay: %d, want 409", rec.Code)
	}

	// loser lender walked away whole
	rec = ts.do(t, http.MethodGet, "/accounts/"+pricey, "")
	var acct struct {
		TotalBalance    string `json:"total_balance"`
		ReservedBalance string `json:"reserved_balance"`
	}
	decodeJSON(t, rec, &acct)
	total := decimal.RequireFromString(acct.TotalBalance)
	reserved := decimal.RequireFromString(acct.ReservedBalance)
	if !total.Equal(decimal.RequireFromString("6000.00")) || !reserved.IsZero() {
		t.Fatalf("loser balances = %s/%s, want 6000.00/0", acct.TotalBalance, acct.ReservedBalance)
	}
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	ts := newTestServer(t)
	acct := ts.createFundedAccount(t, "dana", "50.00")

	rec := ts.do(t, http.MethodPost, "/accounts/"+acct+"/withdraw", `{"amount":"50.01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}
