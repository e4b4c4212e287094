package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAccount "lenme-backend/internal/domain/account"
	accountuc "lenme-backend/internal/usecase/account"
	"lenme-backend/internal/events"
	"lenme-backend/internal/lock"
	"lenme-backend/internal/testutil/memstore"
	"lenme-backend/internal/usecase/ledger"
	loanuc "lenme-backend/internal/usecase/loan"
	offeruc "lenme-backend/internal/usecase/offer"
	"lenme-backend/pkg/clock"
	"lenme-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// testServer wires the whole HTTP surface against the in-memory store.
type testServer struct {
	e        *echo.Echo
	store    *memstore.Store
	clk      *clock.Mock
	platform string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	clk := clock.NewMock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	locks := lock.NewRegistry(200 * time.Millisecond)
	led := ledger.New(clk)
	platform := id.NewID32()
	store.SeedAccount(domainAccount.Account{AccountID: platform, OwnerName: "platform"})

	accountH := NewAccountHandler(accountuc.NewUsecase(store, locks, clk))
	loanH := NewLoanHandler(loanuc.NewUsecase(store, locks, led, clk, events.Noop{}, decimal.RequireFromString("50.00")))
	offerH := NewOfferHandler(offeruc.NewUsecase(store, locks, led, clk, platform))
	h := NewHandler()

	e := echo.New()
	e.Validator = NewValidator()

	e.GET("/health", h.Health)

	e.POST("/accounts", accountH.CreateAccount)
	e.GET("/accounts/:account_id", accountH.GetAccount)
	e.POST("/accounts/:account_id/deposit", accountH.Deposit)
	e.POST("/accounts/:account_id/withdraw", accountH.Withdraw)
	e.GET("/accounts/:account_id/transactions", accountH.ListTransactions)

	e.POST("/loans", loanH.CreateLoan)
	e.GET("/loans/open", loanH.ListOpenLoans)
	e.GET("/loans/available", loanH.ListAvailableLoans)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.POST("/loans/:loan_id/publish", loanH.PublishLoan)
	e.POST("/loans/:loan_id/fund", loanH.FundLoan)
	e.GET("/loans/:loan_id/payments", loanH.ListPayments)
	e.POST("/loans/:loan_id/payments/:payment_id/pay", loanH.MakePayment)

	e.POST("/loans/:loan_id/offers", offerH.SubmitOffer)
	e.GET("/loans/:loan_id/offers", offerH.ListOffers)
	e.POST("/loans/:loan_id/offers/accept", offerH.AcceptOffer)
	e.POST("/loans/:loan_id/offers/:offer_id/reject", offerH.RejectOffer)

	return &testServer{e: e, store: store, clk: clk, platform: platform}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// createFundedAccount makes an account through the API and deposits balance.
func (ts *testServer) createFundedAccount(t *testing.T, owner, balance string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/accounts", `{"owner_name":"`+owner+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: %d %s", rec.Code, rec.Body.String())
	}
	var a struct {
		AccountID string `json:"account_id"`
	}
	decodeJSON(t, rec, &a)
	if balance != "" {
		rec = ts.do(t, http.MethodPost, "/accounts/"+a.AccountID+"/deposit", `{"amount":"`+balance+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("deposit: %d %s", rec.Code, rec.Body.String())
		}
	}
	return a.AccountID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/loans/"+id.NewID32(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}
