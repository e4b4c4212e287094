package http

import (
	"errors"
	"net/http"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/loan"
	"lenme-backend/internal/domain/offer"
	"lenme-backend/internal/domain/payment"
	"lenme-backend/internal/lock"
	loanuc "lenme-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

// statusOf maps domain sentinels to HTTP statuses. Anything unrecognized is
// a 500: an invariant violation or a genuine bug, never the caller's fault.
func statusOf(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lock.ErrBusy):
		return http.StatusServiceUnavailable
	case loanuc.IsInvalidState(err),
		errors.Is(err, offer.ErrInvalidState),
		errors.Is(err, offer.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, loan.ErrValidation),
		errors.Is(err, account.ErrValidation),
		errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		// do not leak internals to the caller
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
