package http

import (
	"net/http"

	"lenme-backend/internal/usecase/account"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AccountHandler struct{ uc *account.Usecase }

func NewAccountHandler(uc *account.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type createAccountReq struct {
	OwnerName string `json:"owner_name" validate:"required"`
}

type moveMoneyReq struct {
	Amount string `json:"amount" validate:"required,amount"`
}

func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req createAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Create(c.Request().Context(), req.OwnerName)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AccountHandler) Deposit(c echo.Context) error {
	amount, resp := bindAmount(c)
	if resp != nil {
		return resp(c)
	}
	dto, err := h.uc.Deposit(c.Request().Context(), c.Param("account_id"), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) Withdraw(c echo.Context) error {
	amount, resp := bindAmount(c)
	if resp != nil {
		return resp(c)
	}
	dto, err := h.uc.Withdraw(c.Request().Context(), c.Param("account_id"), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("account_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) ListTransactions(c echo.Context) error {
	txs, err := h.uc.Statement(c.Request().Context(), c.Param("account_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, txs)
}

// bindAmount parses the shared {"amount": "..."} body. On failure it returns
// a non-nil responder that writes the error.
func bindAmount(c echo.Context) (decimal.Decimal, func(echo.Context) error) {
	var req moveMoneyReq
	if err := c.Bind(&req); err != nil {
		return decimal.Zero, func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
	}
	if err := c.Validate(&req); err != nil {
		fes := ToFieldErrors(err)
		return decimal.Zero, func(c echo.Context) error {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: fes})
		}
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return decimal.Zero, func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		}
	}
	return amount, nil
}
