package http

import (
	"net/http"

	"lenme-backend/internal/usecase/offer"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OfferHandler struct{ uc *offer.Usecase }

func NewOfferHandler(uc *offer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

type submitOfferReq struct {
	LenderID string `json:"lender_id" validate:"required,hex32"`
	Rate     string `json:"rate"      validate:"required,amount"`
}

type acceptOfferReq struct {
	// empty means "accept the best offer"
	OfferID string `json:"offer_id" validate:"omitempty,hex32"`
}

func (h *OfferHandler) SubmitOffer(c echo.Context) error {
	var req submitOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rate"})
	}

	dto, err := h.uc.Submit(c.Request().Context(), offer.SubmitOfferInput{
		LoanID:   c.Param("loan_id"),
		LenderID: req.LenderID,
		Rate:     rate,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *OfferHandler) ListOffers(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) AcceptOffer(c echo.Context) error {
	var req acceptOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Accept(c.Request().Context(), c.Param("loan_id"), req.OfferID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OfferHandler) RejectOffer(c echo.Context) error {
	dto, err := h.uc.Reject(c.Request().Context(), c.Param("loan_id"), c.Param("offer_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
