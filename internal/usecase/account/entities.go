package account

import "github.com/shopspring/decimal"

type AccountDTO struct {
	AccountID       string          `json:"account_id"`
	OwnerName       string          `json:"owner_name"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	ReservedBalance decimal.Decimal `json:"reserved_balance"`
	Available       decimal.Decimal `json:"available"`
}
