package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable audit record of one fund movement between two
// accounts. Append-only: rows are never updated or deleted, and the sum of
// amounts between any account pair must equal the net balance movement the
// ledger recorded for that pair.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxID          string          `gorm:"size:32;uniqueIndex:ux_transactions_tx_id" json:"tx_id"`
	FromAccountID string          `gorm:"size:32;index:idx_transactions_from" json:"from_account_id"`
	ToAccountID   string          `gorm:"size:32;index:idx_transactions_to" json:"to_account_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Note          string          `gorm:"size:255" json:"note"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }
