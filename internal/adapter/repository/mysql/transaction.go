package mysql

import (
	"context"

	txDomain "lenme-backend/internal/domain/transaction"

	"gorm.io/gorm"
)

// TransactionRepository is append-only: no Save, no Delete.
type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *txDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) ListByPair(ctx context.Context, fromAccountID, toAccountID string) ([]txDomain.Transaction, error) {
	var out []txDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("from_account_id = ? AND to_account_id = ?", fromAccountID, toAccountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string) ([]txDomain.Transaction, error) {
	var out []txDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
