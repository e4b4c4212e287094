package mysql

import (
	"context"
	"errors"

	offerDomain "lenme-backend/internal/domain/offer"

	"gorm.io/gorm"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, offerDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *OfferRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]offerDomain.Offer, error) {
	var out []offerDomain.Offer
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND status <> ?", loanID, offerDomain.StatusRejected).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *OfferRepository) ListPendingByLoanID(ctx context.Context, loanID uint64) ([]offerDomain.Offer, error) {
	var out []offerDomain.Offer
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanID, offerDomain.StatusPending).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *OfferRepository) GetActiveByLoanAndLender(ctx context.Context, loanID uint64, lenderID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND lender_id = ? AND status = ?", loanID, lenderID, offerDomain.StatusPending).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, offerDomain.ErrNotFound
	}
	return &out, res.Error
}
