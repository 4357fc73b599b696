package repositories

import (
	"errors"

	"paylink/internal/models"

	"gorm.io/gorm"
)

type FeeConfigRepository interface {
	// FindByMerchantID returns (nil, nil) when the merchant has no fee
	// configuration; the fee engine turns that into a configuration error.
	FindByMerchantID(merchantID uint) (*models.MerchantFeeConfig, error)
}

type feeConfigRepository struct {
	db *gorm.DB
}

func NewFeeConfigRepository(db *gorm.DB) FeeConfigRepository {
	return &feeConfigRepository{db: db}
}

func (r *feeConfigRepository) FindByMerchantID(merchantID uint) (*models.MerchantFeeConfig, error) {
	var cfg models.MerchantFeeConfig
	err := r.db.Where("merchant_id = ?", merchantID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
