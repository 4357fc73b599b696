package repositories

import (
	"errors"

	"paylink/internal/models"

	"gorm.io/gorm"
)

type PspRepository interface {
	FindByCode(code string) (*models.Psp, error)
	// PreferredCodeForMerchant returns the code of the merchant's highest
	// priority active routing rule, or "" when no rule exists.
	PreferredCodeForMerchant(merchantID uint) (string, error)
}

type pspRepository struct {
	db *gorm.DB
}

func NewPspRepository(db *gorm.DB) PspRepository {
	return &pspRepository{db: db}
}

func (r *pspRepository) FindByCode(code string) (*models.Psp, error) {
	var psp models.Psp
	err := r.db.Where("code = ?", code).First(&psp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &psp, nil
}

func (r *pspRepository) PreferredCodeForMerchant(merchantID uint) (string, error) {
	var rule models.PspRoutingRule
	err := r.db.Preload("Psp").
		Where("merchant_id = ? AND active = ?", merchantID, true).
		Order("priority ASC").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rule.Psp.Code, nil
}
