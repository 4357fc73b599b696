package repositories

import (
	"paylink/internal/models"

	"gorm.io/gorm"
)

type MerchantRepository interface {
	FindByID(id uint) (*models.Merchant, error)
	FindRecipientByID(id uint) (*models.Recipient, error)
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) FindByID(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindRecipientByID(id uint) (*models.Recipient, error) {
	var recipient models.Recipient
	if err := r.db.First(&recipient, id).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}
