package repositories

import (
	"paylink/internal/models"

	"gorm.io/gorm"
)

type PaymentLinkRepository interface {
	Save(link *models.PaymentLink) error
	FindBySlug(slug string) (*models.PaymentLink, error)
	FindByMerchant(merchantID uint) ([]models.PaymentLink, error)
	ExistsBySlug(slug string) (bool, error)
}

type paymentLinkRepository struct {
	db *gorm.DB
}

func NewPaymentLinkRepository(db *gorm.DB) PaymentLinkRepository {
	return &paymentLinkRepository{db: db}
}

func (r *paymentLinkRepository) Save(link *models.PaymentLink) error {
	return r.db.Save(link).Error
}

func (r *paymentLinkRepository) FindBySlug(slug string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.Preload("Merchant").Preload("Recipient").
		Where("slug = ?", slug).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *paymentLinkRepository) FindByMerchant(merchantID uint) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	err := r.db.Where("merchant_id = ?", merchantID).
		Order("created_at DESC").Find(&links).Error
	return links, err
}

func (r *paymentLinkRepository) ExistsBySlug(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentLink{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
