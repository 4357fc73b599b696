package repositories

import (
	"errors"

	"paylink/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository persists charge outcomes and serves webhook lookups.
type PaymentRepository interface {
	Save(payment *models.Payment) error
	// FindByPspReference returns (nil, nil) when no payment carries the
	// reference; webhooks for unknown references are not an error.
	FindByPspReference(ref string) (*models.Payment, error)
	FindByID(id uint) (*models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Save(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

func (r *paymentRepository) FindByPspReference(ref string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("PaymentLink").Where("psp_reference = ?", ref).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Preload("Fees").First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
