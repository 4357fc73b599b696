package repositories

import (
	"paylink/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Save(event *models.WebhookEvent) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Save(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}
