package webhook

import "paylink/internal/models"

// PaymentRepository is the persistence surface the reconciler writes through.
// FindByPspReference returns (nil, nil) for unknown references.
type PaymentRepository interface {
	FindByPspReference(ref string) (*models.Payment, error)
	Save(payment *models.Payment) error
}

type PaymentLinkRepository interface {
	Save(link *models.PaymentLink) error
}

// EventRepository appends to the webhook audit log.
type EventRepository interface {
	Save(event *models.WebhookEvent) error
}
