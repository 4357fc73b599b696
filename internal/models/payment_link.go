package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentLinkStatusCreated = "CREATED"
	PaymentLinkStatusPaid    = "PAID"
	PaymentLinkStatusExpired = "EXPIRED"
)

type PaymentLink struct {
	ID          uint   `gorm:"primarykey"`
	PublicID    string `gorm:"uniqueIndex;size:36;not null"`
	Slug        string `gorm:"uniqueIndex;size:16;not null"`
	MerchantID  uint   `gorm:"index;not null"`
	Merchant    Merchant
	RecipientID *uint
	Recipient   *Recipient
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
	Description string
	Status      string `gorm:"size:32;not null;default:'CREATED'"`
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *PaymentLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
