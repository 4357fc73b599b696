package models

import "time"

type Merchant struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex"`
	Status    string `gorm:"default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recipient is an optional payout destination owned by a merchant.
type Recipient struct {
	ID             uint `gorm:"primarykey"`
	MerchantID     uint `gorm:"index;not null"`
	Name           string
	Email          string
	PayoutCurrency string `gorm:"size:3"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
