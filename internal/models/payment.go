package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status values form the reconciliation state machine:
// PENDING -> {AUTHORIZED, CAPTURED, FAILED} -> REFUNDED. The synchronous
// charge path creates payments directly in CAPTURED or FAILED.
const (
	PaymentStatusPending    = "PENDING"
	PaymentStatusAuthorized = "AUTHORIZED"
	PaymentStatusCaptured   = "CAPTURED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusRefunded   = "REFUNDED"
)

const (
	PaymentFeeTypeProcessing = "PROCESSING"
	PaymentFeeTypeFx         = "FX"
)

type Payment struct {
	ID            uint `gorm:"primarykey"`
	PaymentLinkID uint `gorm:"index;not null"`
	PaymentLink   PaymentLink
	MerchantID    uint `gorm:"index;not null"`
	RecipientID   *uint
	PspCode       string          `gorm:"size:16"`
	PspReference  string          `gorm:"index;size:128"`
	Status        string          `gorm:"size:32;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	FeeTotal      decimal.Decimal `gorm:"type:decimal(18,2)"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(18,2)"`
	Currency      string          `gorm:"size:3;not null"`
	FailureCode   string
	Fees          []PaymentFee `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PaymentFee struct {
	ID        uint            `gorm:"primarykey"`
	PaymentID uint            `gorm:"index;not null"`
	Type      string          `gorm:"size:16;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency  string          `gorm:"size:3;not null"`
	CreatedAt time.Time
}
