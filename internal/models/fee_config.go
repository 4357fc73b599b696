package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MerchantFeeConfig holds the per-merchant pricing inputs of the fee engine.
// Absent rows are a configuration error; absent fields are treated as zero.
type MerchantFeeConfig struct {
	ID            uint            `gorm:"primarykey"`
	MerchantID    uint            `gorm:"uniqueIndex;not null"`
	PercentageFee decimal.Decimal `gorm:"type:decimal(8,4);default:0"`
	FixedFee      decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	FxMarkupPct   decimal.Decimal `gorm:"type:decimal(8,4);default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
