package fee

import "github.com/shopspring/decimal"

// FeeBreakdown is the deterministic monetary split of a charge, always
// denominated in the charge currency. Invariants:
// TotalFees = ProcessingFee + FxFee - IncentiveDiscount and
// FinalAmount = BaseAmount - TotalFees.
type FeeBreakdown struct {
	BaseAmount        decimal.Decimal `json:"base_amount"`
	ProcessingFee     decimal.Decimal `json:"processing_fee"`
	FxFee             decimal.Decimal `json:"fx_fee"`
	IncentiveDiscount decimal.Decimal `json:"incentive_discount"`
	TotalFees         decimal.Decimal `json:"total_fees"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	Currency          string          `json:"currency"`
}
