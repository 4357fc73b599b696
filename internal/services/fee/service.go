// Package fee computes the deterministic fee breakdown for a charge,
// optionally consulting the FX rate provider for payout conversion.
package fee

import (
	"context"
	"fmt"
	"log"
	"strings"

	apperrors "paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/services/fx"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Engine derives the fee breakdown for an amount/currency/merchant triple.
type Engine interface {
	Compute(ctx context.Context, merchantID uint, recipientID *uint, amount decimal.Decimal, currency string) (*FeeBreakdown, error)
}

// ConfigRepository looks up per-merchant pricing. A nil config without error
// means the merchant is unconfigured.
type ConfigRepository interface {
	FindByMerchantID(merchantID uint) (*models.MerchantFeeConfig, error)
}

// Config carries the FX payout settings of the engine.
type Config struct {
	FxEnabled      bool
	PayoutCurrency string
	// MarkupPercent is the extra markup applied on top of the quoted rate,
	// e.g. 0.005 for fifty basis points.
	MarkupPercent decimal.Decimal
}

type engine struct {
	configs      ConfigRepository
	rateProvider fx.RateProvider
	cfg          Config
}

func NewEngine(configs ConfigRepository, rateProvider fx.RateProvider, cfg Config) Engine {
	return &engine{
		configs:      configs,
		rateProvider: rateProvider,
		cfg:          cfg,
	}
}

// Compute applies the fee steps in fixed order, rounding each monetary
// intermediate to 2 decimal places (half up) before the next step.
func (e *engine) Compute(
	ctx context.Context,
	merchantID uint,
	recipientID *uint,
	amount decimal.Decimal,
	currency string,
) (*FeeBreakdown, error) {
	config, err := e.configs.FindByMerchantID(merchantID)
	if err != nil {
		return nil, fmt.Errorf("fee config lookup for merchant %d: %w", merchantID, err)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: merchant %d", apperrors.ErrMerchantConfigMissing, merchantID)
	}

	baseAmount := amount.Round(moneyScale)

	processingFee := percentageFee(baseAmount, config.PercentageFee).Add(config.FixedFee)
	fxFee := percentageFee(baseAmount, config.FxMarkupPct)

	// Reserved extension point: no incentive rules run in the core path.
	incentiveDiscount := decimal.Zero

	totalFees := processingFee.Add(fxFee).Sub(incentiveDiscount)
	finalAmount := baseAmount.Sub(totalFees)

	if e.cfg.FxEnabled && !strings.EqualFold(currency, e.cfg.PayoutCurrency) {
		if err := e.logPayout(ctx, merchantID, finalAmount, currency); err != nil {
			return nil, err
		}
	}

	return &FeeBreakdown{
		BaseAmount:        baseAmount,
		ProcessingFee:     processingFee.Round(moneyScale),
		FxFee:             fxFee.Round(moneyScale),
		IncentiveDiscount: incentiveDiscount.Round(moneyScale),
		TotalFees:         totalFees.Round(moneyScale),
		FinalAmount:       finalAmount.Round(moneyScale),
		Currency:          currency,
	}, nil
}

// logPayout converts the net amount into the payout currency for settlement
// visibility. The figure is informational only and never persisted; the
// returned breakdown stays in the charge currency.
func (e *engine) logPayout(ctx context.Context, merchantID uint, finalAmount decimal.Decimal, currency string) error {
	quote, err := e.rateProvider.Quote(ctx, currency, e.cfg.PayoutCurrency)
	if err != nil {
		return fmt.Errorf("fx quote for payout: %w", err)
	}

	adjustedRate := quote.EffectiveRate.
		Mul(decimal.New(1, 0).Add(e.cfg.MarkupPercent)).
		Round(6)
	payoutAmount := finalAmount.Mul(adjustedRate).Round(moneyScale)

	log.Printf("fx payout for merchant=%d: net=%s %s providerRate=%s rateWithMarkup=%s payout=%s %s",
		merchantID, finalAmount, currency, quote.EffectiveRate, adjustedRate,
		payoutAmount, e.cfg.PayoutCurrency)
	return nil
}

func percentageFee(base, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return decimal.Zero
	}
	return base.Mul(pct).Round(moneyScale)
}
