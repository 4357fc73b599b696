package fee

import (
	"context"
	"math/rand"
	"testing"

	apperrors "paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/services/fx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfigRepo struct {
	configs map[uint]*models.MerchantFeeConfig
}

func (r *fakeConfigRepo) FindByMerchantID(merchantID uint) (*models.MerchantFeeConfig, error) {
	return r.configs[merchantID], nil
}

func repoWith(merchantID uint, cfg models.MerchantFeeConfig) *fakeConfigRepo {
	cfg.MerchantID = merchantID
	return &fakeConfigRepo{configs: map[uint]*models.MerchantFeeConfig{merchantID: &cfg}}
}

func noFxEngine(repo ConfigRepository) Engine {
	return NewEngine(repo, fx.NewInMemoryProvider(nil, 0), Config{})
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEngine_ExampleScenario(t *testing.T) {
	repo := repoWith(1, models.MerchantFeeConfig{
		PercentageFee: d("0.03"),
		FixedFee:      d("1.00"),
		FxMarkupPct:   d("0.01"),
	})
	engine := noFxEngine(repo)

	breakdown, err := engine.Compute(context.Background(), 1, nil, d("100.00"), "USD")

	require.NoError(t, err)
	assert.Equal(t, "100.00", breakdown.BaseAmount.StringFixed(2))
	assert.Equal(t, "4.00", breakdown.ProcessingFee.StringFixed(2))
	assert.Equal(t, "1.00", breakdown.FxFee.StringFixed(2))
	assert.Equal(t, "0.00", breakdown.IncentiveDiscount.StringFixed(2))
	assert.Equal(t, "5.00", breakdown.TotalFees.StringFixed(2))
	assert.Equal(t, "95.00", breakdown.FinalAmount.StringFixed(2))
	assert.Equal(t, "USD", breakdown.Currency)
}

func TestEngine_MissingConfig(t *testing.T) {
	engine := noFxEngine(&fakeConfigRepo{configs: map[uint]*models.MerchantFeeConfig{}})

	_, err := engine.Compute(context.Background(), 42, nil, d("10.00"), "USD")

	assert.ErrorIs(t, err, apperrors.ErrMerchantConfigMissing)
}

func TestEngine_PercentageOnlyConfig(t *testing.T) {
	repo := repoWith(1, models.MerchantFeeConfig{PercentageFee: d("0.025")})
	engine := noFxEngine(repo)

	amount := d("19.99")
	breakdown, err := engine.Compute(context.Background(), 1, nil, amount, "USD")

	require.NoError(t, err)
	assert.True(t, breakdown.ProcessingFee.Equal(amount.Mul(d("0.025")).Round(2)))
	assert.True(t, breakdown.FxFee.IsZero(), "fxFee must be zero without a markup")
}

func TestEngine_RoundingHalfUp(t *testing.T) {
	// 10.01 * 0.025 = 0.250250 -> 0.25; 10.30 * 0.025 = 0.2575 -> 0.26
	repo := repoWith(1, models.MerchantFeeConfig{PercentageFee: d("0.025")})
	engine := noFxEngine(repo)

	b1, err := engine.Compute(context.Background(), 1, nil, d("10.01"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.25", b1.ProcessingFee.StringFixed(2))

	b2, err := engine.Compute(context.Background(), 1, nil, d("10.30"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.26", b2.ProcessingFee.StringFixed(2))
}

func TestEngine_InvariantsHoldForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tolerance := d("0.01")

	for i := 0; i < 500; i++ {
		cfg := models.MerchantFeeConfig{
			PercentageFee: decimal.NewFromFloat(rng.Float64() * 0.1).Round(4),
			FixedFee:      decimal.NewFromFloat(rng.Float64() * 5).Round(2),
			FxMarkupPct:   decimal.NewFromFloat(rng.Float64() * 0.05).Round(4),
		}
		engine := noFxEngine(repoWith(1, cfg))

		amount := decimal.NewFromFloat(rng.Float64() * 10000).Round(2)
		b, err := engine.Compute(context.Background(), 1, nil, amount, "USD")
		require.NoError(t, err)

		sum := b.ProcessingFee.Add(b.FxFee).Sub(b.IncentiveDiscount)
		assert.True(t, b.TotalFees.Sub(sum).Abs().LessThanOrEqual(tolerance),
			"totalFees=%s but components sum to %s (cfg=%+v amount=%s)", b.TotalFees, sum, cfg, amount)

		net := b.BaseAmount.Sub(b.TotalFees)
		assert.True(t, b.FinalAmount.Sub(net).Abs().LessThanOrEqual(tolerance),
			"finalAmount=%s but base-total=%s", b.FinalAmount, net)
	}
}

// stubRateProvider counts quote calls for the FX payout path.
type stubRateProvider struct {
	quote *fx.FxQuote
	err   error
	calls int
}

func (p *stubRateProvider) Quote(ctx context.Context, base, counter string) (*fx.FxQuote, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.quote, nil
}

func TestEngine_FxPayoutDoesNotAlterBreakdown(t *testing.T) {
	repo := repoWith(1, models.MerchantFeeConfig{
		PercentageFee: d("0.03"),
		FixedFee:      d("1.00"),
		FxMarkupPct:   d("0.01"),
	})
	provider := &stubRateProvider{quote: &fx.FxQuote{
		BaseCurrency:    "USD",
		CounterCurrency: "MXN",
		BaseRate:        d("17.20"),
		JitterApplied:   decimal.Zero,
		EffectiveRate:   d("17.20"),
	}}
	engine := NewEngine(repo, provider, Config{
		FxEnabled:      true,
		PayoutCurrency: "MXN",
		MarkupPercent:  d("0.005"),
	})

	breakdown, err := engine.Compute(context.Background(), 1, nil, d("100.00"), "USD")

	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "payout conversion should consult the rate provider once")
	assert.Equal(t, "5.00", breakdown.TotalFees.StringFixed(2))
	assert.Equal(t, "95.00", breakdown.FinalAmount.StringFixed(2))
	assert.Equal(t, "USD", breakdown.Currency, "breakdown stays in the charge currency")
}

func TestEngine_FxSkippedForPayoutCurrency(t *testing.T) {
	repo := repoWith(1, models.MerchantFeeConfig{PercentageFee: d("0.03")})
	provider := &stubRateProvider{}
	engine := NewEngine(repo, provider, Config{FxEnabled: true, PayoutCurrency: "MXN"})

	_, err := engine.Compute(context.Background(), 1, nil, d("50.00"), "mxn")

	require.NoError(t, err)
	assert.Equal(t, 0, provider.calls)
}

func TestEngine_UnknownFxPairFailsCompute(t *testing.T) {
	repo := repoWith(1, models.MerchantFeeConfig{PercentageFee: d("0.03")})
	engine := NewEngine(repo, fx.NewInMemoryProvider(nil, 0), Config{
		FxEnabled:      true,
		PayoutCurrency: "MXN",
	})

	_, err := engine.Compute(context.Background(), 1, nil, d("50.00"), "USD")

	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}
