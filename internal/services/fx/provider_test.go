package fx

import (
	"context"
	"testing"
	"time"

	apperrors "paylink/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD:MXN": decimal.RequireFromString("17.20"),
		"EUR:USD": decimal.RequireFromString("1.10"),
	}
}

func TestInMemoryProvider_SameCurrencyShortCircuits(t *testing.T) {
	p := NewInMemoryProvider(testRates(), 50)

	quote, err := p.Quote(context.Background(), "usd", "USD")

	require.NoError(t, err)
	assert.True(t, quote.BaseRate.Equal(decimal.New(1, 0)))
	assert.True(t, quote.JitterApplied.IsZero())
	assert.True(t, quote.EffectiveRate.Equal(decimal.New(1, 0)))
}

func TestInMemoryProvider_UnknownPair(t *testing.T) {
	p := NewInMemoryProvider(testRates(), 50)

	_, err := p.Quote(context.Background(), "USD", "JPY")

	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}

func TestInMemoryProvider_JitterBounded(t *testing.T) {
	const jitterBps = 50
	p := NewInMemoryProvider(testRates(), jitterBps)

	base := decimal.RequireFromString("17.20")
	maxJitter := base.Mul(decimal.RequireFromString("0.005"))

	for i := 0; i < 200; i++ {
		quote, err := p.Quote(context.Background(), "USD", "MXN")
		require.NoError(t, err)

		assert.True(t, quote.JitterApplied.Abs().LessThanOrEqual(maxJitter),
			"jitter %s exceeds cap %s", quote.JitterApplied, maxJitter)
		assert.True(t, quote.EffectiveRate.Equal(quote.BaseRate.Add(quote.JitterApplied).Round(6)))
	}
}

func TestInMemoryProvider_ZeroJitterConfig(t *testing.T) {
	p := NewInMemoryProvider(testRates(), 0)

	quote, err := p.Quote(context.Background(), "EUR", "USD")

	require.NoError(t, err)
	assert.True(t, quote.JitterApplied.IsZero())
	assert.True(t, quote.EffectiveRate.Equal(quote.BaseRate))
}

func TestParseBaseRates(t *testing.T) {
	rates := ParseBaseRates("USD:MXN=17.20, eur:usd=1.10,,bogus,X:Y=notanumber")

	require.Len(t, rates, 2)
	assert.True(t, rates["USD:MXN"].Equal(decimal.RequireFromString("17.20")))
	assert.True(t, rates["EUR:USD"].Equal(decimal.RequireFromString("1.10")))
}

// fakeQuoteCache is an in-memory QuoteCache for decorator tests.
type fakeQuoteCache struct {
	store map[string]FxQuote
	sets  int
}

func newFakeQuoteCache() *fakeQuoteCache {
	return &fakeQuoteCache{store: make(map[string]FxQuote)}
}

func (c *fakeQuoteCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	q, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dest.(*FxQuote) = q
	return true, nil
}

func (c *fakeQuoteCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	c.store[key] = *value.(*FxQuote)
	return nil
}

type countingProvider struct {
	inner RateProvider
	calls int
}

func (p *countingProvider) Quote(ctx context.Context, base, counter string) (*FxQuote, error) {
	p.calls++
	return p.inner.Quote(ctx, base, counter)
}

func TestCachingProvider_ServesFromCache(t *testing.T) {
	inner := &countingProvider{inner: NewInMemoryProvider(testRates(), 50)}
	cache := newFakeQuoteCache()
	p := NewCachingProvider(inner, cache, time.Minute)

	first, err := p.Quote(context.Background(), "USD", "MXN")
	require.NoError(t, err)

	second, err := p.Quote(context.Background(), "USD", "MXN")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second quote should come from cache")
	assert.Equal(t, 1, cache.sets)
	assert.True(t, first.EffectiveRate.Equal(second.EffectiveRate))
}

func TestCachingProvider_PropagatesUnknownPair(t *testing.T) {
	p := NewCachingProvider(NewInMemoryProvider(testRates(), 50), newFakeQuoteCache(), time.Minute)

	_, err := p.Quote(context.Background(), "USD", "JPY")

	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}
