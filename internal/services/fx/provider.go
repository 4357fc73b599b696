// Package fx produces FX quotes from configured base rates with bounded
// random jitter, mimicking a live rate feed.
package fx

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	apperrors "paylink/internal/errors"

	"github.com/shopspring/decimal"
)

const rateScale = 6

// RateProvider quotes a currency pair.
type RateProvider interface {
	Quote(ctx context.Context, baseCurrency, counterCurrency string) (*FxQuote, error)
}

// InMemoryProvider serves quotes from a configured rate table. Jitter is
// drawn fresh on every call; quoting is stateless and never cached here.
type InMemoryProvider struct {
	mu           sync.RWMutex
	baseRates    map[string]decimal.Decimal
	maxJitterBps int
	rng          *rand.Rand
	rngMu        sync.Mutex
}

// NewInMemoryProvider builds a provider over the given rate table.
// maxJitterBps caps the jitter magnitude in basis points of the base rate.
func NewInMemoryProvider(baseRates map[string]decimal.Decimal, maxJitterBps int) *InMemoryProvider {
	rates := make(map[string]decimal.Decimal, len(baseRates))
	for pair, rate := range baseRates {
		rates[strings.ToUpper(pair)] = rate
	}
	return &InMemoryProvider{
		baseRates:    rates,
		maxJitterBps: maxJitterBps,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *InMemoryProvider) Quote(ctx context.Context, baseCurrency, counterCurrency string) (*FxQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from := strings.ToUpper(baseCurrency)
	to := strings.ToUpper(counterCurrency)

	if from == to {
		one := decimal.New(1, 0).Round(rateScale)
		return &FxQuote{
			BaseCurrency:    from,
			CounterCurrency: to,
			BaseRate:        one,
			JitterApplied:   decimal.Zero.Round(rateScale),
			EffectiveRate:   one,
			QuotedAt:        time.Now(),
		}, nil
	}

	key := PairKey(from, to)

	p.mu.RLock()
	baseRate, ok := p.baseRates[key]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRateUnavailable, key)
	}

	jitter := p.randomJitter(baseRate)
	effective := baseRate.Add(jitter).Round(rateScale)

	quote := &FxQuote{
		BaseCurrency:    from,
		CounterCurrency: to,
		BaseRate:        baseRate.Round(rateScale),
		JitterApplied:   jitter,
		EffectiveRate:   effective,
		QuotedAt:        time.Now(),
	}

	log.Printf("fx quote: pair=%s baseRate=%s jitter=%s effectiveRate=%s",
		key, quote.BaseRate, quote.JitterApplied, quote.EffectiveRate)

	return quote, nil
}

// SetRate configures or updates a pair's base rate.
func (p *InMemoryProvider) SetRate(baseCurrency, counterCurrency string, rate decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseRates[PairKey(baseCurrency, counterCurrency)] = rate
}

// randomJitter draws a signed rate delta uniformly within the basis-point cap.
func (p *InMemoryProvider) randomJitter(baseRate decimal.Decimal) decimal.Decimal {
	if p.maxJitterBps <= 0 {
		return decimal.Zero.Round(rateScale)
	}

	p.rngMu.Lock()
	fraction := (p.rng.Float64()*2 - 1) * float64(p.maxJitterBps) / 10000
	p.rngMu.Unlock()

	return baseRate.Mul(decimal.NewFromFloat(fraction)).Round(rateScale)
}

// PairKey normalizes a currency pair into its table key, e.g. "USD:MXN".
func PairKey(base, counter string) string {
	return strings.ToUpper(base) + ":" + strings.ToUpper(counter)
}

// ParseBaseRates parses "USD:MXN=17.20,EUR:USD=1.10" into a rate table.
// Malformed entries are skipped with a log line, matching lenient config
// handling elsewhere.
func ParseBaseRates(raw string) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			log.Printf("invalid FX base rate entry: %q", entry)
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("invalid FX base rate value in %q: %v", entry, err)
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(parts[0]))] = rate
	}
	return rates
}
