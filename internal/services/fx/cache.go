package fx

import (
	"context"
	"log"
	"time"
)

// QuoteCache is the subset of the cache service the decorator needs.
type QuoteCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachingProvider decorates a RateProvider with a TTL cache so hot pairs do
// not re-jitter on every fee computation. Cache failures degrade to the
// inner provider.
type CachingProvider struct {
	inner RateProvider
	cache QuoteCache
	ttl   time.Duration
}

func NewCachingProvider(inner RateProvider, cache QuoteCache, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (p *CachingProvider) Quote(ctx context.Context, baseCurrency, counterCurrency string) (*FxQuote, error) {
	key := "fx:quote:" + PairKey(baseCurrency, counterCurrency)

	var cached FxQuote
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("fx cache read failed for %s: %v", key, err)
	} else if found {
		return &cached, nil
	}

	quote, err := p.inner.Quote(ctx, baseCurrency, counterCurrency)
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetWithTTL(ctx, key, quote, p.ttl); err != nil {
		log.Printf("fx cache write failed for %s: %v", key, err)
	}
	return quote, nil
}
