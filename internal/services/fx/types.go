package fx

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxQuote is a single point-in-time rate for a currency pair. EffectiveRate
// is BaseRate plus the signed JitterApplied, all at 6 decimal places.
type FxQuote struct {
	BaseCurrency    string          `json:"base_currency"`
	CounterCurrency string          `json:"counter_currency"`
	BaseRate        decimal.Decimal `json:"base_rate"`
	JitterApplied   decimal.Decimal `json:"jitter_applied"`
	EffectiveRate   decimal.Decimal `json:"effective_rate"`
	QuotedAt        time.Time       `json:"quoted_at"`
}
