package paymentlink

import (
	"time"

	"paylink/internal/models"
	"paylink/internal/services/fee"
	"paylink/internal/services/psp"

	"github.com/shopspring/decimal"
)

type CreateLinkCommand struct {
	MerchantID  uint
	RecipientID *uint
	Amount      decimal.Decimal
	Currency    string
	Description string
	ExpiresAt   *time.Time
}

type UpdateLinkCommand struct {
	Description *string
	Amount      *decimal.Decimal
	ExpiresAt   *time.Time
}

// LinkView is the read model returned to the API layer: the link together
// with its current fee breakdown, checkout URL and preferred provider.
type LinkView struct {
	Link         *models.PaymentLink
	FeeBreakdown *fee.FeeBreakdown
	CheckoutURL  string
	PreferredPsp psp.Code
}

// CheckoutToken pairs a card token with the provider that issued it, so the
// checkout page can hand the token back for the charge.
type CheckoutToken struct {
	PspCode psp.Code
	Token   *psp.CardToken
}

// ProcessPaymentResult describes the synchronous outcome of paying a link.
type ProcessPaymentResult struct {
	PaymentID    uint
	Status       string
	PspCode      psp.Code
	PspReference string
	Amount       decimal.Decimal
	Currency     string
	FeeBreakdown *fee.FeeBreakdown
}
