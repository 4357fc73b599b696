package psp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "paylink/internal/errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/token"
)

// Simulation tokens accepted by the Stripe mock.
const (
	SimStripeFailed    = "sim_stripe_failed"
	SimStripeException = "sim_stripe_exception"
)

// StripeClientMock emulates Stripe with deterministic behavior per token.
// Real PANs are forwarded to Stripe's token API when a secret key is
// configured, otherwise tokenization stays fully local.
type StripeClientMock struct {
	store     *TokenStore
	publisher Publisher
	stripeKey string
	testCards map[string]struct {
		token string
		brand string
	}
}

func NewStripeClientMock(store *TokenStore, publisher Publisher, stripeKey string) *StripeClientMock {
	return &StripeClientMock{
		store:     store,
		publisher: publisher,
		stripeKey: stripeKey,
		testCards: map[string]struct {
			token string
			brand string
		}{
			"4242424242424242": {"tok_visa", "Visa"},
			"4000056655665556": {"tok_visa_debit", "Visa Debit"},
			"5555555555554444": {"tok_mastercard", "Mastercard"},
			"2223003122003222": {"tok_mastercard_2", "Mastercard"},
			"378282246310005":  {"tok_amex", "American Express"},
			"6011111111111117": {"tok_discover", "Discover"},
		},
	}
}

func (c *StripeClientMock) Code() Code {
	return CodeStripe
}

func (c *StripeClientMock) TokenizeCard(req TokenizationRequest) (*CardToken, error) {
	if strings.HasPrefix(req.CardNumber, "tok_") {
		// Pre-tokenized input passes through untouched.
		card := CardToken{
			Token:     req.CardNumber,
			Last4:     "4242",
			Brand:     brandFromTestToken(req.CardNumber),
			CreatedAt: time.Now(),
		}
		c.store.Put(card)
		return &card, nil
	}

	if len(req.CardNumber) < 13 {
		return nil, fmt.Errorf("%w: card number too short", apperrors.ErrCardTokenization)
	}

	if tc, ok := c.testCards[req.CardNumber]; ok {
		card := CardToken{
			Token:     tc.token,
			Last4:     req.CardNumber[len(req.CardNumber)-4:],
			Brand:     tc.brand,
			CreatedAt: time.Now(),
		}
		c.store.Put(card)
		return &card, nil
	}

	if !validLuhn(req.CardNumber) {
		return nil, fmt.Errorf("%w: failed Luhn check", apperrors.ErrCardTokenization)
	}

	if c.stripeKey != "" {
		return c.tokenizeLive(req)
	}

	card := CardToken{
		Token:     "tok_stripe_mock_" + uuid.NewString(),
		Last4:     req.CardNumber[len(req.CardNumber)-4:],
		Brand:     inferBrand(req.CardNumber),
		CreatedAt: time.Now(),
	}
	c.store.Put(card)
	return &card, nil
}

// tokenizeLive forwards the card to Stripe's token API.
func (c *StripeClientMock) tokenizeLive(req TokenizationRequest) (*CardToken, error) {
	stripe.Key = c.stripeKey

	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(req.CardNumber),
			ExpMonth: stripe.String(req.ExpiryMonth),
			ExpYear:  stripe.String(req.ExpiryYear),
			CVC:      stripe.String(req.CVC),
		},
	}

	stripeToken, err := token.New(params)
	if err != nil {
		log.Printf("stripe tokenization error: %v", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCardTokenization, err)
	}

	card := CardToken{
		Token:     stripeToken.ID,
		Last4:     stripeToken.Card.Last4,
		Brand:     string(stripeToken.Card.Brand),
		CreatedAt: time.Now(),
	}
	c.store.Put(card)
	return &card, nil
}

func (c *StripeClientMock) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}

	switch strings.ToLower(req.CardToken) {
	case SimStripeException:
		return ChargeResult{}, errors.New("simulated Stripe outage")
	case SimStripeFailed:
		return FailureResult("ch_simulated_stripe", "SIM_STRIPE_FAILED", "Simulated Stripe failure"), nil
	}

	pspChargeID := "ch_stripe_mock_" + uuid.NewString()

	if _, ok := c.store.Get(req.CardToken); !ok {
		result := FailureResult(pspChargeID, "INVALID_TOKEN", "Card token not found in Stripe mock")
		c.publisher.PublishChargeFailed(CodeStripe, pspChargeID, "", result.FailureCode, result.FailureMessage)
		return result, nil
	}

	c.publisher.PublishChargeSucceeded(CodeStripe, pspChargeID, "")
	return SuccessResult(pspChargeID, req.Amount, req.Currency), nil
}

func brandFromTestToken(tok string) string {
	switch tok {
	case "tok_visa", "tok_visa_debit":
		return "Visa"
	case "tok_mastercard", "tok_mastercard_2":
		return "Mastercard"
	case "tok_amex":
		return "American Express"
	case "tok_discover":
		return "Discover"
	default:
		return "Unknown"
	}
}

func inferBrand(cardNumber string) string {
	switch {
	case strings.HasPrefix(cardNumber, "4"):
		return "Visa"
	case strings.HasPrefix(cardNumber, "5"):
		return "Mastercard"
	default:
		return "Unknown"
	}
}

// Luhn check over the card number digits, right to left.
func validLuhn(cardNumber string) bool {
	var sum int
	shouldDouble := false

	for i := len(cardNumber) - 1; i >= 0; i-- {
		d := cardNumber[i]
		if d < '0' || d > '9' {
			return false
		}
		digit := int(d - '0')

		if shouldDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		shouldDouble = !shouldDouble
	}

	return sum%10 == 0
}
