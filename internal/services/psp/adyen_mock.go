package psp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "paylink/internal/errors"

	"github.com/google/uuid"
)

// Simulation tokens accepted by the Adyen mock.
const (
	SimAdyenFailed    = "sim_adyen_failed"
	SimAdyenException = "sim_adyen_exception"
)

// AdyenClientMock emulates Adyen with deterministic behavior per token.
type AdyenClientMock struct {
	store     *TokenStore
	publisher Publisher
}

func NewAdyenClientMock(store *TokenStore, publisher Publisher) *AdyenClientMock {
	return &AdyenClientMock{store: store, publisher: publisher}
}

func (c *AdyenClientMock) Code() Code {
	return CodeAdyen
}

func (c *AdyenClientMock) TokenizeCard(req TokenizationRequest) (*CardToken, error) {
	if len(req.CardNumber) < 13 {
		return nil, fmt.Errorf("%w: card number too short", apperrors.ErrCardTokenization)
	}
	if !validLuhn(req.CardNumber) {
		return nil, fmt.Errorf("%w: failed Luhn check", apperrors.ErrCardTokenization)
	}

	card := CardToken{
		Token:     "ady_tok_" + uuid.NewString(),
		Last4:     req.CardNumber[len(req.CardNumber)-4:],
		Brand:     inferBrand(req.CardNumber),
		CreatedAt: time.Now(),
	}
	c.store.Put(card)
	return &card, nil
}

func (c *AdyenClientMock) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}

	switch strings.ToLower(req.CardToken) {
	case SimAdyenException:
		return ChargeResult{}, errors.New("simulated Adyen outage")
	case SimAdyenFailed:
		return FailureResult("ch_simulated_adyen", "SIM_ADYEN_FAILED", "Simulated Adyen failure"), nil
	}

	pspChargeID := "ady_ch_" + uuid.NewString()

	if _, ok := c.store.Get(req.CardToken); !ok {
		result := FailureResult(pspChargeID, "INVALID_TOKEN", "Card token not found in Adyen mock")
		c.publisher.PublishChargeFailed(CodeAdyen, pspChargeID, "", result.FailureCode, result.FailureMessage)
		return result, nil
	}

	c.publisher.PublishChargeSucceeded(CodeAdyen, pspChargeID, "")
	return SuccessResult(pspChargeID, req.Amount, req.Currency), nil
}
