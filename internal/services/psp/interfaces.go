package psp

import "context"

// Client is the uniform PSP capability set. Charge returns a ChargeResult for
// any well-formed provider decision (including declines) and an error only for
// transport or provider-outage failures.
type Client interface {
	Code() Code
	TokenizeCard(req TokenizationRequest) (*CardToken, error)
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// Publisher receives charge-outcome notifications emitted by PSP clients.
// Mock clients publish through it instead of calling back into the
// reconciler, which keeps the webhook loop a one-way flow.
type Publisher interface {
	PublishChargeSucceeded(code Code, pspChargeID, paymentID string)
	PublishChargeFailed(code Code, pspChargeID, paymentID, failureCode, failureMessage string)
}
