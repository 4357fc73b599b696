package psp

import (
	"time"

	"github.com/shopspring/decimal"
)

// Code identifies a configured payment service provider.
type Code string

const (
	CodeStripe Code = "STRIPE"
	CodeAdyen  Code = "ADYEN"
)

type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "SUCCEEDED"
	ChargeFailed    ChargeStatus = "FAILED"
)

// TokenizationRequest carries raw card fields into a PSP tokenizer.
type TokenizationRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVC         string `json:"cvc"`
}

// CardToken is the opaque output of tokenization.
type CardToken struct {
	Token     string    `json:"token"`
	Last4     string    `json:"last4"`
	Brand     string    `json:"brand"`
	CreatedAt time.Time `json:"created_at"`
}

// ChargeRequest is immutable once built; both failover attempts share it.
type ChargeRequest struct {
	CardToken string
	Amount    decimal.Decimal
	Currency  string
}

// ChargeResult is a well-formed provider outcome. Amount and Currency are set
// on success; FailureCode and FailureMessage on decline. Transport failures
// never appear here, they surface as errors from Client.Charge.
type ChargeResult struct {
	PspChargeID    string
	Status         ChargeStatus
	Amount         decimal.Decimal
	Currency       string
	FailureCode    string
	FailureMessage string
}

func SuccessResult(pspChargeID string, amount decimal.Decimal, currency string) ChargeResult {
	return ChargeResult{
		PspChargeID: pspChargeID,
		Status:      ChargeSucceeded,
		Amount:      amount,
		Currency:    currency,
	}
}

func FailureResult(pspChargeID, failureCode, failureMessage string) ChargeResult {
	return ChargeResult{
		PspChargeID:    pspChargeID,
		Status:         ChargeFailed,
		FailureCode:    failureCode,
		FailureMessage: failureMessage,
	}
}

// RoutedChargeResult records which provider actually handled the charge.
type RoutedChargeResult struct {
	PspCode Code
	Result  ChargeResult
}
