package paymentlink

import "errors"

var (
	ErrLinkNotFound      = errors.New("payment link not found")
	ErrLinkNotPayable    = errors.New("payment link is not payable in its current status")
	ErrMerchantNotFound  = errors.New("merchant not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrExpiryInPast      = errors.New("expiration date must be in the future")
)
