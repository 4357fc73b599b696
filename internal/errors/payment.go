package errors

var (
	ErrMerchantConfigMissing = &DomainError{
		Code:    "MERCHANT_FEE_CONFIG_MISSING",
		Message: "merchant fee configuration not found",
	}
	ErrRateUnavailable = &DomainError{
		Code:    "FX_RATE_UNAVAILABLE",
		Message: "no FX rate configured for currency pair",
	}
	ErrCardTokenization = &DomainError{
		Code:    "CARD_TOKENIZATION_FAILED",
		Message: "card could not be tokenized",
	}
)
