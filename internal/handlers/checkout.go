package handlers

import (
	"errors"

	apperrors "paylink/internal/errors"
	"paylink/internal/services/paymentlink"
	"paylink/internal/services/psp"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler tokenizes cards in the context of a payment link, at the
// provider the link's merchant routes to.
type CheckoutHandler struct {
	service *paymentlink.Service
}

func NewCheckoutHandler(service *paymentlink.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) TokenizeCard(c *fiber.Ctx) error {
	var input psp.TokenizationRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.CardNumber == "" {
		return response.BadRequest(c, "card_number is required")
	}

	result, err := h.service.TokenizeForCheckout(c.Params("slug"), input)
	if err != nil {
		switch {
		case errors.Is(err, paymentlink.ErrLinkNotFound):
			return response.NotFound(c, "Payment link not found")
		case errors.Is(err, paymentlink.ErrLinkNotPayable):
			return response.Conflict(c, "Payment link is not payable")
		case errors.Is(err, apperrors.ErrCardTokenization):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, psp.ErrUnknownProvider):
			return response.ServerError(c, "Payment provider is not configured")
		default:
			return response.ServerError(c, "Tokenization failed")
		}
	}

	return c.JSON(fiber.Map{
		"psp_code":   result.PspCode,
		"token":      result.Token.Token,
		"last4":      result.Token.Last4,
		"brand":      result.Token.Brand,
		"created_at": result.Token.CreatedAt,
	})
}
