package handlers

import (
	"errors"
	"time"

	apperrors "paylink/internal/errors"
	"paylink/internal/services/fee"
	"paylink/internal/services/paymentlink"
	"paylink/internal/services/psp"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentLinkHandler struct {
	service *paymentlink.Service
}

func NewPaymentLinkHandler(service *paymentlink.Service) *PaymentLinkHandler {
	return &PaymentLinkHandler{service: service}
}

type paymentLinkResponse struct {
	PublicID     string            `json:"public_id"`
	Slug         string            `json:"slug"`
	MerchantID   uint              `json:"merchant_id"`
	Amount       decimal.Decimal   `json:"amount"`
	Currency     string            `json:"currency"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	ExpiresAt    *time.Time        `json:"expires_at"`
	CheckoutURL  string            `json:"checkout_url"`
	PreferredPsp string            `json:"preferred_psp"`
	FeeBreakdown *fee.FeeBreakdown `json:"fee_breakdown"`
}

func toLinkResponse(view *paymentlink.LinkView) paymentLinkResponse {
	return paymentLinkResponse{
		PublicID:     view.Link.PublicID,
		Slug:         view.Link.Slug,
		MerchantID:   view.Link.MerchantID,
		Amount:       view.Link.Amount,
		Currency:     view.Link.Currency,
		Description:  view.Link.Description,
		Status:       view.Link.Status,
		ExpiresAt:    view.Link.ExpiresAt,
		CheckoutURL:  view.CheckoutURL,
		PreferredPsp: string(view.PreferredPsp),
		FeeBreakdown: view.FeeBreakdown,
	}
}

func (h *PaymentLinkHandler) CreatePaymentLink(c *fiber.Ctx) error {
	var input struct {
		MerchantID  uint            `json:"merchant_id"`
		RecipientID *uint           `json:"recipient_id"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    string          `json:"currency"`
		Description string          `json:"description"`
		ExpiresAt   *time.Time      `json:"expires_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.MerchantID == 0 || input.Currency == "" || !input.Amount.IsPositive() {
		return response.BadRequest(c, "merchant_id, positive amount and currency are required")
	}

	view, err := h.service.CreateLink(c.Context(), paymentlink.CreateLinkCommand{
		MerchantID:  input.MerchantID,
		RecipientID: input.RecipientID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
		ExpiresAt:   input.ExpiresAt,
	})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toLinkResponse(view))
}

func (h *PaymentLinkHandler) GetPaymentLink(c *fiber.Ctx) error {
	view, err := h.service.GetLink(c.Context(), c.Params("slug"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toLinkResponse(view))
}

func (h *PaymentLinkHandler) ListPaymentLinks(c *fiber.Ctx) error {
	merchantID, err := c.ParamsInt("merchantId")
	if err != nil || merchantID <= 0 {
		return response.BadRequest(c, "Invalid merchant id")
	}

	links, err := h.service.ListLinks(uint(merchantID))
	if err != nil {
		return response.ServerError(c, "Failed to list payment links")
	}
	return response.Success(c, "Payment links retrieved", links)
}

func (h *PaymentLinkHandler) UpdatePaymentLink(c *fiber.Ctx) error {
	var input struct {
		Description *string          `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		ExpiresAt   *time.Time       `json:"expires_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	view, err := h.service.UpdateLink(c.Context(), c.Params("slug"), paymentlink.UpdateLinkCommand{
		Description: input.Description,
		Amount:      input.Amount,
		ExpiresAt:   input.ExpiresAt,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toLinkResponse(view))
}

// DeletePaymentLink soft-deletes a link by expiring it. The merchant id is
// required so one merchant cannot expire another's link by slug.
func (h *PaymentLinkHandler) DeletePaymentLink(c *fiber.Ctx) error {
	merchantID := c.QueryInt("merchant_id")
	if merchantID <= 0 {
		return response.BadRequest(c, "merchant_id is required")
	}

	if err := h.service.DeleteLink(c.Params("slug"), uint(merchantID)); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ProcessPayment charges a tokenized card against the link.
func (h *PaymentLinkHandler) ProcessPayment(c *fiber.Ctx) error {
	var input struct {
		PspToken string `json:"psp_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.PspToken == "" {
		return response.BadRequest(c, "psp_token is required")
	}

	result, err := h.service.ProcessPayment(c.Context(), c.Params("slug"), input.PspToken)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment_id":    result.PaymentID,
		"status":        result.Status,
		"psp":           result.PspCode,
		"psp_reference": result.PspReference,
		"amount":        result.Amount,
		"currency":      result.Currency,
		"fee_breakdown": result.FeeBreakdown,
	})
}

// mapError translates service failures into the API's status codes: routing
// exhaustion is a 502, configuration problems a 500, bad FX input a 400.
func (h *PaymentLinkHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, paymentlink.ErrLinkNotFound):
		return response.NotFound(c, "Payment link not found")
	case errors.Is(err, paymentlink.ErrLinkNotPayable):
		return response.Conflict(c, "Payment link is not payable")
	case errors.Is(err, paymentlink.ErrMerchantNotFound),
		errors.Is(err, paymentlink.ErrRecipientNotFound),
		errors.Is(err, paymentlink.ErrExpiryInPast):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, psp.ErrRoutingFailed):
		return response.BadGateway(c, "Payment could not be processed, please try again later")
	case errors.Is(err, apperrors.ErrMerchantConfigMissing):
		return response.ServerError(c, apperrors.ErrMerchantConfigMissing.Message)
	case errors.Is(err, apperrors.ErrRateUnavailable):
		return response.BadRequest(c, apperrors.ErrRateUnavailable.Message)
	default:
		return response.ServerError(c, "Internal error")
	}
}
