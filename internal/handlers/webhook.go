package handlers

import (
	"log"
	"strings"

	"paylink/internal/services/psp"
	"paylink/internal/services/webhook"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler is the PSP notification ingress. It acknowledges every
// well-formed delivery with a 200 regardless of the reconciliation outcome,
// so a business-logic conflict never makes the provider retry.
type WebhookHandler struct {
	reconciler *webhook.Service
}

func NewWebhookHandler(reconciler *webhook.Service) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

func (h *WebhookHandler) HandlePspWebhook(c *fiber.Ctx) error {
	var input struct {
		PspCode        string `json:"psp_code"`
		PspChargeID    string `json:"psp_charge_id"`
		PaymentID      string `json:"payment_id"`
		Status         string `json:"status"`
		FailureCode    string `json:"failure_code"`
		FailureMessage string `json:"failure_message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.PspChargeID == "" || input.Status == "" {
		return response.BadRequest(c, "psp_charge_id and status are required")
	}

	code := psp.Code(strings.ToUpper(input.PspCode))

	var err error
	switch strings.ToUpper(input.Status) {
	case string(psp.ChargeSucceeded):
		err = h.reconciler.HandleChargeSucceeded(code, input.PspChargeID, input.PaymentID)
	case string(psp.ChargeFailed):
		err = h.reconciler.HandleChargeFailed(code, input.PspChargeID, input.PaymentID,
			input.FailureCode, input.FailureMessage)
	default:
		return response.BadRequest(c, "status must be SUCCEEDED or FAILED")
	}

	if err != nil {
		// Persistence problems are logged but still acked; the audit row is
		// the replay source, not provider retries.
		log.Printf("webhook reconciliation error for pspChargeId=%s: %v", input.PspChargeID, err)
	}

	return response.Success(c, "Webhook received", nil)
}
