package handlers

import (
	"errors"
	"strings"

	apperrors "paylink/internal/errors"
	"paylink/internal/services/psp"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// PspHandler exposes the tokenization pass-through of the PSP clients.
type PspHandler struct {
	clients map[psp.Code]psp.Client
}

func NewPspHandler(clients []psp.Client) *PspHandler {
	m := make(map[psp.Code]psp.Client, len(clients))
	for _, c := range clients {
		m[c.Code()] = c
	}
	return &PspHandler{clients: m}
}

func (h *PspHandler) TokenizeCard(c *fiber.Ctx) error {
	code := psp.Code(strings.ToUpper(c.Params("code")))
	client, ok := h.clients[code]
	if !ok {
		return response.NotFound(c, "Unknown payment provider")
	}

	var input psp.TokenizationRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	token, err := client.TokenizeCard(input)
	if err != nil {
		if errors.Is(err, apperrors.ErrCardTokenization) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "Tokenization failed")
	}

	return c.JSON(token)
}
