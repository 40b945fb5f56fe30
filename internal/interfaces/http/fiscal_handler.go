package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
)

// HeaderFiscalSecret secreto compartido con el gateway fiscal.
const HeaderFiscalSecret = "X-Fiscal-Secret"

// FiscalHandler webhook del gateway fiscal (autenticado por secreto compartido, no por JWT).
type FiscalHandler struct {
	callback *fiscal.CallbackUseCase
	secret   string
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(callback *fiscal.CallbackUseCase, secret string) *FiscalHandler {
	return &FiscalHandler{callback: callback, secret: secret}
}

// Callback godoc
// @Summary      Desenlace de emisión de NFC-e
// @Tags         fiscal
// @Accept       json
// @Produce      json
// @Param        X-Fiscal-Secret  header  string                     true  "Secreto compartido"
// @Param        body             body    dto.FiscalCallbackRequest  true  "sale_id, outcome, document_ref, message"
// @Success      200  {object}  dto.FiscalCallbackResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/callback [post]
func (h *FiscalHandler) Callback(c *fiber.Ctx) error {
	got := c.Get(HeaderFiscalSecret)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SECRET", Message: "secreto del gateway inválido"})
	}
	var in dto.FiscalCallbackRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.callback.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
