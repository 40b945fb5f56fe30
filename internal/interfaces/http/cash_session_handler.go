package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/cashier"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
)

// CashSessionHandler caja del operador autenticado (protegido).
type CashSessionHandler struct {
	uc *cashier.UseCase
}

// NewCashSessionHandler construye el handler.
func NewCashSessionHandler(uc *cashier.UseCase) *CashSessionHandler {
	return &CashSessionHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cash-sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashSessionRequest  true  "Fondo de caja"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-sessions [post]
func (h *CashSessionHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Open(c.UserContext(), CurrentOperator(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current godoc
// @Summary      Caja abierta del operador
// @Tags         cash-sessions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CashSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash-sessions/current [get]
func (h *CashSessionHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext(), CurrentOperator(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecordMovement godoc
// @Summary      Registrar sangria o suprimento
// @Tags         cash-sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashMovementRequest  true  "type SANGRIA|SUPRIMENTO, amount, reason"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cash-sessions/current/movements [post]
func (h *CashSessionHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordMovement(c.UserContext(), CurrentOperator(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Close godoc
// @Summary      Cerrar caja con conferencia
// @Tags         cash-sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseCashSessionRequest  true  "Efectivo contado"
// @Success      200   {object}  dto.CashSessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-sessions/current/close [post]
func (h *CashSessionHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Close(c.UserContext(), CurrentOperator(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
