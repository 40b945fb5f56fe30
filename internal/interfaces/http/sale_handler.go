package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
)

// SaleHandler ventas del PDV (protegido).
type SaleHandler struct {
	realize *sales.RealizeSaleUseCase
	cancel  *sales.CancelSaleUseCase
	query   *sales.QueryUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(realize *sales.RealizeSaleUseCase, cancel *sales.CancelSaleUseCase, query *sales.QueryUseCase) *SaleHandler {
	return &SaleHandler{realize: realize, cancel: cancel, query: query}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida caja, descuento y pagos; baja stock, acredita la caja y genera cuentas por cobrar
//
//	en una sola transacción. La emisión de la NFC-e se encola.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RealizeSaleRequest  true  "Ítems, pagos, descuento y cliente"
// @Success      201   {object}  dto.SaleResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.RealizeSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.realize.RealizeSale(c.UserContext(), CurrentOperator(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Split godoc
// @Summary      Instrucciones de split payment
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SplitInstructionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/split [get]
func (h *SaleHandler) Split(c *fiber.Ctx) error {
	out, err := h.query.SplitInstructions(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  true  "Motivo"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.cancel.CancelSale(c.UserContext(), CurrentOperator(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
