package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
)

// InventoryHandler entradas de stock y reposición (protegido).
type InventoryHandler struct {
	stockEntry    *inventory.StockEntryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stockEntry *inventory.StockEntryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{stockEntry: stockEntry, replenishment: replenishment}
}

// RegisterStockEntry godoc
// @Summary      Registrar entrada de mercadería
// @Description  Calcula el ICMS-ST de compras interestatales, lo suma al costo y recalcula el PMP.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockEntryRequest  true  "product_id, quantity, unit_cost, origin_state, markup_percent"
// @Success      201   {object}  dto.StockEntryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-entries [post]
func (h *InventoryHandler) RegisterStockEntry(c *fiber.Ctx) error {
	var in dto.StockEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stockEntry.RegisterStockEntry(c.UserContext(), CurrentOperator(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos activos por debajo del stock mínimo con la cantidad sugerida de pedido,
//
//	ordenados por mayor déficit.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
