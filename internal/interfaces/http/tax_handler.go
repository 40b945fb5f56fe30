package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/taxrates"
)

// TaxHandler calculadora de ICMS-ST y ventanas de alícuotas de la reforma (protegido).
type TaxHandler struct {
	stockEntry *inventory.StockEntryUseCase
	rates      *taxrates.UseCase
}

// NewTaxHandler construye el handler.
func NewTaxHandler(stockEntry *inventory.StockEntryUseCase, rates *taxrates.UseCase) *TaxHandler {
	return &TaxHandler{stockEntry: stockEntry, rates: rates}
}

// SubstitutionTax godoc
// @Summary      Calcular ICMS-ST
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubstitutionTaxRequest  true  "item_value, markup_percent, origin_state, dest_state"
// @Success      200   {object}  dto.SubstitutionTaxResponse
// @Router       /api/tax/icms-st [post]
func (h *TaxHandler) SubstitutionTax(c *fiber.Ctx) error {
	var in dto.SubstitutionTaxRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.OriginState == "" || in.ItemValue.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "origin_state e item_value >= 0 son requeridos"})
	}
	return c.JSON(h.stockEntry.SubstitutionTax(in))
}

// ListReformRates godoc
// @Summary      Ventanas de alícuotas IBS/CBS
// @Tags         tax
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaxRateWindowResponse
// @Router       /api/tax/reform-rates [get]
func (h *TaxHandler) ListReformRates(c *fiber.Ctx) error {
	list, err := h.rates.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// CreateReformRate godoc
// @Summary      Registrar ventana de alícuotas
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TaxRateWindowRequest  true  "Ventana de vigencia"
// @Success      201   {object}  dto.TaxRateWindowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tax/reform-rates [post]
func (h *TaxHandler) CreateReformRate(c *fiber.Ctx) error {
	var in dto.TaxRateWindowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.rates.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
