package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de la tienda a partir del stock mínimo.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos activos bajo el stock mínimo con la cantidad
// sugerida de pedido, priorizados por mayor déficit y luego por mayor margen.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	hundred := decimal.NewFromInt(100)
	factor := decimal.RequireFromString("1.5")

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		idealStock := p.MinStock.Mul(factor)
		suggestedQty := idealStock.Sub(p.Quantity)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}

		var grossMarginPct decimal.Decimal
		if p.Price.GreaterThan(decimal.Zero) {
			grossMarginPct = p.Price.Sub(p.AverageCost).Div(p.Price).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			Barcode:            p.Barcode,
			Description:        p.Description,
			CurrentStock:       p.Quantity,
			MinStock:           p.MinStock,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           p.AverageCost,
			EstimatedOrderCost: suggestedQty.Mul(p.AverageCost).Round(2),
			GrossMarginPct:     grossMarginPct,
		})
	}

	// Primero el mayor déficit; en empate, el mayor margen.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.MinStock.Sub(a.CurrentStock)
		defB := b.MinStock.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
