package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/tax"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/money"
)

// StockEntryUseCase registra entradas de mercadería (compras) de forma transaccional:
// bloqueo de fila del producto (SELECT FOR UPDATE), ICMS-ST si la compra es interestatal,
// nuevo PMP y movimiento IN en el kardex.
type StockEntryUseCase struct {
	txRunner   TxRunner
	calculator tax.InterstateCalculator
	storeState string
	log        *logger.Logger
	now        func() time.Time
}

// NewStockEntryUseCase construye el caso de uso. storeState es la UF de la tienda (destino).
func NewStockEntryUseCase(txRunner TxRunner, calculator tax.InterstateCalculator, storeState string, log *logger.Logger) *StockEntryUseCase {
	return &StockEntryUseCase{
		txRunner:   txRunner,
		calculator: calculator,
		storeState: strings.ToUpper(storeState),
		log:        log.Named("inventory"),
		now:        time.Now,
	}
}

// RegisterStockEntry suma la cantidad al producto y recalcula su PMP con el costo efectivo
// (costo unitario + ICMS-ST por unidad).
func (uc *StockEntryUseCase) RegisterStockEntry(ctx context.Context, op entity.Operator, in dto.StockEntryRequest) (*dto.StockEntryResponse, error) {
	if in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput, "informe producto y cantidad positiva")
	}
	if !inventory.ValidQuantity(in.Quantity) {
		return nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput,
			"cantidad admite hasta %d decimales", inventory.QuantityScale)
	}
	if in.UnitCost.IsNegative() || in.MarkupPercent.IsNegative() {
		return nil, domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "costo y MVA no pueden ser negativos")
	}

	origin := strings.ToUpper(strings.TrimSpace(in.OriginState))
	if origin == "" {
		origin = uc.storeState
	}
	// El ST se calcula sobre el valor total de la compra y se prorratea por unidad.
	itemValue := in.UnitCost.Mul(in.Quantity)
	st := uc.calculator.ComputeSubstitutionTax(itemValue, in.MarkupPercent, origin, uc.storeState)
	effectiveUnitCost := in.UnitCost.Add(st.Div(in.Quantity)).Round(inventory.CostScale)

	now := uc.now()
	reference := in.InvoiceRef
	if reference == "" {
		reference = uuid.New().String()
	}
	out := &dto.StockEntryResponse{
		MovementID:        uuid.New().String(),
		ProductID:         in.ProductID,
		EffectiveUnitCost: effectiveUnitCost,
		STAmount:          st,
	}

	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("producto %s: %w", in.ProductID, err)
		}
		if product == nil {
			return domain.Reject(domain.CodeProductNotFound, domain.ErrNotFound, "producto %s no encontrado", in.ProductID)
		}

		newCost := inventory.ApplyStockEntry(product.Quantity, product.AverageCost, in.Quantity, effectiveUnitCost)
		newQty := product.Quantity.Add(in.Quantity)
		if err := repos.Products.UpdateStock(ctx, product.ID, newQty, newCost); err != nil {
			return fmt.Errorf("actualizar stock: %w", err)
		}
		out.PreviousAvgCost = product.AverageCost
		out.AverageCost = newCost
		out.Quantity = newQty

		return repos.StockMovements.Create(ctx, &entity.StockMovement{
			ID:          out.MovementID,
			ReferenceID: reference,
			ProductID:   product.ID,
			Type:        entity.StockMovementIN,
			Quantity:    in.Quantity,
			UnitCost:    effectiveUnitCost,
			TotalCost:   effectiveUnitCost.Mul(in.Quantity).Round(2),
			STAmount:    st,
			Date:        now,
			CreatedBy:   op.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("operator_id", op.ID).
		Str("origin", origin).
		Str("st_amount", st.StringFixed(2)).
		Str("average_cost", out.AverageCost.String()).
		Msg("entrada de stock")
	return out, nil
}

// SubstitutionTax expone la calculadora para simulaciones del PDV. destState vacío = UF de la tienda.
func (uc *StockEntryUseCase) SubstitutionTax(in dto.SubstitutionTaxRequest) dto.SubstitutionTaxResponse {
	dest := strings.ToUpper(strings.TrimSpace(in.DestState))
	if dest == "" {
		dest = uc.storeState
	}
	origin := strings.ToUpper(strings.TrimSpace(in.OriginState))
	rate := tax.InterstateRate(origin, dest)
	if origin == dest {
		rate = decimal.Zero
	}
	owed := uc.calculator.ComputeSubstitutionTax(in.ItemValue, in.MarkupPercent, origin, dest)
	return dto.SubstitutionTaxResponse{
		OriginState:    origin,
		DestState:      dest,
		InterstateRate: rate,
		InternalRate:   uc.calculator.InternalRate,
		TaxOwed:        owed,
		Formatted:      money.BRL(owed),
	}
}
