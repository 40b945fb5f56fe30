package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// CostScale decimales del costo medio ponderado.
const CostScale = 4

// QuantityScale decimales de las cantidades (NUMERIC(14,3) en la base).
const QuantityScale = 3

// ValidQuantity cantidad positiva representable con QuantityScale decimales.
func ValidQuantity(q decimal.Decimal) bool {
	return q.IsPositive() && q.Equal(q.Round(QuantityScale))
}

// ApplyStockEntry calcula el nuevo costo medio ponderado (PMP) tras una entrada de stock.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
//
// Sin stock previo (StockActual <= 0) no hay historia que promediar y el costo es el de la entrada.
// Debe llamarse bajo el mismo bloqueo que actualiza la cantidad del producto.
func ApplyStockEntry(currentQty, currentAvgCost, incomingQty, incomingUnitCost decimal.Decimal) decimal.Decimal {
	if currentQty.LessThanOrEqual(decimal.Zero) {
		return incomingUnitCost.Round(CostScale)
	}
	sum := currentQty.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := currentQty.Mul(currentAvgCost).Add(incomingQty.Mul(incomingUnitCost))
	return num.Div(sum).Round(CostScale)
}

// SnapshotCogs devuelve el PMP vigente como costo histórico de la línea de venta.
// Se llama dentro de la transacción de la venta, con la fila del producto bloqueada.
func SnapshotCogs(product *entity.Product) decimal.Decimal {
	return product.AverageCost
}
