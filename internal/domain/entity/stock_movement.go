package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (kardex).
const (
	StockMovementIN     = "IN"     // entrada por compra
	StockMovementOUT    = "OUT"    // salida por venta
	StockMovementRETURN = "RETURN" // reingreso por cancelación de venta
)

// StockMovement registro del kardex. ReferenceID apunta a la venta o a la nota de compra.
type StockMovement struct {
	ID          string
	ReferenceID string
	ProductID   string
	Type        string
	Quantity    decimal.Decimal // positivo entrada/reingreso, negativo salida
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	STAmount    decimal.Decimal // ICMS-ST pagado en la entrada
	Date        time.Time
	CreatedBy   string
}
