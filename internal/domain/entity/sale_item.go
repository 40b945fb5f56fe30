package entity

import "github.com/shopspring/decimal"

// SaleItem línea de venta. UnitCost y las alícuotas IBS/CBS son fotos tomadas al momento de la venta
// y no se recalculan aunque cambien el PMP o las tablas de la reforma.
type SaleItem struct {
	ID              string
	SaleID          string
	ProductID       string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Discount        decimal.Decimal
	UnitCost        decimal.Decimal // costo histórico (PMP vigente)
	IBSRate         decimal.Decimal
	CBSRate         decimal.Decimal
	SelectiveRate   decimal.Decimal
	IBSAmount       decimal.Decimal
	CBSAmount       decimal.Decimal
	SelectiveAmount decimal.Decimal
}

// Subtotal precio×cantidad menos el descuento del ítem, a 2 decimales.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity).Sub(i.Discount).Round(2)
}

// COGS costo de la mercadería vendida de la línea.
func (i *SaleItem) COGS() decimal.Decimal {
	return i.UnitCost.Mul(i.Quantity).Round(2)
}
