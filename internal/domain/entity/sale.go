package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados fiscales de una venta (NFC-e).
const (
	FiscalStatusPending       = "PENDENTE"     // creada, emisión solicitada o por solicitar
	FiscalStatusApproved      = "AUTORIZADA"   // autorizada por la SEFAZ (callback del gateway)
	FiscalStatusRejected      = "REJEITADA"    // rechazada por la SEFAZ
	FiscalStatusCancelled     = "CANCELADA"    // cancelada; inventario y cobranzas revertidos
	FiscalStatusOnHold        = "EM_ESPERA"    // presupuesto/orçamento: sin efectos de stock ni de caja
	FiscalStatusContingency   = "CONTINGENCIA" // emitida en contingencia, pendiente de transmitir
	FiscalStatusEmissionError = "ERRO_EMISSAO" // falló la solicitud al gateway; se reintenta fuera de banda
)

// RetryableFiscalStatuses estados que el barrido de emisión vuelve a encolar.
var RetryableFiscalStatuses = []string{
	FiscalStatusPending,
	FiscalStatusContingency,
	FiscalStatusEmissionError,
}

// IsRetryableFiscalStatus indica si una venta en este estado admite un (nuevo) intento de emisión.
func IsRetryableFiscalStatus(status string) bool {
	for _, s := range RetryableFiscalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Sale es la cabecera de una venta del PDV. Es dueña de sus ítems y de sus formas de pago.
type Sale struct {
	ID                string
	Date              time.Time
	OperatorID        string
	CustomerID        string // vacío = consumidor final
	CashSessionID     string
	Items             []SaleItem
	Payments          []PaymentAllocation
	GrossTotal        decimal.Decimal // Σ(precio×cantidad − descuento de ítem)
	Discount          decimal.Decimal // descuento a nivel de venta
	NetTotal          decimal.Decimal // max(GrossTotal − Discount, 0)
	Change            decimal.Decimal // troco devuelto en efectivo
	TotalIBS          decimal.Decimal
	TotalCBS          decimal.Decimal
	TotalSelective    decimal.Decimal
	FiscalStatus      string
	OnlyInvoicedStock bool   // emitir solo si hay nota de compra para los ítems
	FiscalDocumentRef string // clave de acceso devuelta por el gateway
	FiscalMessage     string // último mensaje del gateway (rechazo o error)
	EmissionAttempts  int
	LastEmissionAt    *time.Time
	CancelledAt       *time.Time
	CancelledBy       string
	CancelReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ItemDiscountTotal suma los descuentos de ítem.
func (s *Sale) ItemDiscountTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Discount)
	}
	return total
}

// TotalDiscount descuento efectivamente concedido: venta + ítems.
func (s *Sale) TotalDiscount() decimal.Decimal {
	return s.Discount.Add(s.ItemDiscountTotal())
}

// TotalTendered suma lo entregado en todas las formas de pago.
func (s *Sale) TotalTendered() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// IsQuote indica si la venta es un presupuesto en espera.
func (s *Sale) IsQuote() bool {
	return s.FiscalStatus == FiscalStatusOnHold
}
