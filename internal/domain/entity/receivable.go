package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por cobrar.
const (
	ReceivableStatusPending   = "PENDENTE"
	ReceivableStatusPartial   = "PARCIAL"
	ReceivableStatusPaid      = "PAGO"
	ReceivableStatusCancelled = "CANCELADO"
)

// Receivable cuenta por cobrar generada por una forma de pago diferida (boleto, crediário).
type Receivable struct {
	ID               string
	SaleID           string
	CustomerID       string
	Method           PaymentMethod
	Installment      int
	InstallmentCount int
	Amount           decimal.Decimal
	Settled          decimal.Decimal
	DueDate          time.Time
	Status           string
	CancelledAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Outstanding saldo pendiente.
func (r *Receivable) Outstanding() decimal.Decimal {
	return r.Amount.Sub(r.Settled)
}
