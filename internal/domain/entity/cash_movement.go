package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento manual de caja.
const (
	CashMovementSangria    = "SANGRIA"    // retiro
	CashMovementSuprimento = "SUPRIMENTO" // refuerzo
)

// CashMovement movimiento manual de efectivo, independiente de las ventas.
type CashMovement struct {
	ID         string
	SessionID  string
	Type       string
	Amount     decimal.Decimal
	Reason     string
	OperatorID string
	CreatedAt  time.Time
}
