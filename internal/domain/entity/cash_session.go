package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la sesión de caja.
const (
	CashSessionOpen   = "ABERTO"
	CashSessionClosed = "FECHADO"
)

// CashSession caja de un operador: apertura, totales acumulados por forma de pago y cierre con conferencia.
// Un operador tiene como máximo una sesión abierta; el cierre es terminal.
type CashSession struct {
	ID              string
	OperatorID      string
	Status          string
	OpenedAt        time.Time
	ClosedAt        *time.Time
	OpeningFloat    decimal.Decimal // fondo de caja
	TotalCash       decimal.Decimal
	TotalPix        decimal.Decimal
	TotalCard       decimal.Decimal // débito + crédito
	TotalSuprimento decimal.Decimal
	TotalSangria    decimal.Decimal
	ExpectedCash    *decimal.Decimal // calculado al cerrar
	CountedCash     *decimal.Decimal // contado por el operador
	Discrepancy     *decimal.Decimal // contado − esperado
	Movements       []CashMovement
	UpdatedAt       time.Time
}

// IsOpen indica si la sesión admite movimientos.
func (s *CashSession) IsOpen() bool {
	return s.Status == CashSessionOpen
}
