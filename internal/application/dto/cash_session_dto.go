package dto

import "github.com/shopspring/decimal"

// OpenCashSessionRequest body para POST /api/cash-sessions.
type OpenCashSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// CashMovementRequest body para POST /api/cash-sessions/current/movements.
type CashMovementRequest struct {
	Type   string          `json:"type"` // SANGRIA|SUPRIMENTO
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// CloseCashSessionRequest body para POST /api/cash-sessions/current/close.
type CloseCashSessionRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
}

// CashSessionResponse sesión de caja con totales y, si está cerrada, la conferencia.
type CashSessionResponse struct {
	ID              string                 `json:"id"`
	OperatorID      string                 `json:"operator_id"`
	Status          string                 `json:"status"`
	OpenedAt        string                 `json:"opened_at"`
	ClosedAt        string                 `json:"closed_at,omitempty"`
	OpeningFloat    decimal.Decimal        `json:"opening_float"`
	TotalCash       decimal.Decimal        `json:"total_cash"`
	TotalPix        decimal.Decimal        `json:"total_pix"`
	TotalCard       decimal.Decimal        `json:"total_card"`
	TotalSuprimento decimal.Decimal        `json:"total_suprimento"`
	TotalSangria    decimal.Decimal        `json:"total_sangria"`
	ExpectedCash    decimal.Decimal        `json:"expected_cash"` // en curso o el fijado al cerrar
	CountedCash     *decimal.Decimal       `json:"counted_cash,omitempty"`
	Discrepancy     *decimal.Decimal       `json:"discrepancy,omitempty"`
	Movements       []CashMovementResponse `json:"movements"`
}

// CashMovementResponse movimiento manual.
type CashMovementResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
	OperatorID string          `json:"operator_id"`
	CreatedAt  string          `json:"created_at"`
}
