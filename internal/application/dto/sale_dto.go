package dto

import "github.com/shopspring/decimal"

// RealizeSaleRequest body para POST /api/sales.
// Quote = presupuesto (queda EM_ESPERA sin tocar stock ni caja).
type RealizeSaleRequest struct {
	CustomerID        string            `json:"customer_id,omitempty"`
	Items             []SaleItemRequest `json:"items"`
	Payments          []PaymentRequest  `json:"payments"`
	Discount          decimal.Decimal   `json:"discount"`
	Quote             bool              `json:"quote,omitempty"`
	OnlyInvoicedStock bool              `json:"only_invoiced_stock,omitempty"`
}

// SaleItemRequest línea solicitada. Se resuelve por ProductID o, si va vacío, por Barcode.
// UnitPrice nil = precio de catálogo.
type SaleItemRequest struct {
	ProductID string           `json:"product_id,omitempty"`
	Barcode   string           `json:"barcode,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

// PaymentRequest forma de pago entregada.
type PaymentRequest struct {
	Method       string          `json:"method"` // DINHEIRO|PIX|CARTAO_DEBITO|CARTAO_CREDITO|BOLETO|CREDIARIO
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments,omitempty"`
}

// SaleResponse venta con ítems y pagos.
type SaleResponse struct {
	ID                string               `json:"id"`
	Date              string               `json:"date"`
	OperatorID        string               `json:"operator_id"`
	CustomerID        string               `json:"customer_id,omitempty"`
	CashSessionID     string               `json:"cash_session_id"`
	GrossTotal        decimal.Decimal      `json:"gross_total"`
	Discount          decimal.Decimal      `json:"discount"`
	TotalDiscount     decimal.Decimal      `json:"total_discount"`
	NetTotal          decimal.Decimal      `json:"net_total"`
	Change            decimal.Decimal      `json:"change"`
	TotalIBS          decimal.Decimal      `json:"total_ibs"`
	TotalCBS          decimal.Decimal      `json:"total_cbs"`
	TotalSelective    decimal.Decimal      `json:"total_selective"`
	FiscalStatus      string               `json:"fiscal_status"`
	FiscalDocumentRef string               `json:"fiscal_document_ref,omitempty"`
	FiscalMessage     string               `json:"fiscal_message,omitempty"`
	CancelledAt       string               `json:"cancelled_at,omitempty"`
	CancelReason      string               `json:"cancel_reason,omitempty"`
	Items             []SaleItemResponse   `json:"items"`
	Payments          []PaymentResponse    `json:"payments"`
	Receivables       []ReceivableResponse `json:"receivables,omitempty"`
}

// SaleItemResponse línea con la foto de costo y alícuotas.
type SaleItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	IBSRate         decimal.Decimal `json:"ibs_rate"`
	CBSRate         decimal.Decimal `json:"cbs_rate"`
	IBSAmount       decimal.Decimal `json:"ibs_amount"`
	CBSAmount       decimal.Decimal `json:"cbs_amount"`
	SelectiveAmount decimal.Decimal `json:"selective_amount"`
}

// PaymentResponse forma de pago registrada.
type PaymentResponse struct {
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments,omitempty"`
}

// ReceivableResponse cuenta por cobrar generada por la venta.
type ReceivableResponse struct {
	ID               string          `json:"id"`
	Method           string          `json:"method"`
	Installment      int             `json:"installment"`
	InstallmentCount int             `json:"installment_count"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          string          `json:"due_date"`
	Status           string          `json:"status"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SplitInstructionResponse reparto del neto (split payment de la reforma).
type SplitInstructionResponse struct {
	SaleID       string                 `json:"sale_id"`
	NetTotal     decimal.Decimal        `json:"net_total"`
	Instructions []SplitInstructionItem `json:"instructions"`
}

// SplitInstructionItem monto por receptor.
type SplitInstructionItem struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}
