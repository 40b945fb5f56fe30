package dto

import "github.com/shopspring/decimal"

// StockEntryRequest body para POST /api/inventory/stock-entries.
// OriginState vacío = compra dentro del estado (sin ICMS-ST).
type StockEntryRequest struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	OriginState   string          `json:"origin_state,omitempty"`
	MarkupPercent decimal.Decimal `json:"markup_percent"` // MVA
	InvoiceRef    string          `json:"invoice_ref,omitempty"`
}

// StockEntryResponse resultado de la entrada: nuevo stock, nuevo PMP e ICMS-ST pagado.
type StockEntryResponse struct {
	MovementID        string          `json:"movement_id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	PreviousAvgCost   decimal.Decimal `json:"previous_avg_cost"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	EffectiveUnitCost decimal.Decimal `json:"effective_unit_cost"` // costo unitario + ST por unidad
	STAmount          decimal.Decimal `json:"st_amount"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo el stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	Barcode            string          `json:"barcode"`
	Description        string          `json:"description"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // PMP
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`     // (precio - PMP) / precio
	Priority           int             `json:"priority"`             // 1 = más urgente
}
