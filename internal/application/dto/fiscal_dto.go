package dto

// FiscalCallbackRequest body que envía el gateway fiscal a POST /api/fiscal/callback.
type FiscalCallbackRequest struct {
	SaleID      string `json:"sale_id"`
	Outcome     string `json:"outcome"` // approved|rejected|contingency
	DocumentRef string `json:"document_ref,omitempty"`
	Message     string `json:"message,omitempty"`
}

// FiscalCallbackResponse indica si el callback cambió el estado o fue ignorado (duplicado / venta cancelada).
type FiscalCallbackResponse struct {
	SaleID       string `json:"sale_id"`
	FiscalStatus string `json:"fiscal_status"`
	Applied      bool   `json:"applied"`
}
