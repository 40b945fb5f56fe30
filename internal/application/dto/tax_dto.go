package dto

import "github.com/shopspring/decimal"

// SubstitutionTaxRequest body para POST /api/tax/icms-st.
// DestState vacío = estado de la tienda.
type SubstitutionTaxRequest struct {
	ItemValue     decimal.Decimal `json:"item_value"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	OriginState   string          `json:"origin_state"`
	DestState     string          `json:"dest_state,omitempty"`
}

// SubstitutionTaxResponse ICMS-ST calculado.
type SubstitutionTaxResponse struct {
	OriginState    string          `json:"origin_state"`
	DestState      string          `json:"dest_state"`
	InterstateRate decimal.Decimal `json:"interstate_rate"`
	InternalRate   decimal.Decimal `json:"internal_rate"`
	TaxOwed        decimal.Decimal `json:"tax_owed"`
	Formatted      string          `json:"formatted"`
}

// TaxRateWindowRequest body para POST /api/tax/reform-rates. Fechas YYYY-MM-DD.
type TaxRateWindowRequest struct {
	Category      string          `json:"category,omitempty"`
	ValidFrom     string          `json:"valid_from"`
	ValidTo       string          `json:"valid_to,omitempty"`
	IBSRate       decimal.Decimal `json:"ibs_rate"`
	CBSRate       decimal.Decimal `json:"cbs_rate"`
	SelectiveRate decimal.Decimal `json:"selective_rate"`
}

// TaxRateWindowResponse ventana de vigencia.
type TaxRateWindowResponse struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	ValidFrom     string          `json:"valid_from"`
	ValidTo       string          `json:"valid_to,omitempty"`
	IBSRate       decimal.Decimal `json:"ibs_rate"`
	CBSRate       decimal.Decimal `json:"cbs_rate"`
	SelectiveRate decimal.Decimal `json:"selective_rate"`
}
