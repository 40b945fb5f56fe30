package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxReformRateWindow alícuotas IBS/CBS (y del impuesto selectivo) vigentes en un intervalo.
// Category vacía = régimen general. ValidTo nil = vigente sin fecha de fin. Alícuotas como fracción (0.0090 = 0,9%).
type TaxReformRateWindow struct {
	ID            string
	Category      string
	ValidFrom     time.Time
	ValidTo       *time.Time
	IBSRate       decimal.Decimal
	CBSRate       decimal.Decimal
	SelectiveRate decimal.Decimal
}

// Contains indica si date cae dentro de la ventana [ValidFrom, ValidTo].
func (w *TaxReformRateWindow) Contains(date time.Time) bool {
	if date.Before(w.ValidFrom) {
		return false
	}
	return w.ValidTo == nil || !date.After(*w.ValidTo)
}
