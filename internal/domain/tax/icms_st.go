// Package tax agrupa los cálculos tributarios del PDV: ICMS-ST en compras interestatales
// y la foto de alícuotas IBS/CBS de la reforma tributaria con su split payment.
package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Alícuotas interestatales de ICMS (Resolución del Senado 22/89, simplificada a dos niveles).
var (
	InterstateRateLow  = decimal.RequireFromString("0.07")
	InterstateRateHigh = decimal.RequireFromString("0.12")
)

// southSoutheast estados del Sur/Sudeste que aplican 7% al vender fuera del grupo (ES no integra el grupo).
var southSoutheast = map[string]bool{
	"SP": true, "RJ": true, "MG": true,
	"PR": true, "SC": true, "RS": true,
}

// InterstateCalculator calcula el ICMS-ST adeudado en compras de otro estado.
// InternalRate es la alícuota interna del estado destino (ej. 0.205 en PE).
type InterstateCalculator struct {
	InternalRate decimal.Decimal
}

// NewInterstateCalculator construye la calculadora con la alícuota interna del destino.
func NewInterstateCalculator(internalRate decimal.Decimal) InterstateCalculator {
	return InterstateCalculator{InternalRate: internalRate}
}

// InterstateRate devuelve la alícuota interestatal aplicable entre origen y destino.
func InterstateRate(originState, destState string) decimal.Decimal {
	origin, dest := normalizeUF(originState), normalizeUF(destState)
	if southSoutheast[origin] && !southSoutheast[dest] {
		return InterstateRateLow
	}
	return InterstateRateHigh
}

// ComputeSubstitutionTax calcula el ICMS-ST de una compra.
//
//	baseST  = valor * (1 + MVA/100)
//	débito  = baseST * alícuota interna destino
//	crédito = valor * alícuota interestatal
//	ST      = max(débito − crédito, 0)
//
// Compras dentro del mismo estado no generan ST.
func (c InterstateCalculator) ComputeSubstitutionTax(itemValue, markupPercent decimal.Decimal, originState, destState string) decimal.Decimal {
	if normalizeUF(originState) == normalizeUF(destState) {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	baseST := itemValue.Mul(decimal.NewFromInt(1).Add(markupPercent.Div(hundred)))
	debit := baseST.Mul(c.InternalRate)
	credit := itemValue.Mul(InterstateRate(originState, destState))
	owed := debit.Sub(credit)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed.Round(2)
}

func normalizeUF(uf string) string {
	return strings.ToUpper(strings.TrimSpace(uf))
}
