// Package money formatea importes y porcentajes para los mensajes que ve el operador del PDV.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL formatea un importe en reales con separadores pt-BR (R$ 1.234,56).
func BRL(d decimal.Decimal) string {
	return printer.Sprintf("R$ %.2f", d.Round(2).InexactFloat64())
}

// Percent formatea un porcentaje con dos decimales (8,00%).
func Percent(d decimal.Decimal) string {
	return printer.Sprintf("%.2f%%", d.Round(2).InexactFloat64())
}
