package entity

import "github.com/shopspring/decimal"

// PaymentMethod forma de pago aceptada en el PDV.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "DINHEIRO"
	PaymentPix       PaymentMethod = "PIX"
	PaymentDebit     PaymentMethod = "CARTAO_DEBITO"
	PaymentCredit    PaymentMethod = "CARTAO_CREDITO"
	PaymentBoleto    PaymentMethod = "BOLETO"
	PaymentCrediario PaymentMethod = "CREDIARIO" // crédito de la tienda, en cuotas
)

// PaymentAllocation parte del total de una venta cubierta por una forma de pago.
type PaymentAllocation struct {
	ID           string
	SaleID       string
	Method       PaymentMethod
	Amount       decimal.Decimal
	Installments int
}
