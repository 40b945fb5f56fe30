// Package payment enruta cada forma de pago a la caja o a una cuenta por cobrar.
// Agregar una forma de pago es agregar una entrada a la tabla de despacho.
package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// Bucket totalizador de la sesión de caja que recibe el pago.
type Bucket string

const (
	BucketCash Bucket = "CASH"
	BucketPix  Bucket = "PIX"
	BucketCard Bucket = "CARD" // débito y crédito se totalizan juntos
	BucketNone Bucket = ""     // pago diferido: no pasa por la caja
)

// Terms plazos de cobranza de los pagos diferidos.
type Terms struct {
	BoletoDueDays         int
	CrediarioIntervalDays int
	MaxInstallments       int // 0 = sin techo
}

// DefaultTerms boleto a 30 días, crediário con hasta 12 cuotas cada 30 días.
func DefaultTerms() Terms {
	return Terms{BoletoDueDays: 30, CrediarioIntervalDays: 30, MaxInstallments: 12}
}

// Installment cuota de una cuenta por cobrar.
type Installment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// ScheduleFunc calcula las cuotas de un pago diferido.
type ScheduleFunc func(terms Terms, saleDate time.Time, amount decimal.Decimal, installments int) []Installment

// Route destino de una forma de pago: un bucket de caja o un calendario de cobranza.
type Route struct {
	Bucket   Bucket
	Schedule ScheduleFunc
}

// Deferred indica si la forma de pago genera cuentas por cobrar en lugar de afectar la caja.
func (r Route) Deferred() bool {
	return r.Schedule != nil
}

var routes = map[entity.PaymentMethod]Route{
	entity.PaymentCash:      {Bucket: BucketCash},
	entity.PaymentPix:       {Bucket: BucketPix},
	entity.PaymentDebit:     {Bucket: BucketCard},
	entity.PaymentCredit:    {Bucket: BucketCard},
	entity.PaymentBoleto:    {Schedule: boletoSchedule},
	entity.PaymentCrediario: {Schedule: crediarioSchedule},
}

// RouteFor devuelve la ruta de la forma de pago o un rechazo INVALID_PAYMENT si no existe.
func RouteFor(method entity.PaymentMethod) (Route, error) {
	r, ok := routes[method]
	if !ok {
		return Route{}, domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
			"forma de pago no soportada: %q", method)
	}
	return r, nil
}

// Methods formas de pago aceptadas.
func Methods() []entity.PaymentMethod {
	out := make([]entity.PaymentMethod, 0, len(routes))
	for m := range routes {
		out = append(out, m)
	}
	return out
}

// boletoSchedule un único vencimiento a BoletoDueDays de la venta; las cuotas se ignoran.
func boletoSchedule(terms Terms, saleDate time.Time, amount decimal.Decimal, _ int) []Installment {
	return []Installment{{
		Number:  1,
		Amount:  amount,
		DueDate: saleDate.AddDate(0, 0, terms.BoletoDueDays),
	}}
}

// crediarioSchedule n cuotas mensuales a partir de la venta.
func crediarioSchedule(terms Terms, saleDate time.Time, amount decimal.Decimal, installments int) []Installment {
	amounts := SplitInstallments(amount, installments)
	out := make([]Installment, len(amounts))
	for i, a := range amounts {
		out[i] = Installment{
			Number:  i + 1,
			Amount:  a,
			DueDate: saleDate.AddDate(0, 0, terms.CrediarioIntervalDays*(i+1)),
		}
	}
	return out
}

// SplitInstallments divide amount en n partes de centavos exactos; el resto va en la última.
func SplitInstallments(amount decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		n = 1
	}
	part := amount.Div(decimal.NewFromInt(int64(n))).Truncate(2)
	out := make([]decimal.Decimal, n)
	acc := decimal.Zero
	for i := 0; i < n-1; i++ {
		out[i] = part
		acc = acc.Add(part)
	}
	out[n-1] = amount.Sub(acc)
	return out
}

// Validate verifica una asignación de pago antes de tocar la base.
// Las cuotas no pueden superar terms.MaxInstallments ni dejar cuotas de menos de un centavo.
func Validate(p entity.PaymentAllocation, terms Terms) error {
	if _, err := RouteFor(p.Method); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
			"monto de %s debe ser mayor que cero", p.Method)
	}
	if p.Installments < 0 {
		return domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
			"cuotas inválidas para %s: %d", p.Method, p.Installments)
	}
	if terms.MaxInstallments > 0 && p.Installments > terms.MaxInstallments {
		return domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
			"%s admite hasta %d cuotas, se pidieron %d", p.Method, terms.MaxInstallments, p.Installments)
	}
	if p.Method == entity.PaymentCrediario && p.Installments > 1 &&
		decimal.NewFromInt(int64(p.Installments)).GreaterThan(p.Amount.Mul(decimal.NewFromInt(100))) {
		return domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
			"%d cuotas dejan cuotas de menos de un centavo", p.Installments)
	}
	return nil
}

// String para logs.
func (r Route) String() string {
	if r.Deferred() {
		return "deferred"
	}
	return fmt.Sprintf("drawer:%s", r.Bucket)
}
