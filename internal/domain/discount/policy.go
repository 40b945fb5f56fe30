// Package discount valida el descuento concedido contra el techo del rol del operador.
package discount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// Limits techo de descuento por rol, en porcentaje (5 = 5%).
type Limits map[string]decimal.Decimal

// DefaultLimits techos de fábrica; la configuración los sobreescribe.
func DefaultLimits() Limits {
	return Limits{
		entity.RoleCashier: decimal.NewFromInt(5),
		entity.RoleManager: decimal.NewFromInt(20),
		entity.RoleAdmin:   decimal.NewFromInt(100),
	}
}

// LimitExceededError rechazo con el porcentaje calculado y el techo aplicable.
type LimitExceededError struct {
	Role    string
	Percent decimal.Decimal
	Limit   decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("descuento de %s%% supera el límite de %s%% para el rol %q",
		e.Percent.StringFixed(2), e.Limit.StringFixed(2), e.Role)
}

func (e *LimitExceededError) Unwrap() error { return domain.ErrForbidden }

// Policy autoriza descuentos por rol.
type Policy struct {
	limits Limits
}

// NewPolicy construye la política. Un rol ausente en limits tiene techo cero.
func NewPolicy(limits Limits) *Policy {
	return &Policy{limits: limits}
}

// Limit devuelve el techo del rol.
func (p *Policy) Limit(role string) decimal.Decimal {
	if l, ok := p.limits[role]; ok {
		return l
	}
	return decimal.Zero
}

// Percent descuento relativo al total antes del descuento, en porcentaje.
func Percent(totalAfterDiscount, discountAmount decimal.Decimal) decimal.Decimal {
	base := totalAfterDiscount.Add(discountAmount)
	if !base.IsPositive() {
		return decimal.Zero
	}
	return discountAmount.Div(base).Mul(decimal.NewFromInt(100)).Round(4)
}

// Authorize valida discountAmount sobre totalAfterDiscount (monto a cobrar ya descontado).
// Sin descuento siempre autoriza.
func (p *Policy) Authorize(role string, totalAfterDiscount, discountAmount decimal.Decimal) error {
	if !discountAmount.IsPositive() {
		return nil
	}
	pct := Percent(totalAfterDiscount, discountAmount)
	limit := p.Limit(role)
	if pct.GreaterThan(limit) {
		return &LimitExceededError{Role: role, Percent: pct, Limit: limit}
	}
	return nil
}
