// Package cashsession implementa la máquina de estados de la caja: ABERTO -> FECHADO (terminal).
// Las funciones solo mutan la entidad; persistir y bloquear es responsabilidad del caso de uso.
package cashsession

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/payment"
)

// Open crea una sesión abierta. existing es la sesión abierta actual del operador (nil si no tiene).
func Open(existing *entity.CashSession, operatorID string, openingFloat decimal.Decimal, now time.Time) (*entity.CashSession, error) {
	if existing != nil && existing.IsOpen() {
		return nil, domain.Reject(domain.CodeSessionAlreadyOpen, domain.ErrConflict,
			"el operador ya tiene la caja %s abierta", existing.ID)
	}
	if openingFloat.IsNegative() {
		return nil, domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "fondo de caja negativo")
	}
	return &entity.CashSession{
		ID:              uuid.New().String(),
		OperatorID:      operatorID,
		Status:          entity.CashSessionOpen,
		OpenedAt:        now,
		OpeningFloat:    openingFloat.Round(2),
		TotalCash:       decimal.Zero,
		TotalPix:        decimal.Zero,
		TotalCard:       decimal.Zero,
		TotalSuprimento: decimal.Zero,
		TotalSangria:    decimal.Zero,
		UpdatedAt:       now,
	}, nil
}

// RecordMovement registra una sangria o un suprimento y actualiza el total correspondiente.
func RecordMovement(s *entity.CashSession, movementType string, amount decimal.Decimal, reason, operatorID string, now time.Time) (*entity.CashMovement, error) {
	if err := requireOpen(s); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "el monto debe ser mayor que cero")
	}
	amount = amount.Round(2)
	switch movementType {
	case entity.CashMovementSangria:
		s.TotalSangria = s.TotalSangria.Add(amount)
	case entity.CashMovementSuprimento:
		s.TotalSuprimento = s.TotalSuprimento.Add(amount)
	default:
		return nil, domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "tipo de movimiento inválido: %q", movementType)
	}
	m := entity.CashMovement{
		ID:         uuid.New().String(),
		SessionID:  s.ID,
		Type:       movementType,
		Amount:     amount,
		Reason:     reason,
		OperatorID: operatorID,
		CreatedAt:  now,
	}
	s.Movements = append(s.Movements, m)
	s.UpdatedAt = now
	return &m, nil
}

// ApplySaleSettlement suma cada pago al totalizador de su bucket. Los pagos diferidos no tocan la caja.
func ApplySaleSettlement(s *entity.CashSession, allocations []entity.PaymentAllocation, now time.Time) error {
	if err := requireOpen(s); err != nil {
		return err
	}
	for _, a := range allocations {
		route, err := payment.RouteFor(a.Method)
		if err != nil {
			return err
		}
		switch route.Bucket {
		case payment.BucketCash:
			s.TotalCash = s.TotalCash.Add(a.Amount)
		case payment.BucketPix:
			s.TotalPix = s.TotalPix.Add(a.Amount)
		case payment.BucketCard:
			s.TotalCard = s.TotalCard.Add(a.Amount)
		}
	}
	s.UpdatedAt = now
	return nil
}

// ExpectedCash fondo + ventas en efectivo + suprimentos − sangrias.
func ExpectedCash(s *entity.CashSession) decimal.Decimal {
	return s.OpeningFloat.Add(s.TotalCash).Add(s.TotalSuprimento).Sub(s.TotalSangria)
}

// Close confere la caja y la cierra. Una sesión cerrada no admite más cambios.
func Close(s *entity.CashSession, countedCash decimal.Decimal, now time.Time) error {
	if err := requireOpen(s); err != nil {
		return err
	}
	if countedCash.IsNegative() {
		return domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "valor contado negativo")
	}
	expected := ExpectedCash(s)
	counted := countedCash.Round(2)
	discrepancy := counted.Sub(expected)
	s.ExpectedCash = &expected
	s.CountedCash = &counted
	s.Discrepancy = &discrepancy
	s.Status = entity.CashSessionClosed
	s.ClosedAt = &now
	s.UpdatedAt = now
	return nil
}

func requireOpen(s *entity.CashSession) error {
	if s == nil {
		return domain.Reject(domain.CodeNoOpenSession, domain.ErrNotFound, "abra la caja antes de operar")
	}
	if !s.IsOpen() {
		return domain.Reject(domain.CodeSessionClosed, domain.ErrConflict, "la caja %s ya está cerrada", s.ID)
	}
	return nil
}
