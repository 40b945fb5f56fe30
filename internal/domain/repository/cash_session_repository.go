package repository

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// CashSessionRepository define el puerto de persistencia de sesiones y movimientos de caja.
// La base garantiza a lo sumo una sesión ABERTO por operador (índice único parcial).
type CashSessionRepository interface {
	Create(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetOpenByOperator(ctx context.Context, operatorID string) (*entity.CashSession, error)
	// GetOpenByOperatorForUpdate bloquea la sesión abierta del operador.
	GetOpenByOperatorForUpdate(ctx context.Context, operatorID string) (*entity.CashSession, error)
	Update(ctx context.Context, session *entity.CashSession) error
	CreateMovement(ctx context.Context, movement *entity.CashMovement) error
	ListMovements(ctx context.Context, sessionID string) ([]entity.CashMovement, error)
}
