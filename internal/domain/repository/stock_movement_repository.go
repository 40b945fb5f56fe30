package repository

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del kardex (DIP).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
}
