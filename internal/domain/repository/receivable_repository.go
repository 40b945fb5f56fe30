package repository

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// ReceivableRepository define el puerto de persistencia de cuentas por cobrar.
type ReceivableRepository interface {
	Create(ctx context.Context, receivable *entity.Receivable) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.Receivable, error)
	Update(ctx context.Context, receivable *entity.Receivable) error
}
