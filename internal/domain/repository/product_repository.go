package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las lecturas filtran active = true de forma explícita; no hay borrado físico.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	FindActiveByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock persiste cantidad y PMP; se llama siempre tras GetForUpdate.
	UpdateStock(ctx context.Context, id string, quantity, averageCost decimal.Decimal) error
	// ListBelowMinimum productos activos con stock menor al mínimo, mayor déficit primero.
	ListBelowMinimum(ctx context.Context) ([]*entity.Product, error)
}
