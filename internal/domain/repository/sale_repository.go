package repository

import (
	"context"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas, sus ítems y sus formas de pago.
type SaleRepository interface {
	// Create persiste cabecera, ítems y pagos. Debe correr dentro de la transacción de la venta.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera de la venta (cancelación concurrente).
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// Update actualiza los campos mutables de la cabecera (estado fiscal y cancelación).
	Update(ctx context.Context, sale *entity.Sale) error
	// MarkEmissionAttempt incrementa el contador de intentos y fija la fecha del último.
	MarkEmissionAttempt(ctx context.Context, id string, at time.Time) error
	// SetFiscalStatus cambia el estado fiscal solo si el actual está en allowedFrom (compare-and-set).
	// Devuelve false si la venta no estaba en ninguno de esos estados.
	SetFiscalStatus(ctx context.Context, id string, allowedFrom []string, status, documentRef, message string) (bool, error)
	// ListForEmissionRetry ventas en estados reintentables cuyo último intento es anterior a before.
	ListForEmissionRetry(ctx context.Context, statuses []string, before time.Time, limit int) ([]*entity.Sale, error)
}
