package repository

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// AuditRepository registra eventos de auditoría dentro de la transacción que los origina.
type AuditRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
}
