package postgres

import (
	"context"
	"fmt"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo eventos de auditoría (usable con pool o tx).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el evento.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_events (id, type, entity_id, operator_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Type, e.EntityID, e.OperatorID, e.Detail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
