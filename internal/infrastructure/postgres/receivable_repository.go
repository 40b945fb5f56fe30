package postgres

import (
	"context"
	"fmt"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo cuentas por cobrar sobre PostgreSQL (usable con pool o tx).
type ReceivableRepo struct {
	q Querier
}

// NewReceivableRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

// Create inserta una cuota.
func (r *ReceivableRepo) Create(ctx context.Context, rc *entity.Receivable) error {
	query := `
		INSERT INTO receivables (id, sale_id, customer_id, method, installment, installment_count, amount, settled,
			due_date, status, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		rc.ID, rc.SaleID, rc.CustomerID, string(rc.Method), rc.Installment, rc.InstallmentCount, rc.Amount, rc.Settled,
		rc.DueDate, rc.Status, rc.CancelledAt, rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receivable: %w", err)
	}
	return nil
}

// ListBySale cuotas de la venta en orden.
func (r *ReceivableRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.Receivable, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, customer_id, method, installment, installment_count, amount, settled,
			due_date, status, cancelled_at, created_at, updated_at
		FROM receivables WHERE sale_id = $1 ORDER BY method, installment`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receivable
	for rows.Next() {
		var rc entity.Receivable
		var method string
		if err := rows.Scan(&rc.ID, &rc.SaleID, &rc.CustomerID, &method, &rc.Installment, &rc.InstallmentCount,
			&rc.Amount, &rc.Settled, &rc.DueDate, &rc.Status, &rc.CancelledAt, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		rc.Method = entity.PaymentMethod(method)
		list = append(list, &rc)
	}
	return list, rows.Err()
}

// Update persiste estado, saldo y cancelación.
func (r *ReceivableRepo) Update(ctx context.Context, rc *entity.Receivable) error {
	_, err := r.q.Exec(ctx, `
		UPDATE receivables SET settled = $2, status = $3, cancelled_at = $4, updated_at = $5 WHERE id = $1`,
		rc.ID, rc.Settled, rc.Status, rc.CancelledAt, rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update receivable: %w", err)
	}
	return nil
}
