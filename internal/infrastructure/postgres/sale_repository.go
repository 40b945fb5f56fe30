package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, date, operator_id, COALESCE(customer_id, ''), cash_session_id, gross_total, discount, net_total, change,
	total_ibs, total_cbs, total_selective, fiscal_status, only_invoiced_stock, fiscal_document_ref, fiscal_message,
	emission_attempts, last_emission_at, cancelled_at, cancelled_by, cancel_reason, created_at, updated_at`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera, ítems y formas de pago.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, date, operator_id, customer_id, cash_session_id, gross_total, discount, net_total, change,
			total_ibs, total_cbs, total_selective, fiscal_status, only_invoiced_stock, fiscal_document_ref, fiscal_message,
			emission_attempts, last_emission_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Date, s.OperatorID, nullString(s.CustomerID), s.CashSessionID, s.GrossTotal, s.Discount, s.NetTotal, s.Change,
		s.TotalIBS, s.TotalCBS, s.TotalSelective, s.FiscalStatus, s.OnlyInvoicedStock, s.FiscalDocumentRef, s.FiscalMessage,
		s.EmissionAttempts, s.LastEmissionAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, it := range s.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, description, quantity, unit_price, discount, unit_cost,
				ibs_rate, cbs_rate, selective_rate, ibs_amount, cbs_amount, selective_amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			it.ID, s.ID, it.ProductID, it.Description, it.Quantity, it.UnitPrice, it.Discount, it.UnitCost,
			it.IBSRate, it.CBSRate, it.SelectiveRate, it.IBSAmount, it.CBSAmount, it.SelectiveAmount, i,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	for i, p := range s.Payments {
		_, err := r.q.Exec(ctx, `
			INSERT INTO payment_allocations (id, sale_id, method, amount, installments, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, s.ID, string(p.Method), p.Amount, p.Installments, i,
		)
		if err != nil {
			return fmt.Errorf("insert payment allocation: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con ítems y pagos.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la venta y bloquea la cabecera (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza estado fiscal y datos de cancelación.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET fiscal_status = $2, fiscal_document_ref = $3, fiscal_message = $4,
			cancelled_at = $5, cancelled_by = $6, cancel_reason = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.FiscalStatus, s.FiscalDocumentRef, s.FiscalMessage,
		s.CancelledAt, s.CancelledBy, s.CancelReason, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// MarkEmissionAttempt incrementa el contador de intentos de emisión.
func (r *SaleRepo) MarkEmissionAttempt(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sales SET emission_attempts = emission_attempts + 1, last_emission_at = $2, updated_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("mark emission attempt: %w", err)
	}
	return nil
}

// SetFiscalStatus cambia el estado solo si el actual está en allowedFrom (una sola sentencia, sin carrera).
// documentRef vacío conserva el valor anterior.
func (r *SaleRepo) SetFiscalStatus(ctx context.Context, id string, allowedFrom []string, status, documentRef, message string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales
		SET fiscal_status = $2,
			fiscal_document_ref = CASE WHEN $3 = '' THEN fiscal_document_ref ELSE $3 END,
			fiscal_message = $4,
			updated_at = now()
		WHERE id = $1 AND fiscal_status = ANY($5)`,
		id, status, documentRef, message, allowedFrom,
	)
	if err != nil {
		return false, fmt.Errorf("set fiscal status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ListForEmissionRetry ventas en statuses con último intento (o creación) anterior a before.
func (r *SaleRepo) ListForEmissionRetry(ctx context.Context, statuses []string, before time.Time, limit int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE fiscal_status = ANY($1) AND COALESCE(last_emission_at, created_at) < $2
		ORDER BY COALESCE(last_emission_at, created_at)
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, statuses, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales for emission: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) loadChildren(ctx context.Context, s *entity.Sale) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, description, quantity, unit_price, discount, unit_cost,
			ibs_rate, cbs_rate, selective_rate, ibs_amount, cbs_amount, selective_amount
		FROM sale_items WHERE sale_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return fmt.Errorf("get sale items: %w", err)
	}
	for rows.Next() {
		it := entity.SaleItem{SaleID: s.ID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Discount, &it.UnitCost,
			&it.IBSRate, &it.CBSRate, &it.SelectiveRate, &it.IBSAmount, &it.CBSAmount, &it.SelectiveAmount); err != nil {
			rows.Close()
			return fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, method, amount, installments
		FROM payment_allocations WHERE sale_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return fmt.Errorf("get payment allocations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := entity.PaymentAllocation{SaleID: s.ID}
		var method string
		if err := rows.Scan(&p.ID, &method, &p.Amount, &p.Installments); err != nil {
			return fmt.Errorf("scan payment allocation: %w", err)
		}
		p.Method = entity.PaymentMethod(method)
		s.Payments = append(s.Payments, p)
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.Date, &s.OperatorID, &s.CustomerID, &s.CashSessionID, &s.GrossTotal, &s.Discount, &s.NetTotal, &s.Change,
		&s.TotalIBS, &s.TotalCBS, &s.TotalSelective, &s.FiscalStatus, &s.OnlyInvoicedStock, &s.FiscalDocumentRef, &s.FiscalMessage,
		&s.EmissionAttempts, &s.LastEmissionAt, &s.CancelledAt, &s.CancelledBy, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
