package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

const cashSessionColumns = `id, operator_id, status, opened_at, closed_at, opening_float, total_cash, total_pix, total_card,
	total_suprimento, total_sangria, expected_cash, counted_cash, discrepancy, updated_at`

// CashSessionRepo implementación de CashSessionRepository (usable con pool o tx).
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

// Create persiste una sesión. Una segunda sesión ABERTO del operador viola ux_cash_sessions_open_operator.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (` + cashSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.OperatorID, s.Status, s.OpenedAt, s.ClosedAt, s.OpeningFloat, s.TotalCash, s.TotalPix, s.TotalCard,
		s.TotalSuprimento, s.TotalSangria, s.ExpectedCash, s.CountedCash, s.Discrepancy, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

// GetOpenByOperator obtiene la sesión abierta del operador.
func (r *CashSessionRepo) GetOpenByOperator(ctx context.Context, operatorID string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE operator_id = $1 AND status = 'ABERTO'`, operatorID)
}

// GetOpenByOperatorForUpdate obtiene la sesión abierta y bloquea la fila (SELECT FOR UPDATE).
func (r *CashSessionRepo) GetOpenByOperatorForUpdate(ctx context.Context, operatorID string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+cashSessionColumns+` FROM cash_sessions WHERE operator_id = $1 AND status = 'ABERTO' FOR UPDATE`, operatorID)
}

// Update persiste totales, estado y conferencia.
func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	query := `
		UPDATE cash_sessions SET status = $2, closed_at = $3, total_cash = $4, total_pix = $5, total_card = $6,
			total_suprimento = $7, total_sangria = $8, expected_cash = $9, counted_cash = $10, discrepancy = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Status, s.ClosedAt, s.TotalCash, s.TotalPix, s.TotalCard,
		s.TotalSuprimento, s.TotalSangria, s.ExpectedCash, s.CountedCash, s.Discrepancy, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	return nil
}

// CreateMovement persiste una sangria o un suprimento.
func (r *CashSessionRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_movements (id, session_id, type, amount, reason, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SessionID, m.Type, m.Amount, m.Reason, m.OperatorID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListMovements movimientos de la sesión en orden cronológico.
func (r *CashSessionRepo) ListMovements(ctx context.Context, sessionID string) ([]entity.CashMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, session_id, type, amount, reason, operator_id, created_at
		FROM cash_movements WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Reason, &m.OperatorID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *CashSessionRepo) getOne(ctx context.Context, query, arg string) (*entity.CashSession, error) {
	var s entity.CashSession
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.OperatorID, &s.Status, &s.OpenedAt, &s.ClosedAt, &s.OpeningFloat, &s.TotalCash, &s.TotalPix, &s.TotalCard,
		&s.TotalSuprimento, &s.TotalSangria, &s.ExpectedCash, &s.CountedCash, &s.Discrepancy, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return &s, nil
}
