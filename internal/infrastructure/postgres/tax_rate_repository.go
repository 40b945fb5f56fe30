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

var _ repository.TaxRateRepository = (*TaxRateRepo)(nil)

// TaxRateRepo ventanas de alícuotas de la reforma (usable con pool o tx).
type TaxRateRepo struct {
	q Querier
}

// NewTaxRateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxRateRepository(q Querier) *TaxRateRepo {
	return &TaxRateRepo{q: q}
}

// FindWindow ventana de la categoría vigente en date; la de inicio más reciente si hubiera varias.
func (r *TaxRateRepo) FindWindow(ctx context.Context, date time.Time, category string) (*entity.TaxReformRateWindow, error) {
	query := `
		SELECT id, category, valid_from, valid_to, ibs_rate, cbs_rate, selective_rate
		FROM tax_reform_rate_windows
		WHERE category = $1 AND valid_from <= $2 AND (valid_to IS NULL OR valid_to >= $2)
		ORDER BY valid_from DESC
		LIMIT 1`
	var w entity.TaxReformRateWindow
	err := r.q.QueryRow(ctx, query, category, date).Scan(
		&w.ID, &w.Category, &w.ValidFrom, &w.ValidTo, &w.IBSRate, &w.CBSRate, &w.SelectiveRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tax window: %w", err)
	}
	return &w, nil
}

// Create inserta una ventana.
func (r *TaxRateRepo) Create(ctx context.Context, w *entity.TaxReformRateWindow) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tax_reform_rate_windows (id, category, valid_from, valid_to, ibs_rate, cbs_rate, selective_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.Category, w.ValidFrom, w.ValidTo, w.IBSRate, w.CBSRate, w.SelectiveRate,
	)
	if err != nil {
		return fmt.Errorf("insert tax window: %w", err)
	}
	return nil
}

// List todas las ventanas.
func (r *TaxRateRepo) List(ctx context.Context) ([]*entity.TaxReformRateWindow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, category, valid_from, valid_to, ibs_rate, cbs_rate, selective_rate
		FROM tax_reform_rate_windows ORDER BY category, valid_from`)
	if err != nil {
		return nil, fmt.Errorf("list tax windows: %w", err)
	}
	defer rows.Close()
	var list []*entity.TaxReformRateWindow
	for rows.Next() {
		var w entity.TaxReformRateWindow
		if err := rows.Scan(&w.ID, &w.Category, &w.ValidFrom, &w.ValidTo, &w.IBSRate, &w.CBSRate, &w.SelectiveRate); err != nil {
			return nil, fmt.Errorf("scan tax window: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
