package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/cashier"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

// Ensure TxRunner implements los runners de cada caso de uso.
var (
	_ sales.TxRunner     = (*TxRunner)(nil)
	_ cashier.TxRunner   = (*TxRunner)(nil)
	_ inventory.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTxRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewTxRepos arma el conjunto de repositorios sobre q (pool para lecturas sueltas, tx dentro de Run).
func NewTxRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Products:       NewProductRepository(q),
		StockMovements: NewStockMovementRepository(q),
		Sales:          NewSaleRepository(q),
		CashSessions:   NewCashSessionRepository(q),
		Receivables:    NewReceivableRepository(q),
		Audit:          NewAuditRepository(q),
		Customers:      NewCustomerRepository(q),
		TaxRates:       NewTaxRateRepository(q),
	}
}
