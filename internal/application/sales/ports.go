package sales

import (
	"context"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Si fn retorna error se hace rollback de todo lo hecho con esos repositorios.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// EmissionQueue cola de emisión fiscal. Encolar dos veces la misma venta no duplica la tarea.
type EmissionQueue interface {
	Enqueue(ctx context.Context, saleID string) error
}

// Metrics contadores operativos de ventas.
type Metrics interface {
	SaleRecorded(outcome string, elapsed time.Duration)
	StockAnomaly()
	DiscountRejected(role string)
}

type nopMetrics struct{}

func (nopMetrics) SaleRecorded(string, time.Duration) {}
func (nopMetrics) StockAnomaly()                      {}
func (nopMetrics) DiscountRejected(string)            {}
