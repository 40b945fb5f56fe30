package fiscal

import (
	"context"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

const sweepBatch = 100

// Sweeper reencola periódicamente las ventas con emisión pendiente cuyo último intento
// (o su creación, si nunca se intentó) es más antiguo que el intervalo.
type Sweeper struct {
	saleRepo repository.SaleRepository
	queue    Queue
	interval time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewSweeper construye el barrido.
func NewSweeper(saleRepo repository.SaleRepository, queue Queue, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{saleRepo: saleRepo, queue: queue, interval: interval, log: log.Named("fiscal-sweeper"), now: time.Now}
}

// Sweep encola un lote y devuelve cuántas ventas encoló.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	sales, err := s.saleRepo.ListForEmissionRetry(ctx, entity.RetryableFiscalStatuses, s.now().Add(-s.interval), sweepBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sale := range sales {
		if err := s.queue.Enqueue(ctx, sale.ID); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("ventas reencoladas para emisión")
	}
	return n, nil
}

// Run ejecuta Sweep cada intervalo hasta que ctx se cancela.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error().Err(err).Msg("barrido de emisión")
			}
		}
	}
}
