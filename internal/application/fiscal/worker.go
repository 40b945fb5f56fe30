package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// EmissionWorker consume la cola de emisión y solicita la NFC-e al gateway.
// Una falla del gateway deja la venta en ERRO_EMISSAO sin tocar lo ya confirmado; el barrido la reintenta.
type EmissionWorker struct {
	queue    Queue
	saleRepo repository.SaleRepository
	gateway  Gateway
	callback *CallbackUseCase
	metrics  Metrics
	log      *logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewEmissionWorker construye el worker. metrics puede ser nil.
func NewEmissionWorker(
	queue Queue,
	saleRepo repository.SaleRepository,
	gateway Gateway,
	callback *CallbackUseCase,
	metrics Metrics,
	log *logger.Logger,
) *EmissionWorker {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &EmissionWorker{
		queue:    queue,
		saleRepo: saleRepo,
		gateway:  gateway,
		callback: callback,
		metrics:  metrics,
		log:      log.Named("fiscal-worker"),
		timeout:  30 * time.Second,
		now:      time.Now,
	}
}

// Run consume la cola hasta que ctx se cancela.
func (w *EmissionWorker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		saleID, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("leer cola de emisión")
			time.Sleep(time.Second)
			continue
		}
		if saleID == "" {
			continue
		}
		if err := w.ProcessOne(ctx, saleID); err != nil {
			// La venta sigue en un estado reintentable; el barrido la vuelve a encolar.
			w.log.Error().Err(err).Str("sale_id", saleID).Msg("procesar emisión")
		}
		if err := w.queue.Ack(ctx, saleID); err != nil {
			w.log.Error().Err(err).Str("sale_id", saleID).Msg("confirmar tarea de emisión")
		}
	}
}

// ProcessOne solicita la emisión de una venta. Devuelve error solo si no pudo registrar el resultado.
func (w *EmissionWorker) ProcessOne(ctx context.Context, saleID string) error {
	sale, err := w.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		w.log.Warn().Str("sale_id", saleID).Msg("venta inexistente en la cola de emisión")
		return nil
	}
	if !entity.IsRetryableFiscalStatus(sale.FiscalStatus) {
		// Ya autorizada, rechazada, cancelada o presupuesto: nada que emitir.
		w.log.Debug().Str("sale_id", saleID).Str("fiscal_status", sale.FiscalStatus).Msg("emisión omitida")
		return nil
	}
	if err := w.saleRepo.MarkEmissionAttempt(ctx, saleID, w.now()); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	result, gwErr := w.gateway.RequestEmission(reqCtx, EmissionRequest{
		SaleID:            sale.ID,
		OnlyInvoicedStock: sale.OnlyInvoicedStock,
	})
	if gwErr != nil {
		w.metrics.EmissionOutcome(OutcomeError)
		w.log.Warn().Err(gwErr).Str("sale_id", saleID).Int("attempt", sale.EmissionAttempts+1).Msg("gateway fiscal falló")
		_, err := w.saleRepo.SetFiscalStatus(ctx, saleID, open, entity.FiscalStatusEmissionError, "", gwErr.Error())
		return err
	}

	if result == nil {
		w.metrics.EmissionOutcome(OutcomeRequested)
		// Aceptada por el gateway: sale de ERRO_EMISSAO y espera el callback.
		if sale.FiscalStatus == entity.FiscalStatusEmissionError {
			if _, err := w.saleRepo.SetFiscalStatus(ctx, saleID,
				[]string{entity.FiscalStatusEmissionError}, entity.FiscalStatusPending, "", ""); err != nil {
				return err
			}
		}
		return nil
	}

	_, err = w.callback.Apply(ctx, dto.FiscalCallbackRequest{
		SaleID:      saleID,
		Outcome:     result.Outcome,
		DocumentRef: result.DocumentRef,
		Message:     result.Message,
	})
	return err
}
