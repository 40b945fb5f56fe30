package fiscal

import (
	"context"
	"fmt"
	"strings"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// Desenlaces que informa el gateway.
const (
	OutcomeApproved    = "approved"
	OutcomeRejected    = "rejected"
	OutcomeContingency = "contingency"
	OutcomeError       = "error"     // falla al solicitar (solo métricas)
	OutcomeRequested   = "requested" // solicitud aceptada, desenlace por callback (solo métricas)
)

// open estados desde los que el gateway todavía puede cambiar la venta.
var open = []string{
	entity.FiscalStatusPending,
	entity.FiscalStatusContingency,
	entity.FiscalStatusEmissionError,
}

// CallbackUseCase aplica el desenlace del gateway a la venta. Es idempotente: un callback repetido
// o uno sobre una venta cancelada no cambia nada.
type CallbackUseCase struct {
	saleRepo repository.SaleRepository
	metrics  Metrics
	log      *logger.Logger
}

// NewCallbackUseCase construye el caso de uso. metrics puede ser nil.
func NewCallbackUseCase(saleRepo repository.SaleRepository, metrics Metrics, log *logger.Logger) *CallbackUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CallbackUseCase{saleRepo: saleRepo, metrics: metrics, log: log.Named("fiscal")}
}

// Apply registra el desenlace. Applied=false indica que fue ignorado.
func (uc *CallbackUseCase) Apply(ctx context.Context, in dto.FiscalCallbackRequest) (*dto.FiscalCallbackResponse, error) {
	if in.SaleID == "" {
		return nil, fmt.Errorf("%w: sale_id requerido", domain.ErrInvalidInput)
	}
	outcome := strings.ToLower(strings.TrimSpace(in.Outcome))

	var (
		target      string
		allowedFrom []string
	)
	switch outcome {
	case OutcomeApproved:
		if in.DocumentRef == "" {
			return nil, fmt.Errorf("%w: document_ref requerido al autorizar", domain.ErrInvalidInput)
		}
		target, allowedFrom = entity.FiscalStatusApproved, open
	case OutcomeRejected:
		target, allowedFrom = entity.FiscalStatusRejected, open
	case OutcomeContingency:
		target = entity.FiscalStatusContingency
		allowedFrom = []string{entity.FiscalStatusPending, entity.FiscalStatusEmissionError}
	default:
		return nil, fmt.Errorf("%w: outcome desconocido %q", domain.ErrInvalidInput, in.Outcome)
	}

	sale, err := uc.saleRepo.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, fmt.Errorf("venta %s: %w", in.SaleID, err)
	}
	if sale == nil {
		return nil, domain.Reject(domain.CodeSaleNotFound, domain.ErrNotFound, "venta %s no encontrada", in.SaleID)
	}

	applied, err := uc.saleRepo.SetFiscalStatus(ctx, sale.ID, allowedFrom, target, in.DocumentRef, in.Message)
	if err != nil {
		return nil, fmt.Errorf("estado fiscal: %w", err)
	}
	status := sale.FiscalStatus
	if applied {
		status = target
		uc.metrics.EmissionOutcome(outcome)
		uc.log.Info().Str("sale_id", sale.ID).Str("fiscal_status", target).Str("document_ref", in.DocumentRef).Msg("desenlace fiscal aplicado")
	} else {
		uc.log.Info().Str("sale_id", sale.ID).Str("fiscal_status", sale.FiscalStatus).Str("outcome", outcome).Msg("callback fiscal ignorado")
	}
	return &dto.FiscalCallbackResponse{SaleID: sale.ID, FiscalStatus: status, Applied: applied}, nil
}
