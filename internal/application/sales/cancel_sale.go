package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// CancelSaleUseCase cancela ventas. Un presupuesto en espera solo cambia de estado;
// una venta efectiva reingresa el stock al costo histórico y cancela sus cuentas por cobrar.
// Los totalizadores de la caja no se revierten: la devolución de dinero se registra como sangria.
type CancelSaleUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewCancelSaleUseCase construye el caso de uso.
func NewCancelSaleUseCase(txRunner TxRunner, log *logger.Logger) *CancelSaleUseCase {
	return &CancelSaleUseCase{txRunner: txRunner, log: log.Named("sales"), now: time.Now}
}

// CancelSale cancela la venta saleID registrando operador y motivo.
func (uc *CancelSaleUseCase) CancelSale(ctx context.Context, op entity.Operator, saleID, reason string) (*dto.SaleResponse, error) {
	if op.ID == "" {
		return nil, domain.Reject(domain.CodeUnauthenticated, domain.ErrUnauthorized, "operador no autenticado")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Reject(domain.CodeReasonRequired, domain.ErrInvalidInput, "informe el motivo de la cancelación")
	}

	now := uc.now()
	var (
		sale        *entity.Sale
		receivables []*entity.Receivable
		lightweight bool
	)
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		sale, err = repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("venta %s: %w", saleID, err)
		}
		if sale == nil {
			return domain.Reject(domain.CodeSaleNotFound, domain.ErrNotFound, "venta %s no encontrada", saleID)
		}
		if sale.FiscalStatus == entity.FiscalStatusCancelled {
			return domain.Reject(domain.CodeSaleAlreadyCancelled, domain.ErrConflict, "la venta %s ya está cancelada", saleID)
		}

		lightweight = sale.IsQuote()
		if !lightweight {
			if err := uc.restock(ctx, repos, sale, op, now); err != nil {
				return err
			}
			receivables, err = cancelReceivables(ctx, repos.Receivables, sale.ID, now)
			if err != nil {
				return err
			}
		}

		sale.FiscalStatus = entity.FiscalStatusCancelled
		sale.CancelledAt = &now
		sale.CancelledBy = op.ID
		sale.CancelReason = reason
		sale.UpdatedAt = now
		if err := repos.Sales.Update(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		return repos.Audit.Create(ctx, &entity.AuditEvent{
			ID:         uuid.New().String(),
			Type:       entity.AuditSaleCancelled,
			EntityID:   sale.ID,
			OperatorID: op.ID,
			Detail:     reason,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("operator_id", op.ID).
		Bool("quote", lightweight).
		Str("reason", reason).
		Msg("venta cancelada")
	return ToSaleResponse(sale, receivables), nil
}

// restock reingresa cada línea con movimiento RETURN. El PMP no cambia: vuelve al mismo costo con que salió.
// Un producto inactivo no se reingresa ni va al kardex; queda un evento de auditoría.
func (uc *CancelSaleUseCase) restock(ctx context.Context, repos repository.TxRepos, sale *entity.Sale, op entity.Operator, now time.Time) error {
	qtyByProduct := make(map[string]decimal.Decimal)
	for _, it := range sale.Items {
		qtyByProduct[it.ProductID] = qtyByProduct[it.ProductID].Add(it.Quantity)
	}
	ids := make([]string, 0, len(qtyByProduct))
	for id := range qtyByProduct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	restocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("producto %s: %w", id, err)
		}
		if p == nil {
			uc.log.Warn().Str("sale_id", sale.ID).Str("product_id", id).Msg("producto inactivo, no se reingresa stock")
			if err := repos.Audit.Create(ctx, &entity.AuditEvent{
				ID:         uuid.New().String(),
				Type:       entity.AuditRestockSkipped,
				EntityID:   sale.ID,
				OperatorID: op.ID,
				Detail:     fmt.Sprintf("producto %s inactivo: %s unidades sin reingreso", id, qtyByProduct[id].String()),
				CreatedAt:  now,
			}); err != nil {
				return fmt.Errorf("auditar reingreso omitido: %w", err)
			}
			continue
		}
		if err := repos.Products.UpdateStock(ctx, id, p.Quantity.Add(qtyByProduct[id]), p.AverageCost); err != nil {
			return fmt.Errorf("reingresar stock %s: %w", id, err)
		}
		restocked[id] = true
	}

	for _, it := range sale.Items {
		if !restocked[it.ProductID] {
			continue
		}
		if err := repos.StockMovements.Create(ctx, &entity.StockMovement{
			ID:          uuid.New().String(),
			ReferenceID: sale.ID,
			ProductID:   it.ProductID,
			Type:        entity.StockMovementRETURN,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			TotalCost:   it.COGS(),
			STAmount:    decimal.Zero,
			Date:        now,
			CreatedBy:   op.ID,
		}); err != nil {
			return fmt.Errorf("kardex: %w", err)
		}
	}
	return nil
}

func cancelReceivables(ctx context.Context, repo repository.ReceivableRepository, saleID string, now time.Time) ([]*entity.Receivable, error) {
	list, err := repo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("cuentas por cobrar: %w", err)
	}
	for _, r := range list {
		if r.Status == entity.ReceivableStatusCancelled {
			continue
		}
		r.Status = entity.ReceivableStatusCancelled
		r.CancelledAt = &now
		r.UpdatedAt = now
		if err := repo.Update(ctx, r); err != nil {
			return nil, fmt.Errorf("cancelar cuenta por cobrar %s: %w", r.ID, err)
		}
	}
	return list, nil
}
