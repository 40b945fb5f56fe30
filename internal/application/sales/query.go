package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/tax"
)

// QueryUseCase lecturas de ventas.
type QueryUseCase struct {
	saleRepo       repository.SaleRepository
	receivableRepo repository.ReceivableRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository, receivableRepo repository.ReceivableRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo, receivableRepo: receivableRepo}
}

// GetSale devuelve la venta con ítems, pagos y cuentas por cobrar.
func (uc *QueryUseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.load(ctx, saleID)
	if err != nil {
		return nil, err
	}
	receivables, err := uc.receivableRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("cuentas por cobrar: %w", err)
	}
	return ToSaleResponse(sale, receivables), nil
}

// SplitInstructions reparte el neto de la venta entre Unión, Estado/Municipio y lojista.
func (uc *QueryUseCase) SplitInstructions(ctx context.Context, saleID string) (*dto.SplitInstructionResponse, error) {
	sale, err := uc.load(ctx, saleID)
	if err != nil {
		return nil, err
	}
	split := tax.BuildSplitInstructions(sale)
	out := &dto.SplitInstructionResponse{
		SaleID:       sale.ID,
		NetTotal:     sale.NetTotal,
		Instructions: make([]dto.SplitInstructionItem, len(split)),
	}
	for i, s := range split {
		out.Instructions[i] = dto.SplitInstructionItem{Recipient: s.Recipient, Amount: s.Amount}
	}
	return out, nil
}

func (uc *QueryUseCase) load(ctx context.Context, saleID string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, err)
	}
	if sale == nil {
		return nil, domain.Reject(domain.CodeSaleNotFound, domain.ErrNotFound, "venta %s no encontrada", saleID)
	}
	return sale, nil
}

// ToSaleResponse mapea la entidad a la respuesta HTTP.
func ToSaleResponse(s *entity.Sale, receivables []*entity.Receivable) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:                s.ID,
		Date:              s.Date.Format(time.RFC3339),
		OperatorID:        s.OperatorID,
		CustomerID:        s.CustomerID,
		CashSessionID:     s.CashSessionID,
		GrossTotal:        s.GrossTotal,
		Discount:          s.Discount,
		TotalDiscount:     s.TotalDiscount(),
		NetTotal:          s.NetTotal,
		Change:            s.Change,
		TotalIBS:          s.TotalIBS,
		TotalCBS:          s.TotalCBS,
		TotalSelective:    s.TotalSelective,
		FiscalStatus:      s.FiscalStatus,
		FiscalDocumentRef: s.FiscalDocumentRef,
		FiscalMessage:     s.FiscalMessage,
		CancelReason:      s.CancelReason,
		Items:             make([]dto.SaleItemResponse, 0, len(s.Items)),
		Payments:          make([]dto.PaymentResponse, 0, len(s.Payments)),
	}
	if s.CancelledAt != nil {
		out.CancelledAt = s.CancelledAt.Format(time.RFC3339)
	}
	for i := range s.Items {
		it := &s.Items[i]
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			Discount:        it.Discount,
			Subtotal:        it.Subtotal(),
			UnitCost:        it.UnitCost,
			IBSRate:         it.IBSRate,
			CBSRate:         it.CBSRate,
			IBSAmount:       it.IBSAmount,
			CBSAmount:       it.CBSAmount,
			SelectiveAmount: it.SelectiveAmount,
		})
	}
	for _, p := range s.Payments {
		out.Payments = append(out.Payments, dto.PaymentResponse{
			Method:       string(p.Method),
			Amount:       p.Amount,
			Installments: p.Installments,
		})
	}
	for _, r := range receivables {
		out.Receivables = append(out.Receivables, dto.ReceivableResponse{
			ID:               r.ID,
			Method:           string(r.Method),
			Installment:      r.Installment,
			InstallmentCount: r.InstallmentCount,
			Amount:           r.Amount,
			DueDate:          r.DueDate.Format("2006-01-02"),
			Status:           r.Status,
		})
	}
	return out
}
