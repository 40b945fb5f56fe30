package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.CashSessionRepository   = (*CashSessionRepo)(nil)
	_ repository.ReceivableRepository    = (*ReceivableRepo)(nil)
	_ repository.AuditRepository         = (*AuditRepo)(nil)
	_ repository.CustomerRepository      = (*CustomerRepo)(nil)
	_ repository.TaxRateRepository       = (*TaxRateRepo)(nil)
)

// ---------------------------------------------------------------------------
// Productos
// ---------------------------------------------------------------------------

// ProductRepo productos en memoria. Las lecturas filtran Active igual que el adaptador SQL.
type ProductRepo struct{ v view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.v.write()()
	for _, other := range r.v.s.data.products {
		if other.Active && p.Active && other.Barcode == p.Barcode && other.ID != p.ID {
			return domain.ErrDuplicate
		}
	}
	if _, ok := r.v.s.data.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.v.s.data.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.v.read()()
	p, ok := r.v.s.data.products[id]
	if !ok || !p.Active {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) FindActiveByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	defer r.v.read()()
	for _, p := range r.v.s.data.products {
		if p.Active && p.Barcode == barcode {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// GetForUpdate no necesita bloqueo de fila: Run ya es exclusivo.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, quantity, averageCost decimal.Decimal) error {
	defer r.v.write()()
	p, ok := r.v.s.data.products[id]
	if !ok || !p.Active {
		return domain.ErrNotFound
	}
	p.Quantity = quantity
	p.AverageCost = averageCost
	p.UpdatedAt = time.Now()
	r.v.s.data.products[id] = p
	return nil
}

func (r *ProductRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	defer r.v.read()()
	var list []*entity.Product
	for _, p := range r.v.s.data.products {
		if p.Active && p.BelowMinimum() {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Description < list[j].Description })
	return list, nil
}

// ---------------------------------------------------------------------------
// Kardex
// ---------------------------------------------------------------------------

type StockMovementRepo struct{ v view }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.v.write()()
	r.v.s.data.stockMovements = append(r.v.s.data.stockMovements, *m)
	return nil
}

func (r *StockMovementRepo) ListByReference(_ context.Context, referenceID string) ([]*entity.StockMovement, error) {
	defer r.v.read()()
	var list []*entity.StockMovement
	for _, m := range r.v.s.data.stockMovements {
		if m.ReferenceID == referenceID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

// ---------------------------------------------------------------------------
// Ventas
// ---------------------------------------------------------------------------

type SaleRepo struct{ v view }

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	defer r.v.write()()
	if _, ok := r.v.s.data.sales[s.ID]; ok {
		return domain.ErrDuplicate
	}
	r.v.s.data.sales[s.ID] = cloneSale(*s)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.v.read()()
	s, ok := r.v.s.data.sales[id]
	if !ok {
		return nil, nil
	}
	out := cloneSale(s)
	return &out, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

// Update solo persiste estado fiscal y cancelación; ítems y pagos son inmutables.
func (r *SaleRepo) Update(_ context.Context, s *entity.Sale) error {
	defer r.v.write()()
	cur, ok := r.v.s.data.sales[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.FiscalStatus = s.FiscalStatus
	cur.FiscalDocumentRef = s.FiscalDocumentRef
	cur.FiscalMessage = s.FiscalMessage
	cur.CancelledAt = s.CancelledAt
	cur.CancelledBy = s.CancelledBy
	cur.CancelReason = s.CancelReason
	cur.UpdatedAt = s.UpdatedAt
	r.v.s.data.sales[s.ID] = cur
	return nil
}

func (r *SaleRepo) MarkEmissionAttempt(_ context.Context, id string, at time.Time) error {
	defer r.v.write()()
	cur, ok := r.v.s.data.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.EmissionAttempts++
	cur.LastEmissionAt = &at
	cur.UpdatedAt = at
	r.v.s.data.sales[id] = cur
	return nil
}

func (r *SaleRepo) SetFiscalStatus(_ context.Context, id string, allowedFrom []string, status, documentRef, message string) (bool, error) {
	defer r.v.write()()
	cur, ok := r.v.s.data.sales[id]
	if !ok || !contains(allowedFrom, cur.FiscalStatus) {
		return false, nil
	}
	cur.FiscalStatus = status
	if documentRef != "" {
		cur.FiscalDocumentRef = documentRef
	}
	cur.FiscalMessage = message
	cur.UpdatedAt = time.Now()
	r.v.s.data.sales[id] = cur
	return true, nil
}

func (r *SaleRepo) ListForEmissionRetry(_ context.Context, statuses []string, before time.Time, limit int) ([]*entity.Sale, error) {
	defer r.v.read()()
	var list []*entity.Sale
	for _, s := range r.v.s.data.sales {
		if contains(statuses, s.FiscalStatus) && lastTouch(s).Before(before) {
			out := cloneSale(s)
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool { return lastTouch(*list[i]).Before(lastTouch(*list[j])) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func lastTouch(s entity.Sale) time.Time {
	if s.LastEmissionAt != nil {
		return *s.LastEmissionAt
	}
	return s.CreatedAt
}

func cloneSale(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	s.Payments = append([]entity.PaymentAllocation(nil), s.Payments...)
	return s
}

// ---------------------------------------------------------------------------
// Caja
// ---------------------------------------------------------------------------

type CashSessionRepo struct{ v view }

func (r *CashSessionRepo) Create(_ context.Context, s *entity.CashSession) error {
	defer r.v.write()()
	if s.IsOpen() {
		for _, other := range r.v.s.data.sessions {
			if other.IsOpen() && other.OperatorID == s.OperatorID {
				return domain.ErrDuplicate
			}
		}
	}
	stored := *s
	stored.Movements = nil
	r.v.s.data.sessions[s.ID] = stored
	return nil
}

func (r *CashSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	defer r.v.read()()
	s, ok := r.v.s.data.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *CashSessionRepo) GetOpenByOperator(_ context.Context, operatorID string) (*entity.CashSession, error) {
	defer r.v.read()()
	for _, s := range r.v.s.data.sessions {
		if s.IsOpen() && s.OperatorID == operatorID {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *CashSessionRepo) GetOpenByOperatorForUpdate(ctx context.Context, operatorID string) (*entity.CashSession, error) {
	return r.GetOpenByOperator(ctx, operatorID)
}

// Update persiste cabecera y totales; los movimientos se guardan con CreateMovement.
func (r *CashSessionRepo) Update(_ context.Context, s *entity.CashSession) error {
	defer r.v.write()()
	if _, ok := r.v.s.data.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *s
	stored.Movements = nil
	r.v.s.data.sessions[s.ID] = stored
	return nil
}

func (r *CashSessionRepo) CreateMovement(_ context.Context, m *entity.CashMovement) error {
	defer r.v.write()()
	r.v.s.data.cashMovements = append(r.v.s.data.cashMovements, *m)
	return nil
}

func (r *CashSessionRepo) ListMovements(_ context.Context, sessionID string) ([]entity.CashMovement, error) {
	defer r.v.read()()
	var list []entity.CashMovement
	for _, m := range r.v.s.data.cashMovements {
		if m.SessionID == sessionID {
			list = append(list, m)
		}
	}
	return list, nil
}

// ---------------------------------------------------------------------------
// Cuentas por cobrar, auditoría y clientes
// ---------------------------------------------------------------------------

type ReceivableRepo struct{ v view }

func (r *ReceivableRepo) Create(_ context.Context, rc *entity.Receivable) error {
	defer r.v.write()()
	r.v.s.data.receivables = append(r.v.s.data.receivables, *rc)
	return nil
}

func (r *ReceivableRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Receivable, error) {
	defer r.v.read()()
	var list []*entity.Receivable
	for _, rc := range r.v.s.data.receivables {
		if rc.SaleID == saleID {
			rc := rc
			list = append(list, &rc)
		}
	}
	return list, nil
}

func (r *ReceivableRepo) Update(_ context.Context, rc *entity.Receivable) error {
	defer r.v.write()()
	for i := range r.v.s.data.receivables {
		if r.v.s.data.receivables[i].ID == rc.ID {
			r.v.s.data.receivables[i] = *rc
			return nil
		}
	}
	return domain.ErrNotFound
}

type AuditRepo struct{ v view }

func (r *AuditRepo) Create(_ context.Context, e *entity.AuditEvent) error {
	defer r.v.write()()
	r.v.s.data.audit = append(r.v.s.data.audit, *e)
	return nil
}

type CustomerRepo struct{ v view }

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	defer r.v.read()()
	c, ok := r.v.s.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ---------------------------------------------------------------------------
// Reforma tributaria
// ---------------------------------------------------------------------------

type TaxRateRepo struct{ v view }

func (r *TaxRateRepo) FindWindow(_ context.Context, date time.Time, category string) (*entity.TaxReformRateWindow, error) {
	defer r.v.read()()
	var best *entity.TaxReformRateWindow
	for i := range r.v.s.data.taxWindows {
		w := r.v.s.data.taxWindows[i]
		if w.Category != category || !w.Contains(date) {
			continue
		}
		if best == nil || w.ValidFrom.After(best.ValidFrom) {
			best = &w
		}
	}
	return best, nil
}

func (r *TaxRateRepo) Create(_ context.Context, w *entity.TaxReformRateWindow) error {
	defer r.v.write()()
	r.v.s.data.taxWindows = append(r.v.s.data.taxWindows, *w)
	return nil
}

func (r *TaxRateRepo) List(_ context.Context) ([]*entity.TaxReformRateWindow, error) {
	defer r.v.read()()
	list := make([]*entity.TaxReformRateWindow, 0, len(r.v.s.data.taxWindows))
	for _, w := range r.v.s.data.taxWindows {
		w := w
		list = append(list, &w)
	}
	return list, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
