// Package memory almacenamiento en memoria con las mismas garantías transaccionales que PostgreSQL:
// Run serializa las transacciones con un mutex global y restaura una copia si fn falla.
// Se usa en desarrollo sin base de datos y en los tests de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

// Store estado completo del PDV.
type Store struct {
	mu   sync.RWMutex
	data *state
}

type state struct {
	products       map[string]entity.Product
	customers      map[string]entity.Customer
	sessions       map[string]entity.CashSession
	cashMovements  []entity.CashMovement
	sales          map[string]entity.Sale
	receivables    []entity.Receivable
	stockMovements []entity.StockMovement
	audit          []entity.AuditEvent
	taxWindows     []entity.TaxReformRateWindow
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: &state{
		products:  make(map[string]entity.Product),
		customers: make(map[string]entity.Customer),
		sessions:  make(map[string]entity.CashSession),
		sales:     make(map[string]entity.Sale),
	}}
}

// Run ejecuta fn con repositorios atados a una transacción exclusiva.
// Si fn devuelve error el estado vuelve al de antes de Run.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos repositorios fuera de transacción; cada llamada toma el lock por su cuenta.
func (s *Store) Repos() repository.TxRepos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.TxRepos {
	v := view{s: s, inTx: inTx}
	return repository.TxRepos{
		Products:       &ProductRepo{v},
		StockMovements: &StockMovementRepo{v},
		Sales:          &SaleRepo{v},
		CashSessions:   &CashSessionRepo{v},
		Receivables:    &ReceivableRepo{v},
		Audit:          &AuditRepo{v},
		Customers:      &CustomerRepo{v},
		TaxRates:       &TaxRateRepo{v},
	}
}

// TaxRates repositorio de ventanas de alícuotas fuera de transacción.
// Dentro de Run se usa repos.TaxRates: el mutex no es reentrante.
func (s *Store) TaxRates() *TaxRateRepo {
	return &TaxRateRepo{view{s: s}}
}

// SaveCustomer registra un cliente (el CRUD de clientes vive fuera del servicio).
func (s *Store) SaveCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

// AuditEvents copia de los eventos registrados.
func (s *Store) AuditEvents() []entity.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.AuditEvent(nil), s.data.audit...)
}

// StockMovements copia del kardex en orden de confirmación.
func (s *Store) StockMovements() []entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.StockMovement(nil), s.data.stockMovements...)
}

// DeactivateProduct baja lógica de un producto (el CRUD de productos vive fuera del servicio).
func (s *Store) DeactivateProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.data.products[id]; ok {
		p.Active = false
		s.data.products[id] = p
	}
}

func (st *state) clone() *state {
	out := &state{
		products:       make(map[string]entity.Product, len(st.products)),
		customers:      make(map[string]entity.Customer, len(st.customers)),
		sessions:       make(map[string]entity.CashSession, len(st.sessions)),
		sales:          make(map[string]entity.Sale, len(st.sales)),
		cashMovements:  append([]entity.CashMovement(nil), st.cashMovements...),
		receivables:    append([]entity.Receivable(nil), st.receivables...),
		stockMovements: append([]entity.StockMovement(nil), st.stockMovements...),
		audit:          append([]entity.AuditEvent(nil), st.audit...),
		taxWindows:     append([]entity.TaxReformRateWindow(nil), st.taxWindows...),
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.customers {
		out.customers[k] = v
	}
	for k, v := range st.sessions {
		out.sessions[k] = v
	}
	// Los slices de ítems y pagos se reemplazan enteros en cada escritura, compartirlos es seguro.
	for k, v := range st.sales {
		out.sales[k] = v
	}
	return out
}

// view acceso al estado. Dentro de Run el lock ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.RLock()
	return v.s.mu.RUnlock
}

func (v view) write() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}
