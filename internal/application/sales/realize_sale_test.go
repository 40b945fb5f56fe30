package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/cashier"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/discount"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/memory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/queue"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var (
	cashierOp = entity.Operator{ID: "op-caixa", Role: entity.RoleCashier}
	managerOp = entity.Operator{ID: "op-gerente", Role: entity.RoleManager}
)

type fixture struct {
	store   *memory.Store
	queue   *queue.MemoryQueue
	realize *sales.RealizeSaleUseCase
	cancel  *sales.CancelSaleUseCase
	query   *sales.QueryUseCase
	metrics *countingMetrics
}

type countingMetrics struct {
	mu        sync.Mutex
	recorded  map[string]int
	anomalies int
	rejected  map[string]int
}

func (m *countingMetrics) SaleRecorded(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[status]++
}

func (m *countingMetrics) StockAnomaly() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomalies++
}

func (m *countingMetrics) DiscountRejected(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[role]++
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	q := queue.NewMemoryQueue(100)
	m := &countingMetrics{recorded: map[string]int{}, rejected: map[string]int{}}
	f := &fixture{
		store:   store,
		queue:   q,
		realize: sales.NewRealizeSaleUseCase(store, discount.NewPolicy(discount.DefaultLimits()), q, m, sales.DefaultSettings(), log),
		cancel:  sales.NewCancelSaleUseCase(store, log),
		query:   sales.NewQueryUseCase(store.Repos().Sales, store.Repos().Receivables),
		metrics: m,
	}
	ctx := context.Background()
	now := time.Now()
	products := store.Repos().Products
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p-batom", Barcode: "7891000000011", Description: "Batom matte",
		Price: decimal.NewFromInt(145), Quantity: decimal.NewFromInt(10), AverageCost: decimal.NewFromInt(60),
		MinStock: decimal.NewFromInt(4), Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p-perfume", Barcode: "7891000000028", Description: "Perfume 100ml", TaxCategory: "PERFUMARIA",
		Price: decimal.NewFromInt(200), Quantity: decimal.NewFromInt(3), AverageCost: decimal.RequireFromString("92.5"),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	store.SaveCustomer(entity.Customer{ID: "c-maria", Name: "Maria", TaxID: "12345678909", Active: true})
	return f
}

func (f *fixture) openSession(t *testing.T, op entity.Operator, float int64) {
	t.Helper()
	uc := cashier.NewUseCase(f.store, f.store.Repos().CashSessions, logger.Nop())
	_, err := uc.Open(context.Background(), op, dto.OpenCashSessionRequest{OpeningFloat: decimal.NewFromInt(float)})
	require.NoError(t, err)
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) session(t *testing.T, op entity.Operator) *entity.CashSession {
	t.Helper()
	s, err := f.store.Repos().CashSessions.GetOpenByOperator(context.Background(), op.ID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func batom(qty int64) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: "p-batom", Quantity: decimal.NewFromInt(qty)}
}

func pay(method entity.PaymentMethod, amount string) dto.PaymentRequest {
	return dto.PaymentRequest{Method: string(method), Amount: decimal.RequireFromString(amount)}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_CartaoDebitaStockYAcreditaCaja(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 100)
	ctx := context.Background()

	out, err := f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCredit, "290")},
	})
	require.NoError(t, err)

	assert.True(t, out.NetTotal.Equal(d("290")))
	assert.True(t, out.Change.IsZero())
	assert.Equal(t, entity.FiscalStatusPending, out.FiscalStatus)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].UnitCost.Equal(d("60")), "foto del PMP vigente")

	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("8")))
	s := f.session(t, cashierOp)
	assert.True(t, s.TotalCard.Equal(d("290")))
	assert.True(t, s.TotalCash.IsZero())

	movements, err := f.store.Repos().StockMovements.ListByReference(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.StockMovementOUT, movements[0].Type)
	assert.True(t, movements[0].Quantity.Equal(d("-2")))
	assert.True(t, movements[0].TotalCost.Equal(d("120")))

	assert.Equal(t, 1, f.queue.Len(), "emisión encolada")
	assert.Equal(t, 1, f.metrics.recorded[entity.FiscalStatusPending])
}

func TestRealizeSale_DinheiroConTroco(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 50)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "300")},
	})
	require.NoError(t, err)
	assert.True(t, out.Change.Equal(d("10")))

	s := f.session(t, cashierOp)
	assert.True(t, s.TotalCash.Equal(d("290")), "el troco sale del efectivo")
}

func TestRealizeSale_PagoMixtoPixYDinheiro(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "200"), pay(entity.PaymentCash, "100")},
	})
	require.NoError(t, err)

	s := f.session(t, cashierOp)
	assert.True(t, s.TotalPix.Equal(d("200")))
	assert.True(t, s.TotalCash.Equal(d("90")))
}

func TestRealizeSale_ResuelvePorCodigoDeBarras(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{{Barcode: "7891000000028", Quantity: d("1")}},
		Payments: []dto.PaymentRequest{pay(entity.PaymentDebit, "200")},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p-perfume", out.Items[0].ProductID)
	assert.True(t, out.Items[0].UnitCost.Equal(d("92.5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cobranzas diferidas
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_BoletoExigeCliente(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentBoleto, "290")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeCustomerRequired, domain.RejectionCode(err))
	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("10")), "rollback completo")
}

func TestRealizeSale_ClienteInexistente(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		CustomerID: "c-nadie",
		Items:      []dto.SaleItemRequest{batom(1)},
		Payments:   []dto.PaymentRequest{pay(entity.PaymentBoleto, "145")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeCustomerNotFound, domain.RejectionCode(err))
}

func TestRealizeSale_BoletoGeneraCuentaPorCobrar(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		CustomerID: "c-maria",
		Items:      []dto.SaleItemRequest{batom(2)},
		Payments:   []dto.PaymentRequest{pay(entity.PaymentBoleto, "290")},
	})
	require.NoError(t, err)
	require.Len(t, out.Receivables, 1)
	r := out.Receivables[0]
	assert.True(t, r.Amount.Equal(d("290")))
	assert.Equal(t, time.Now().AddDate(0, 0, 30).Format("2006-01-02"), r.DueDate)

	s := f.session(t, cashierOp)
	assert.True(t, s.TotalCash.IsZero())
	assert.True(t, s.TotalCard.IsZero())
	assert.True(t, s.TotalPix.IsZero())
}

func TestRealizeSale_CrediarioEnTresCuotas(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		CustomerID: "c-maria",
		Items:      []dto.SaleItemRequest{{ProductID: "p-perfume", Quantity: d("1"), UnitPrice: ptr(d("100"))}},
		Payments:   []dto.PaymentRequest{{Method: string(entity.PaymentCrediario), Amount: d("100"), Installments: 3}},
	})
	require.NoError(t, err)
	require.Len(t, out.Receivables, 3)
	assert.True(t, out.Receivables[0].Amount.Equal(d("33.33")))
	assert.True(t, out.Receivables[1].Amount.Equal(d("33.33")))
	assert.True(t, out.Receivables[2].Amount.Equal(d("33.34")))
	assert.Equal(t, 3, out.Receivables[2].InstallmentCount)
}

func TestRealizeSale_CrediarioConCuotasDeMas(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()
	item := dto.SaleItemRequest{ProductID: "p-perfume", Quantity: d("1"), UnitPrice: ptr(d("100"))}

	tests := []struct {
		name         string
		amount       string
		installments int
	}{
		{"sobre el techo configurado", "100", 20000},
		{"cuotas de menos de un centavo", "0.05", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := item
			it.UnitPrice = ptr(d(tt.amount))
			_, err := f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
				CustomerID: "c-maria",
				Items:      []dto.SaleItemRequest{it},
				Payments:   []dto.PaymentRequest{{Method: string(entity.PaymentCrediario), Amount: d(tt.amount), Installments: tt.installments}},
			})
			require.Error(t, err)
			assert.Equal(t, domain.CodeInvalidPayment, domain.RejectionCode(err))
		})
	}
	assert.True(t, f.product(t, "p-perfume").Quantity.Equal(d("3")), "el rechazo no toca el stock")
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_SinCajaAbierta(t *testing.T) {
	f := newFixture(t)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(1)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "145")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNoOpenSession, domain.RejectionCode(err))
	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("10")))
	assert.Equal(t, 0, f.queue.Len())
}

func TestRealizeSale_SinOperador(t *testing.T) {
	f := newFixture(t)
	_, err := f.realize.RealizeSale(context.Background(), entity.Operator{}, dto.RealizeSaleRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRealizeSale_DescuentoPorRol(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	f.openSession(t, managerOp, 0)
	// 25 sobre 290 ≈ 8,62%: arriba del 5% del cajero, abajo del 20% del gerente.
	req := dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCredit, "265")},
		Discount: d("25"),
	}

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, req)
	require.Error(t, err)
	assert.Equal(t, domain.CodeDiscountLimitExceeded, domain.RejectionCode(err))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "8,62%")
	assert.Equal(t, 1, f.metrics.rejected[entity.RoleCashier])

	out, err := f.realize.RealizeSale(context.Background(), managerOp, req)
	require.NoError(t, err)
	assert.True(t, out.NetTotal.Equal(d("265")))
	assert.True(t, out.TotalDiscount.Equal(d("25")))
}

func TestRealizeSale_DescuentoDeItemCuentaParaElLimite(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	item := batom(2)
	item.Discount = d("20") // 20 / 290 ≈ 6,9%
	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{item},
		Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "270")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeDiscountLimitExceeded, domain.RejectionCode(err))
}

func TestRealizeSale_PagoInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "200")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInsufficientTender, domain.RejectionCode(err))
	assert.Contains(t, err.Error(), "R$ 90,00")

	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("10")))
	assert.True(t, f.session(t, cashierOp).TotalCash.IsZero())
}

func TestRealizeSale_ExcesoEnTarjetaRechazado(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	_, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCredit, "300")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidPayment, domain.RejectionCode(err))
}

func TestRealizeSale_ValidacionesDeForma(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.RealizeSaleRequest
		code string
	}{
		{"sin ítems", dto.RealizeSaleRequest{Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "1")}}, domain.CodeNoItems},
		{"sin pagos", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{batom(1)}}, domain.CodeNoPayments},
		{"cantidad cero", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{batom(0)}, Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "1")}}, domain.CodeInvalidItem},
		{"forma desconocida", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{batom(1)}, Payments: []dto.PaymentRequest{{Method: "CHEQUE", Amount: d("145")}}}, domain.CodeInvalidPayment},
		{"producto inexistente", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p-x", Quantity: d("1")}}, Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "1")}}, domain.CodeProductNotFound},
		{"descuento negativo", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{batom(1)}, Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "145")}, Discount: d("-1")}, domain.CodeInvalidAmount},
		{"cantidad con 4 decimales", dto.RealizeSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p-batom", Quantity: d("1.0005")}}, Payments: []dto.PaymentRequest{pay(entity.PaymentCash, "146")}}, domain.CodeInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.realize.RealizeSale(ctx, cashierOp, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.RejectionCode(err))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Anomalías, presupuestos y reforma tributaria
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_VentaSinStockQuedaAuditada(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: "p-perfume", Quantity: d("5")}},
		Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "1000")},
	})
	require.NoError(t, err, "la venta no se bloquea por stock")

	assert.True(t, f.product(t, "p-perfume").Quantity.Equal(d("-2")))
	events := f.store.AuditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStockOverrun, events[0].Type)
	assert.Equal(t, out.ID, events[0].EntityID)
	assert.Equal(t, cashierOp.ID, events[0].OperatorID)
	assert.Equal(t, 1, f.metrics.anomalies)
}

func TestRealizeSale_PresupuestoSinEfectos(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)

	out, err := f.realize.RealizeSale(context.Background(), cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2)},
		Payments: []dto.PaymentRequest{pay(entity.PaymentBoleto, "290")},
		Quote:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FiscalStatusOnHold, out.FiscalStatus)
	assert.Empty(t, out.Receivables)

	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("10")))
	s := f.session(t, cashierOp)
	assert.True(t, s.TotalCash.IsZero())
	assert.Equal(t, 0, f.queue.Len())
}

func TestRealizeSale_FotoDeAlicuotasDeLaReforma(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()
	rates := f.store.TaxRates()
	require.NoError(t, rates.Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-geral", ValidFrom: time.Now().Add(-24 * time.Hour),
		IBSRate: d("0.001"), CBSRate: d("0.009"), SelectiveRate: decimal.Zero,
	}))
	require.NoError(t, rates.Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-perf", Category: "PERFUMARIA", ValidFrom: time.Now().Add(-24 * time.Hour),
		IBSRate: d("0.001"), CBSRate: d("0.009"), SelectiveRate: d("0.05"),
	}))

	out, err := f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(2), {ProductID: "p-perfume", Quantity: d("1")}},
		Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "490")},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].IBSAmount.Equal(d("0.29")))
	assert.True(t, out.Items[0].CBSAmount.Equal(d("2.61")))
	assert.True(t, out.Items[0].SelectiveAmount.IsZero())
	assert.True(t, out.Items[1].SelectiveAmount.Equal(d("10")))
	assert.True(t, out.TotalCBS.Equal(d("4.41")))

	// Cambiar la tabla después no altera la venta registrada.
	require.NoError(t, rates.Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-nueva", ValidFrom: time.Now().Add(-time.Hour), CBSRate: d("0.5"),
	}))
	got, err := f.query.GetSale(ctx, out.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].CBSAmount.Equal(d("2.61")))

	split, err := f.query.SplitInstructions(ctx, out.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, in := range split.Instructions {
		sum = sum.Add(in.Amount)
	}
	assert.True(t, sum.Equal(d("490")))
}

func TestRealizeSale_TributosSobreElNetoConDescuentoDeVenta(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, managerOp, 0)
	ctx := context.Background()
	require.NoError(t, f.store.TaxRates().Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-geral", ValidFrom: time.Now().Add(-24 * time.Hour),
		IBSRate: d("0.18"), CBSRate: d("0.09"), SelectiveRate: decimal.Zero,
	}))

	out, err := f.realize.RealizeSale(ctx, managerOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: "p-batom", Quantity: d("1"), UnitPrice: ptr(d("100"))}},
		Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "80")},
		Discount: d("20"),
	})
	require.NoError(t, err)
	assert.True(t, out.NetTotal.Equal(d("80")))
	assert.True(t, out.TotalIBS.Equal(d("14.4")), "IBS %s", out.TotalIBS)
	assert.True(t, out.TotalCBS.Equal(d("7.2")), "CBS %s", out.TotalCBS)

	split, err := f.query.SplitInstructions(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, split.Instructions, 3)
	assert.True(t, split.Instructions[0].Amount.Equal(d("7.2")))
	assert.True(t, split.Instructions[1].Amount.Equal(d("14.4")))
	assert.True(t, split.Instructions[2].Amount.Equal(d("58.4")))
}

func TestRealizeSale_DescuentoRepartidoEntreItems(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, managerOp, 0)
	ctx := context.Background()
	require.NoError(t, f.store.TaxRates().Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-geral", ValidFrom: time.Now().Add(-24 * time.Hour),
		IBSRate: d("0.1"), CBSRate: d("0.1"), SelectiveRate: decimal.Zero,
	}))

	// 145 + 200 = 345; descuento 34.5 (10%) → 14.5 y 20 por ítem.
	out, err := f.realize.RealizeSale(ctx, managerOp, dto.RealizeSaleRequest{
		Items:    []dto.SaleItemRequest{batom(1), {ProductID: "p-perfume", Quantity: d("1")}},
		Payments: []dto.PaymentRequest{pay(entity.PaymentCredit, "310.5")},
		Discount: d("34.5"),
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].IBSAmount.Equal(d("13.05")), "batom IBS %s", out.Items[0].IBSAmount)
	assert.True(t, out.Items[1].IBSAmount.Equal(d("18")), "perfume IBS %s", out.Items[1].IBSAmount)

	split, err := f.query.SplitInstructions(ctx, out.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, in := range split.Instructions {
		assert.False(t, in.Amount.IsNegative(), "%s %s", in.Recipient, in.Amount)
		sum = sum.Add(in.Amount)
	}
	assert.True(t, sum.Equal(d("310.5")))
}

func TestQuery_VentaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.GetSale(context.Background(), "no-existe")
	require.Error(t, err)
	assert.Equal(t, domain.CodeSaleNotFound, domain.RejectionCode(err))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
