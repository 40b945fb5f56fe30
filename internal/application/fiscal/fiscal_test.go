package fiscal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/memory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/queue"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles
// ──────────────────────────────────────────────────────────────────────────────

type fakeGateway struct {
	result *fiscal.EmissionResult
	err    error
	calls  []fiscal.EmissionRequest
}

func (g *fakeGateway) RequestEmission(_ context.Context, req fiscal.EmissionRequest) (*fiscal.EmissionResult, error) {
	g.calls = append(g.calls, req)
	return g.result, g.err
}

type outcomes map[string]int

func (o outcomes) EmissionOutcome(outcome string) { o[outcome]++ }

func saveSale(t *testing.T, store *memory.Store, id, status string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, store.Repos().Sales.Create(context.Background(), &entity.Sale{
		ID: id, Date: createdAt, OperatorID: "op-1", CashSessionID: "cs-1",
		NetTotal: decimal.NewFromInt(100), FiscalStatus: status,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}))
}

func status(t *testing.T, store *memory.Store, id string) *entity.Sale {
	t.Helper()
	s, err := store.Repos().Sales.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Callback
// ──────────────────────────────────────────────────────────────────────────────

func TestCallback_AutorizaUnaSolaVez(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	m := outcomes{}
	uc := fiscal.NewCallbackUseCase(store.Repos().Sales, m, logger.Nop())
	ctx := context.Background()

	out, err := uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "APPROVED", DocumentRef: "2626 0000 1111"})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, entity.FiscalStatusApproved, out.FiscalStatus)
	assert.Equal(t, "2626 0000 1111", status(t, store, "v-1").FiscalDocumentRef)

	again, err := uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "rejected", Message: "duplicado"})
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Equal(t, entity.FiscalStatusApproved, again.FiscalStatus)
	assert.Equal(t, 1, m[fiscal.OutcomeApproved])
	assert.Zero(t, m[fiscal.OutcomeRejected])
}

func TestCallback_VentaCanceladaSeIgnora(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusCancelled, time.Now())
	uc := fiscal.NewCallbackUseCase(store.Repos().Sales, nil, logger.Nop())

	out, err := uc.Apply(context.Background(), dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "approved", DocumentRef: "x"})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, entity.FiscalStatusCancelled, status(t, store, "v-1").FiscalStatus)
}

func TestCallback_ContingenciaYLuegoAutorizada(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	uc := fiscal.NewCallbackUseCase(store.Repos().Sales, nil, logger.Nop())
	ctx := context.Background()

	out, err := uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "contingency"})
	require.NoError(t, err)
	assert.True(t, out.Applied)

	// Una contingencia repetida no aplica desde CONTINGENCIA.
	out, err = uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "contingency"})
	require.NoError(t, err)
	assert.False(t, out.Applied)

	out, err = uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "approved", DocumentRef: "chave"})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, entity.FiscalStatusApproved, status(t, store, "v-1").FiscalStatus)
}

func TestCallback_Validaciones(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	uc := fiscal.NewCallbackUseCase(store.Repos().Sales, nil, logger.Nop())
	ctx := context.Background()

	_, err := uc.Apply(ctx, dto.FiscalCallbackRequest{Outcome: "approved"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "approved"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "autorizar exige document_ref")

	_, err = uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-1", Outcome: "perdida"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Apply(ctx, dto.FiscalCallbackRequest{SaleID: "v-x", Outcome: "rejected"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeSaleNotFound, domain.RejectionCode(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Worker
// ──────────────────────────────────────────────────────────────────────────────

func newWorker(store *memory.Store, gw fiscal.Gateway, q fiscal.Queue, m fiscal.Metrics) *fiscal.EmissionWorker {
	log := logger.Nop()
	cb := fiscal.NewCallbackUseCase(store.Repos().Sales, m, log)
	return fiscal.NewEmissionWorker(q, store.Repos().Sales, gw, cb, m, log)
}

func TestProcessOne_GatewayAutorizaEnLinea(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	gw := &fakeGateway{result: &fiscal.EmissionResult{Outcome: fiscal.OutcomeApproved, DocumentRef: "DEV-v-1"}}
	w := newWorker(store, gw, queue.NewMemoryQueue(10), nil)

	require.NoError(t, w.ProcessOne(context.Background(), "v-1"))
	s := status(t, store, "v-1")
	assert.Equal(t, entity.FiscalStatusApproved, s.FiscalStatus)
	assert.Equal(t, "DEV-v-1", s.FiscalDocumentRef)
	assert.Equal(t, 1, s.EmissionAttempts)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "v-1", gw.calls[0].SaleID)
}

func TestProcessOne_FallaDelGatewayDejaErroEmissao(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	m := outcomes{}
	gw := &fakeGateway{err: errors.New("gateway fiscal: status 502")}
	w := newWorker(store, gw, queue.NewMemoryQueue(10), m)

	require.NoError(t, w.ProcessOne(context.Background(), "v-1"))
	s := status(t, store, "v-1")
	assert.Equal(t, entity.FiscalStatusEmissionError, s.FiscalStatus)
	assert.Contains(t, s.FiscalMessage, "502")
	assert.NotNil(t, s.LastEmissionAt)
	assert.Equal(t, 1, m[fiscal.OutcomeError])

	// Reintento aceptado por un gateway asíncrono: vuelve a PENDENTE y espera el callback.
	gw.err = nil
	require.NoError(t, w.ProcessOne(context.Background(), "v-1"))
	s = status(t, store, "v-1")
	assert.Equal(t, entity.FiscalStatusPending, s.FiscalStatus)
	assert.Equal(t, 2, s.EmissionAttempts)
	assert.Equal(t, 1, m[fiscal.OutcomeRequested])
}

func TestProcessOne_OmiteEstadosTerminales(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-canc", entity.FiscalStatusCancelled, time.Now())
	saveSale(t, store, "v-orc", entity.FiscalStatusOnHold, time.Now())
	gw := &fakeGateway{}
	w := newWorker(store, gw, queue.NewMemoryQueue(10), nil)
	ctx := context.Background()

	require.NoError(t, w.ProcessOne(ctx, "v-canc"))
	require.NoError(t, w.ProcessOne(ctx, "v-orc"))
	require.NoError(t, w.ProcessOne(ctx, "no-existe"))
	assert.Empty(t, gw.calls)
}

func TestRun_ConsumeLaColaHastaCancelar(t *testing.T) {
	store := memory.NewStore()
	saveSale(t, store, "v-1", entity.FiscalStatusPending, time.Now())
	q := queue.NewMemoryQueue(10)
	require.NoError(t, q.Enqueue(context.Background(), "v-1"))
	gw := &fakeGateway{result: &fiscal.EmissionResult{Outcome: fiscal.OutcomeApproved, DocumentRef: "chave"}}
	w := newWorker(store, gw, q, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		s, err := store.Repos().Sales.GetByID(context.Background(), "v-1")
		return err == nil && s != nil && s.FiscalStatus == entity.FiscalStatusApproved
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el worker no terminó tras cancelar el contexto")
	}
	// Confirmada: se puede volver a encolar.
	require.NoError(t, q.Enqueue(context.Background(), "v-1"))
	assert.Equal(t, 1, q.Len())
}

// ──────────────────────────────────────────────────────────────────────────────
// Barrido
// ──────────────────────────────────────────────────────────────────────────────

func TestSweep_ReencolaPendientesViejas(t *testing.T) {
	store := memory.NewStore()
	old := time.Now().Add(-10 * time.Minute)
	saveSale(t, store, "v-pend", entity.FiscalStatusPending, old)
	saveSale(t, store, "v-erro", entity.FiscalStatusEmissionError, old.Add(time.Minute))
	saveSale(t, store, "v-nueva", entity.FiscalStatusPending, time.Now())
	saveSale(t, store, "v-aut", entity.FiscalStatusApproved, old)
	saveSale(t, store, "v-orc", entity.FiscalStatusOnHold, old)
	q := queue.NewMemoryQueue(10)
	s := fiscal.NewSweeper(store.Repos().Sales, q, time.Minute, logger.Nop())
	ctx := context.Background()

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, q.Len())

	first, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "v-pend", first, "la más antigua primero")

	// Las tareas sin Ack no se duplican en el siguiente barrido.
	n, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, q.Len())
}
