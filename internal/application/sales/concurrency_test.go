package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/tax"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// within corre fn y falla el test si no termina antes de timeout.
func within(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("la operación no terminó en %s", timeout)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacción con tabla de alícuotas cargada
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_ConAlicuotasCargadasNoSeBloquea(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()
	require.NoError(t, f.store.TaxRates().Create(ctx, &entity.TaxReformRateWindow{
		ID: "w-geral", ValidFrom: time.Now().Add(-time.Hour), IBSRate: d("0.001"), CBSRate: d("0.009"),
	}))

	var (
		out *dto.SaleResponse
		err error
	)
	within(t, 5*time.Second, func() {
		out, err = f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
			Items:    []dto.SaleItemRequest{batom(1)},
			Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "145")},
		})
	})
	require.NoError(t, err)
	assert.True(t, out.TotalCBS.Equal(d("1.31")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas concurrentes del mismo producto
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_ConcurrentesNoPierdenStock(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()
	const n = 8

	var wg sync.WaitGroup
	errs := make(chan error, n)
	within(t, 10*time.Second, func() {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
					Items:    []dto.SaleItemRequest{batom(1)},
					Payments: []dto.PaymentRequest{pay(entity.PaymentDebit, "145")},
				})
				errs <- err
			}()
		}
		wg.Wait()
	})
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.product(t, "p-batom").Quantity.Equal(d("2")))
	outs := 0
	for _, m := range f.store.StockMovements() {
		if m.ProductID == "p-batom" && m.Type == entity.StockMovementOUT {
			outs++
		}
	}
	assert.Equal(t, n, outs)
	assert.True(t, f.session(t, cashierOp).TotalCard.Equal(d("1160")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Entrada de stock compitiendo con ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestRealizeSale_CompiteConEntradaDeStock(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, cashierOp, 0)
	ctx := context.Background()
	entries := appinventory.NewStockEntryUseCase(f.store, tax.NewInterstateCalculator(d("0.205")), "PE", logger.Nop())
	const rounds = 5

	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	within(t, 10*time.Second, func() {
		for i := 0; i < rounds; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := entries.RegisterStockEntry(ctx, managerOp, dto.StockEntryRequest{
					ProductID: "p-batom", Quantity: d("2"), UnitCost: d("80"), OriginState: "PE",
				})
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := f.realize.RealizeSale(ctx, cashierOp, dto.RealizeSaleRequest{
					Items:    []dto.SaleItemRequest{batom(1)},
					Payments: []dto.PaymentRequest{pay(entity.PaymentPix, "145")},
				})
				errs <- err
			}()
		}
		wg.Wait()
	})
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Se reconstruye el PMP recorriendo el kardex en orden de confirmación: cada salida
	// debe llevar el costo vigente en ese momento y el saldo final debe coincidir.
	qty, avg := d("10"), d("60")
	for _, m := range f.store.StockMovements() {
		if m.ProductID != "p-batom" {
			continue
		}
		switch m.Type {
		case entity.StockMovementIN:
			avg = inventory.ApplyStockEntry(qty, avg, m.Quantity, m.UnitCost)
			qty = qty.Add(m.Quantity)
		case entity.StockMovementOUT:
			assert.True(t, m.UnitCost.Equal(avg), "salida al costo %s, vigente %s", m.UnitCost, avg)
			qty = qty.Add(m.Quantity)
		}
	}
	p := f.product(t, "p-batom")
	assert.True(t, qty.Equal(decimal.NewFromInt(15)), "kardex %s", qty)
	assert.True(t, p.Quantity.Equal(qty), "stock %s kardex %s", p.Quantity, qty)
	assert.True(t, p.AverageCost.Equal(avg), "PMP %s kardex %s", p.AverageCost, avg)
}
