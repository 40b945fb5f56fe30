package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/cashsession"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/discount"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/payment"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/tax"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/money"
)

// Settings parámetros de negocio del orquestador.
type Settings struct {
	TenderTolerance decimal.Decimal // diferencia aceptada entre lo entregado y el neto (redondeo)
	Terms           payment.Terms
}

// DefaultSettings tolerancia de 5 centavos y plazos por defecto.
func DefaultSettings() Settings {
	return Settings{TenderTolerance: decimal.RequireFromString("0.05"), Terms: payment.DefaultTerms()}
}

// RealizeSaleUseCase orquesta la venta del PDV: caja, costo, impuestos, descuento, stock,
// formas de pago y cuentas por cobrar en una sola transacción; la emisión fiscal va después, por cola.
type RealizeSaleUseCase struct {
	txRunner TxRunner
	policy   *discount.Policy
	queue    EmissionQueue
	metrics  Metrics
	settings Settings
	log      *logger.Logger
	now      func() time.Time
}

// NewRealizeSaleUseCase construye el caso de uso. metrics puede ser nil.
func NewRealizeSaleUseCase(
	txRunner TxRunner,
	policy *discount.Policy,
	queue EmissionQueue,
	metrics Metrics,
	settings Settings,
	log *logger.Logger,
) *RealizeSaleUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RealizeSaleUseCase{
		txRunner: txRunner,
		policy:   policy,
		queue:    queue,
		metrics:  metrics,
		settings: settings,
		log:      log.Named("sales"),
		now:      time.Now,
	}
}

// RealizeSale registra la venta para el operador autenticado.
func (uc *RealizeSaleUseCase) RealizeSale(ctx context.Context, op entity.Operator, in dto.RealizeSaleRequest) (*dto.SaleResponse, error) {
	started := uc.now()
	if op.ID == "" {
		return nil, domain.Reject(domain.CodeUnauthenticated, domain.ErrUnauthorized, "operador no autenticado")
	}

	var (
		sale        *entity.Sale
		receivables []*entity.Receivable
	)
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		sale, receivables, err = uc.settle(ctx, repos, op, in, started)
		return err
	})
	if err != nil {
		uc.metrics.SaleRecorded("rejected", uc.now().Sub(started))
		if code := domain.RejectionCode(err); code != "" {
			uc.log.Info().Str("operator_id", op.ID).Str("code", code).Msg("venta rechazada")
		}
		return nil, err
	}

	if !sale.IsQuote() {
		if err := uc.queue.Enqueue(ctx, sale.ID); err != nil {
			// La venta ya está confirmada; el barrido fiscal la volverá a encolar.
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo encolar la emisión fiscal")
		}
	}
	uc.metrics.SaleRecorded(sale.FiscalStatus, uc.now().Sub(started))
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("operator_id", op.ID).
		Str("net_total", sale.NetTotal.StringFixed(2)).
		Str("fiscal_status", sale.FiscalStatus).
		Msg("venta registrada")

	return ToSaleResponse(sale, receivables), nil
}

// settle corre dentro de la transacción. Cualquier error descarta todo.
func (uc *RealizeSaleUseCase) settle(
	ctx context.Context,
	repos repository.TxRepos,
	op entity.Operator,
	in dto.RealizeSaleRequest,
	now time.Time,
) (*entity.Sale, []*entity.Receivable, error) {
	// 1) Caja abierta del operador, bloqueada hasta el commit
	session, err := repos.CashSessions.GetOpenByOperatorForUpdate(ctx, op.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("sesión de caja: %w", err)
	}
	if session == nil {
		return nil, nil, domain.Reject(domain.CodeNoOpenSession, domain.ErrConflict, "abra la caja antes de vender")
	}

	// 2) Forma de la solicitud
	if len(in.Items) == 0 {
		return nil, nil, domain.Reject(domain.CodeNoItems, domain.ErrInvalidInput, "la venta no tiene ítems")
	}
	if len(in.Payments) == 0 {
		return nil, nil, domain.Reject(domain.CodeNoPayments, domain.ErrInvalidInput, "la venta no tiene formas de pago")
	}
	if in.Discount.IsNegative() {
		return nil, nil, domain.Reject(domain.CodeInvalidAmount, domain.ErrInvalidInput, "descuento negativo")
	}
	allocations, err := buildAllocations(in.Payments, uc.settings.Terms)
	if err != nil {
		return nil, nil, err
	}

	quote := in.Quote
	sale := &entity.Sale{
		ID:                uuid.New().String(),
		Date:              now,
		OperatorID:        op.ID,
		CustomerID:        strings.TrimSpace(in.CustomerID),
		CashSessionID:     session.ID,
		Discount:          in.Discount.Round(2),
		FiscalStatus:      entity.FiscalStatusPending,
		OnlyInvoicedStock: in.OnlyInvoicedStock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if quote {
		sale.FiscalStatus = entity.FiscalStatusOnHold
	}

	// 3) Productos: se resuelven y bloquean en orden de ID para no cruzar bloqueos entre cajas
	products, err := uc.lockProducts(ctx, repos.Products, in.Items, quote)
	if err != nil {
		return nil, nil, err
	}

	// 4) Líneas: foto de costo y de alícuotas
	gross := decimal.Zero
	snapshotter := tax.NewSnapshotter(repos.TaxRates)
	rateCache := make(map[string]tax.Rates)
	for i, req := range in.Items {
		product := products[resolvedKey(req)]
		unitPrice := product.Price
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return nil, nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput, "ítem %d: precio negativo", i+1)
			}
			unitPrice = *req.UnitPrice
		}
		if req.Discount.IsNegative() || req.Discount.GreaterThan(unitPrice.Mul(req.Quantity)) {
			return nil, nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput, "ítem %d: descuento inválido", i+1)
		}
		item := entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			ProductID:   product.ID,
			Description: product.Description,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice.Round(2),
			Discount:    req.Discount.Round(2),
			UnitCost:    inventory.SnapshotCogs(product),
		}
		rates, ok := rateCache[product.TaxCategory]
		if !ok {
			rates, err = snapshotter.CurrentRates(ctx, now, product.TaxCategory)
			if err != nil {
				return nil, nil, err
			}
			rateCache[product.TaxCategory] = rates
		}
		tax.StampItem(&item, rates)
		sale.Items = append(sale.Items, item)
		gross = gross.Add(item.Subtotal())
	}

	// 5) Totales. Los tributos se calculan sobre lo efectivamente cobrado:
	// el descuento de la venta se reparte entre los ítems antes de fijar los montos.
	sale.GrossTotal = gross
	sale.NetTotal = decimal.Max(gross.Sub(sale.Discount), decimal.Zero)
	shares := tax.AllocateSaleDiscount(sale.Items, gross.Sub(sale.NetTotal))
	for i := range sale.Items {
		it := &sale.Items[i]
		rates := tax.Rates{IBS: it.IBSRate, CBS: it.CBSRate, Selective: it.SelectiveRate}
		tax.StampItemOnBase(it, rates, it.Subtotal().Sub(shares[i]))
		sale.TotalIBS = sale.TotalIBS.Add(it.IBSAmount)
		sale.TotalCBS = sale.TotalCBS.Add(it.CBSAmount)
		sale.TotalSelective = sale.TotalSelective.Add(it.SelectiveAmount)
	}

	// 6) Autoridad de descuento sobre lo efectivamente concedido (venta + ítems)
	granted := gross.Sub(sale.NetTotal).Add(sale.ItemDiscountTotal())
	if err := uc.policy.Authorize(op.Role, sale.NetTotal, granted); err != nil {
		var lim *discount.LimitExceededError
		if errors.As(err, &lim) {
			uc.metrics.DiscountRejected(op.Role)
			return nil, nil, &domain.RejectionError{
				Code:    domain.CodeDiscountLimitExceeded,
				Message: fmt.Sprintf("descuento de %s supera su límite de %s",
					money.Percent(lim.Percent), money.Percent(lim.Limit)),
				Err: err,
			}
		}
		return nil, nil, err
	}

	// 7) Lo entregado cubre el neto; el troco sale solo del efectivo
	sale.Payments = allocations
	for i := range sale.Payments {
		sale.Payments[i].SaleID = sale.ID
	}
	drawer, change, err := uc.tender(sale)
	if err != nil {
		return nil, nil, err
	}
	sale.Change = change

	deferred := hasDeferred(allocations)
	if err := validateCustomer(ctx, repos.Customers, sale.CustomerID, deferred && !quote); err != nil {
		return nil, nil, err
	}

	if quote {
		// Presupuesto: se guarda tal cual, sin stock, caja ni cobranzas.
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return nil, nil, fmt.Errorf("guardar presupuesto: %w", err)
		}
		return sale, nil, nil
	}

	// 8) Débito de stock y kardex
	if err := uc.debitStock(ctx, repos, sale, products, op, now); err != nil {
		return nil, nil, err
	}

	// 9) Persistencia de la venta con ítems y pagos
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, nil, fmt.Errorf("guardar venta: %w", err)
	}

	// 10) Caja y cobranzas
	if err := cashsession.ApplySaleSettlement(session, drawer, now); err != nil {
		return nil, nil, err
	}
	if err := repos.CashSessions.Update(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("actualizar caja: %w", err)
	}
	receivables, err := uc.createReceivables(ctx, repos.Receivables, sale, now)
	if err != nil {
		return nil, nil, err
	}
	return sale, receivables, nil
}

func buildAllocations(reqs []dto.PaymentRequest, terms payment.Terms) ([]entity.PaymentAllocation, error) {
	out := make([]entity.PaymentAllocation, 0, len(reqs))
	for _, p := range reqs {
		a := entity.PaymentAllocation{
			ID:           uuid.New().String(),
			Method:       entity.PaymentMethod(strings.ToUpper(strings.TrimSpace(p.Method))),
			Amount:       p.Amount.Round(2),
			Installments: p.Installments,
		}
		if err := payment.Validate(a, terms); err != nil {
			return nil, err
		}
		if a.Installments == 0 {
			a.Installments = 1
		}
		out = append(out, a)
	}
	return out, nil
}

// resolvedKey clave con la que lockProducts indexa el producto de un ítem.
func resolvedKey(req dto.SaleItemRequest) string {
	if id := strings.TrimSpace(req.ProductID); id != "" {
		return "id:" + id
	}
	return "ean:" + strings.TrimSpace(req.Barcode)
}

// lockProducts resuelve cada ítem a su producto activo. Fuera de presupuestos bloquea las filas
// (SELECT FOR UPDATE) en orden de ID. Devuelve el producto bloqueado indexado por resolvedKey.
func (uc *RealizeSaleUseCase) lockProducts(
	ctx context.Context,
	repo repository.ProductRepository,
	items []dto.SaleItemRequest,
	quote bool,
) (map[string]*entity.Product, error) {
	keyToID := make(map[string]string, len(items))
	for i, req := range items {
		if !req.Quantity.IsPositive() {
			return nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput, "ítem %d: cantidad debe ser mayor que cero", i+1)
		}
		if !inventory.ValidQuantity(req.Quantity) {
			return nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput,
				"ítem %d: cantidad admite hasta %d decimales", i+1, inventory.QuantityScale)
		}
		key := resolvedKey(req)
		if _, done := keyToID[key]; done {
			continue
		}
		switch {
		case strings.TrimSpace(req.ProductID) != "":
			keyToID[key] = strings.TrimSpace(req.ProductID)
		case strings.TrimSpace(req.Barcode) != "":
			p, err := repo.FindActiveByBarcode(ctx, strings.TrimSpace(req.Barcode))
			if err != nil {
				return nil, fmt.Errorf("buscar código de barras: %w", err)
			}
			if p == nil {
				return nil, domain.Reject(domain.CodeProductNotFound, domain.ErrNotFound, "producto %s no encontrado", req.Barcode)
			}
			keyToID[key] = p.ID
		default:
			return nil, domain.Reject(domain.CodeInvalidItem, domain.ErrInvalidInput, "ítem %d: informe producto o código de barras", i+1)
		}
	}

	ids := make([]string, 0, len(keyToID))
	seen := make(map[string]bool, len(keyToID))
	for _, id := range keyToID {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	byID := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		var (
			p   *entity.Product
			err error
		)
		if quote {
			p, err = repo.GetByID(ctx, id)
		} else {
			p, err = repo.GetForUpdate(ctx, id)
		}
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", id, err)
		}
		if p == nil {
			return nil, domain.Reject(domain.CodeProductNotFound, domain.ErrNotFound, "producto %s no encontrado", id)
		}
		byID[id] = p
	}

	out := make(map[string]*entity.Product, len(keyToID))
	for key, id := range keyToID {
		out[key] = byID[id]
	}
	return out, nil
}

// tender valida lo entregado y devuelve las asignaciones que entran en la caja (efectivo ya sin troco).
func (uc *RealizeSaleUseCase) tender(sale *entity.Sale) ([]entity.PaymentAllocation, decimal.Decimal, error) {
	tendered := sale.TotalTendered()
	if tendered.Add(uc.settings.TenderTolerance).LessThan(sale.NetTotal) {
		shortfall := sale.NetTotal.Sub(tendered)
		return nil, decimal.Zero, domain.Reject(domain.CodeInsufficientTender, domain.ErrInvalidInput,
			"faltan %s para cubrir el total de %s", money.BRL(shortfall), money.BRL(sale.NetTotal))
	}

	change := decimal.Zero
	if tendered.GreaterThan(sale.NetTotal) {
		change = tendered.Sub(sale.NetTotal)
	}
	cash := decimal.Zero
	for _, a := range sale.Payments {
		if a.Method == entity.PaymentCash {
			cash = cash.Add(a.Amount)
		}
	}
	if change.GreaterThan(cash) {
		if change.GreaterThan(uc.settings.TenderTolerance) {
			return nil, decimal.Zero, domain.Reject(domain.CodeInvalidPayment, domain.ErrInvalidInput,
				"pago excede el total en %s y el troco solo puede salir de efectivo", money.BRL(change))
		}
		change = decimal.Zero
	}

	drawer := make([]entity.PaymentAllocation, 0, len(sale.Payments))
	remaining := change
	for _, a := range sale.Payments {
		if a.Method == entity.PaymentCash && remaining.IsPositive() {
			deduct := decimal.Min(a.Amount, remaining)
			a.Amount = a.Amount.Sub(deduct)
			remaining = remaining.Sub(deduct)
		}
		drawer = append(drawer, a)
	}
	return drawer, change, nil
}

func hasDeferred(allocations []entity.PaymentAllocation) bool {
	for _, a := range allocations {
		if r, err := payment.RouteFor(a.Method); err == nil && r.Deferred() {
			return true
		}
	}
	return false
}

// validateCustomer exige cliente existente para pagos diferidos y valida el informado en cualquier caso.
func validateCustomer(ctx context.Context, repo repository.CustomerRepository, customerID string, required bool) error {
	if customerID == "" {
		if required {
			return domain.Reject(domain.CodeCustomerRequired, domain.ErrInvalidInput, "boleto y crediário exigen un cliente")
		}
		return nil
	}
	c, err := repo.GetByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("cliente: %w", err)
	}
	if c == nil || !c.Active {
		return domain.Reject(domain.CodeCustomerNotFound, domain.ErrNotFound, "cliente %s no encontrado", customerID)
	}
	return nil
}

// debitStock descuenta cada línea del producto bloqueado y registra la salida al costo histórico.
// Vender por encima del stock no se bloquea: queda auditado en la misma transacción.
func (uc *RealizeSaleUseCase) debitStock(
	ctx context.Context,
	repos repository.TxRepos,
	sale *entity.Sale,
	products map[string]*entity.Product,
	op entity.Operator,
	now time.Time,
) error {
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range sale.Items {
		item := &sale.Items[i]
		p := byID[item.ProductID]
		before := p.Quantity
		p.Quantity = p.Quantity.Sub(item.Quantity)

		if p.Quantity.IsNegative() {
			detail := fmt.Sprintf("producto %s: stock %s, vendido %s, saldo %s",
				p.ID, before.String(), item.Quantity.String(), p.Quantity.String())
			if err := repos.Audit.Create(ctx, &entity.AuditEvent{
				ID:         uuid.New().String(),
				Type:       entity.AuditStockOverrun,
				EntityID:   sale.ID,
				OperatorID: op.ID,
				Detail:     detail,
				CreatedAt:  now,
			}); err != nil {
				return fmt.Errorf("auditar venta sin stock: %w", err)
			}
			uc.metrics.StockAnomaly()
			uc.log.Warn().
				Str("sale_id", sale.ID).
				Str("product_id", p.ID).
				Str("operator_id", op.ID).
				Str("quantity", p.Quantity.String()).
				Msg("venta superó el stock registrado")
		}

		if err := repos.StockMovements.Create(ctx, &entity.StockMovement{
			ID:          uuid.New().String(),
			ReferenceID: sale.ID,
			ProductID:   p.ID,
			Type:        entity.StockMovementOUT,
			Quantity:    item.Quantity.Neg(),
			UnitCost:    item.UnitCost,
			TotalCost:   item.COGS(),
			STAmount:    decimal.Zero,
			Date:        now,
			CreatedBy:   op.ID,
		}); err != nil {
			return fmt.Errorf("kardex: %w", err)
		}
	}
	for _, p := range byID {
		if err := repos.Products.UpdateStock(ctx, p.ID, p.Quantity, p.AverageCost); err != nil {
			return fmt.Errorf("actualizar stock %s: %w", p.ID, err)
		}
	}
	return nil
}

// createReceivables genera las cuotas de cada pago diferido según su calendario.
func (uc *RealizeSaleUseCase) createReceivables(
	ctx context.Context,
	repo repository.ReceivableRepository,
	sale *entity.Sale,
	now time.Time,
) ([]*entity.Receivable, error) {
	var out []*entity.Receivable
	for _, a := range sale.Payments {
		route, err := payment.RouteFor(a.Method)
		if err != nil {
			return nil, err
		}
		if !route.Deferred() {
			continue
		}
		schedule := route.Schedule(uc.settings.Terms, now, a.Amount, a.Installments)
		for _, inst := range schedule {
			r := &entity.Receivable{
				ID:               uuid.New().String(),
				SaleID:           sale.ID,
				CustomerID:       sale.CustomerID,
				Method:           a.Method,
				Installment:      inst.Number,
				InstallmentCount: len(schedule),
				Amount:           inst.Amount,
				Settled:          decimal.Zero,
				DueDate:          inst.DueDate,
				Status:           entity.ReceivableStatusPending,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := repo.Create(ctx, r); err != nil {
				return nil, fmt.Errorf("cuenta por cobrar: %w", err)
			}
			out = append(out, r)
		}
	}
	return out, nil
}
