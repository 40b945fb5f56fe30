package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

// Rates alícuotas de la reforma tributaria vigentes para un ítem (fracciones).
type Rates struct {
	IBS       decimal.Decimal
	CBS       decimal.Decimal
	Selective decimal.Decimal
}

// ZeroRates alícuotas nulas: fechas anteriores a la transición o sin tabla cargada.
var ZeroRates = Rates{IBS: decimal.Zero, CBS: decimal.Zero, Selective: decimal.Zero}

// RatesFromWindow convierte una ventana de vigencia en Rates.
func RatesFromWindow(w *entity.TaxReformRateWindow) Rates {
	if w == nil {
		return ZeroRates
	}
	return Rates{IBS: w.IBSRate, CBS: w.CBSRate, Selective: w.SelectiveRate}
}

// StampItem copia las alícuotas sobre el ítem y calcula los montos sobre su subtotal.
// La foto queda fija en la venta; cambios posteriores en la tabla no la alteran.
func StampItem(item *entity.SaleItem, rates Rates) {
	StampItemOnBase(item, rates, item.Subtotal())
}

// StampItemOnBase como StampItem pero sobre una base imponible dada
// (subtotal menos la parte del descuento de la venta que le toca al ítem).
func StampItemOnBase(item *entity.SaleItem, rates Rates, base decimal.Decimal) {
	base = decimal.Max(base, decimal.Zero)
	item.IBSRate = rates.IBS
	item.CBSRate = rates.CBS
	item.SelectiveRate = rates.Selective
	item.IBSAmount = base.Mul(rates.IBS).Round(2)
	item.CBSAmount = base.Mul(rates.CBS).Round(2)
	item.SelectiveAmount = base.Mul(rates.Selective).Round(2)
}

// AllocateSaleDiscount reparte el descuento de la venta entre los ítems en proporción a su subtotal.
// Cada parte va a 2 decimales y el resto de redondeo queda en el último ítem con subtotal positivo,
// así las partes suman exactamente discount.
func AllocateSaleDiscount(items []entity.SaleItem, discount decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(items))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	gross := decimal.Zero
	last := -1
	for i := range items {
		if sub := items[i].Subtotal(); sub.IsPositive() {
			gross = gross.Add(sub)
			last = i
		}
	}
	if !discount.IsPositive() || last < 0 {
		return shares
	}
	if discount.GreaterThan(gross) {
		discount = gross
	}
	allocated := decimal.Zero
	for i := range items {
		sub := items[i].Subtotal()
		if !sub.IsPositive() || i == last {
			continue
		}
		shares[i] = discount.Mul(sub).Div(gross).Round(2)
		allocated = allocated.Add(shares[i])
	}
	shares[last] = discount.Sub(allocated)
	return shares
}

// Snapshotter resuelve las alícuotas vigentes a una fecha.
type Snapshotter struct {
	repo repository.TaxRateRepository
}

// NewSnapshotter construye el resolvedor sobre el repositorio de ventanas.
func NewSnapshotter(repo repository.TaxRateRepository) *Snapshotter {
	return &Snapshotter{repo: repo}
}

// CurrentRates busca la ventana de la categoría; si no existe usa la del régimen general
// y, en último caso, alícuota cero. Nunca falla por ausencia de tabla.
func (s *Snapshotter) CurrentRates(ctx context.Context, date time.Time, category string) (Rates, error) {
	if category != "" {
		w, err := s.repo.FindWindow(ctx, date, category)
		if err != nil {
			return ZeroRates, fmt.Errorf("alícuotas %s: %w", category, err)
		}
		if w != nil {
			return RatesFromWindow(w), nil
		}
	}
	w, err := s.repo.FindWindow(ctx, date, "")
	if err != nil {
		return ZeroRates, fmt.Errorf("alícuotas régimen general: %w", err)
	}
	return RatesFromWindow(w), nil
}

// Destinatarios del split payment.
const (
	RecipientFederal  = "UNIAO"            // CBS + impuesto selectivo
	RecipientState    = "ESTADO_MUNICIPIO" // IBS
	RecipientMerchant = "LOJISTA"
)

// SplitInstruction parte del neto de la venta destinada a un receptor.
type SplitInstruction struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

// BuildSplitInstructions reparte el neto de la venta entre Unión, Estado/Municipio y lojista.
// El lojista recibe el resto, de modo que la suma de los tres montos es exactamente NetTotal.
func BuildSplitInstructions(sale *entity.Sale) []SplitInstruction {
	federal := decimal.Zero
	state := decimal.Zero
	for i := range sale.Items {
		it := &sale.Items[i]
		federal = federal.Add(it.CBSAmount).Add(it.SelectiveAmount)
		state = state.Add(it.IBSAmount)
	}
	merchant := sale.NetTotal.Sub(federal).Sub(state)
	return []SplitInstruction{
		{Recipient: RecipientFederal, Amount: federal},
		{Recipient: RecipientState, Amount: state},
		{Recipient: RecipientMerchant, Amount: merchant},
	}
}
