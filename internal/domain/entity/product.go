package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// AverageCost es el costo medio ponderado (PMP); solo lo modifican las entradas de stock, nunca las ventas.
// Active es el borrado lógico: los productos nunca se eliminan físicamente y cada consulta lo filtra de forma explícita.
type Product struct {
	ID          string
	Barcode     string // EAN, único
	Description string
	NCM         string // clasificación fiscal (Nomenclatura Común del Mercosur)
	TaxCategory string // categoría de la reforma tributaria (IBS/CBS); vacío = régimen general
	Price       decimal.Decimal // precio de venta
	Quantity    decimal.Decimal // stock disponible; puede quedar negativo de forma transitoria (anomalía auditada)
	AverageCost decimal.Decimal // PMP, 4 decimales
	MinStock    decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BelowMinimum indica si el stock está por debajo del mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.Quantity.LessThan(p.MinStock)
}
