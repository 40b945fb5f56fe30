// Package metrics contadores Prometheus del PDV expuestos en /metrics.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
)

var (
	_ sales.Metrics  = (*Recorder)(nil)
	_ fiscal.Metrics = (*Recorder)(nil)
)

// Recorder implementa los puertos de métricas de ventas y de emisión fiscal.
type Recorder struct {
	registry         *prometheus.Registry
	salesTotal       *prometheus.CounterVec
	saleDuration     prometheus.Histogram
	stockAnomalies   prometheus.Counter
	discountRejected *prometheus.CounterVec
	emissions        *prometheus.CounterVec
}

// NewRecorder registra los colectores en un registro propio (más los de proceso y runtime de Go).
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Ventas procesadas por estado fiscal resultante (PENDENTE, EM_ESPERA) o rejected.",
		}, []string{"status"}),
		saleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_duration_seconds",
			Help:      "Duración de RealizeSale.",
			Buckets:   prometheus.DefBuckets,
		}),
		stockAnomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_anomalies_total",
			Help:      "Ítems vendidos con stock insuficiente.",
		}),
		discountRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_rejections_total",
			Help:      "Descuentos rechazados por superar el techo del rol.",
		}, []string{"role"}),
		emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fiscal_emissions_total",
			Help:      "Desenlaces de emisión de NFC-e.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		r.salesTotal, r.saleDuration, r.stockAnomalies, r.discountRejected, r.emissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) SaleRecorded(status string, elapsed time.Duration) {
	r.salesTotal.WithLabelValues(status).Inc()
	r.saleDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) StockAnomaly() {
	r.stockAnomalies.Inc()
}

func (r *Recorder) DiscountRejected(role string) {
	r.discountRejected.WithLabelValues(role).Inc()
}

func (r *Recorder) EmissionOutcome(outcome string) {
	r.emissions.WithLabelValues(outcome).Inc()
}

// Registry registro subyacente (tests).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler expone el registro en formato Prometheus como handler de Fiber.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
