package fiscal

import (
	"context"
	"time"
)

// EmissionRequest lo que el PDV envía al gateway fiscal. El gateway arma el XML, firma y transmite.
type EmissionRequest struct {
	SaleID            string `json:"sale_id"`
	OnlyInvoicedStock bool   `json:"only_invoiced_stock"`
}

// EmissionResult desenlace inmediato. Los gateways asíncronos devuelven nil y responden por callback.
type EmissionResult struct {
	Outcome     string // OutcomeApproved | OutcomeRejected | OutcomeContingency
	DocumentRef string
	Message     string
}

// Gateway colaborador externo de emisión de NFC-e. Las solicitudes son idempotentes por SaleID.
type Gateway interface {
	RequestEmission(ctx context.Context, req EmissionRequest) (*EmissionResult, error)
}

// Queue cola de tareas de emisión con entrega al menos una vez.
// Dequeue espera hasta wait y devuelve "" si no hubo tarea. Ack confirma la tarea procesada.
type Queue interface {
	Enqueue(ctx context.Context, saleID string) error
	Dequeue(ctx context.Context, wait time.Duration) (string, error)
	Ack(ctx context.Context, saleID string) error
}

// Metrics contador de desenlaces de emisión.
type Metrics interface {
	EmissionOutcome(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) EmissionOutcome(string) {}
