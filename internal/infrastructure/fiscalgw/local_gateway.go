package fiscalgw

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
)

var _ fiscal.Gateway = LocalGateway{}

// LocalGateway autoriza en el acto (desarrollo, sin gateway configurado).
type LocalGateway struct{}

func (LocalGateway) RequestEmission(_ context.Context, req fiscal.EmissionRequest) (*fiscal.EmissionResult, error) {
	return &fiscal.EmissionResult{
		Outcome:     fiscal.OutcomeApproved,
		DocumentRef: "DEV-" + req.SaleID,
		Message:     "autorizada en modo local",
	}, nil
}
