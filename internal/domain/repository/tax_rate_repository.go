package repository

import (
	"context"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// TaxRateRepository ventanas de vigencia de alícuotas IBS/CBS.
type TaxRateRepository interface {
	// FindWindow devuelve la ventana de la categoría que contiene date, o nil si no hay.
	FindWindow(ctx context.Context, date time.Time, category string) (*entity.TaxReformRateWindow, error)
	Create(ctx context.Context, window *entity.TaxReformRateWindow) error
	List(ctx context.Context) ([]*entity.TaxReformRateWindow, error)
}
