package repository

import (
	"context"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// CustomerRepository lectura de clientes; el alta y la edición viven en otro servicio.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
