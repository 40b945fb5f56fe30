package entity

import "time"

// Customer cliente de la tienda (el CRUD vive fuera de este servicio).
type Customer struct {
	ID        string
	Name      string
	TaxID     string // CPF o CNPJ
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
