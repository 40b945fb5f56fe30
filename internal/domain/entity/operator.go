package entity

// Roles de operador.
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Operator usuario autenticado que ejecuta la operación. Se pasa de forma explícita a cada caso de uso.
type Operator struct {
	ID   string
	Role string
}
