package entity

import "time"

// Tipos de evento de auditoría.
const (
	AuditStockOverrun   = "VENDA_SEM_ESTOQUE"   // venta superó el stock registrado
	AuditSaleCancelled  = "VENDA_CANCELADA"
	AuditRestockSkipped = "ESTORNO_SEM_PRODUTO" // cancelación con producto inactivo: no hubo reingreso
)

// AuditEvent anomalía u operación sensible registrada en la misma transacción que la originó.
type AuditEvent struct {
	ID         string
	Type       string
	EntityID   string
	OperatorID string
	Detail     string
	CreatedAt  time.Time
}
