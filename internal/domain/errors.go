package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Códigos de rechazo estables; el PDV los usa para mostrar un mensaje accionable.
const (
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeNoOpenSession         = "NO_OPEN_CASH_SESSION"
	CodeSessionAlreadyOpen    = "SESSION_ALREADY_OPEN"
	CodeSessionClosed         = "SESSION_CLOSED"
	CodeNoItems               = "NO_ITEMS"
	CodeNoPayments            = "NO_PAYMENTS"
	CodeInvalidItem           = "INVALID_ITEM"
	CodeInvalidPayment        = "INVALID_PAYMENT"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodeProductNotFound       = "PRODUCT_NOT_FOUND"
	CodeCustomerRequired      = "CUSTOMER_REQUIRED"
	CodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	CodeDiscountLimitExceeded = "DISCOUNT_LIMIT_EXCEEDED"
	CodeInsufficientTender    = "INSUFFICIENT_TENDER"
	CodeSaleNotFound          = "SALE_NOT_FOUND"
	CodeSaleAlreadyCancelled  = "SALE_ALREADY_CANCELLED"
	CodeReasonRequired        = "REASON_REQUIRED"
)

// RejectionError es un rechazo de negocio con código estable y mensaje para el usuario.
// Err apunta al error de dominio subyacente (ErrInvalidInput, ErrNotFound, ...).
type RejectionError struct {
	Code    string
	Message string
	Err     error
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Reject construye un RejectionError con mensaje formateado.
func Reject(code string, err error, format string, args ...any) *RejectionError {
	return &RejectionError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// RejectionCode devuelve el código de rechazo de err o "" si no es un rechazo.
func RejectionCode(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Code
	}
	return ""
}
