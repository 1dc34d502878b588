package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrVendorNotFound     = errors.New("proveedor no encontrado")
	ErrCustomerNotFound   = errors.New("cliente no encontrado")
	ErrItemNotFound       = errors.New("artículo no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrNotCancellable     = errors.New("la transacción no admite cancelación")
	ErrBalanceNotZero     = errors.New("la contraparte tiene saldo pendiente")
	ErrStoreUnavailable   = errors.New("almacén de datos no disponible")
	ErrItemReferenced     = errors.New("el artículo tiene movimientos en el diario")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// InsufficientStockError lleva el contexto necesario para que el POS pueda
// mostrar cuánto hay disponible. Envuelve ErrInsufficientStock.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %s, disponible %s",
		e.ItemID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NotCancellableError indica que la venta no está en estado "completed".
type NotCancellableError struct {
	TransactionID string
	Status        string
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("la transacción %s no se puede cancelar (estado %s)", e.TransactionID, e.Status)
}

func (e *NotCancellableError) Unwrap() error { return ErrNotCancellable }

// BalanceNotZeroError bloquea el borrado de una contraparte con saldo vivo.
// Balance es el saldo recalculado en el servidor, no el desnormalizado.
type BalanceNotZeroError struct {
	CounterpartyID string
	Balance        decimal.Decimal
}

func (e *BalanceNotZeroError) Error() string {
	return fmt.Sprintf("la contraparte %s tiene saldo pendiente de %s", e.CounterpartyID, e.Balance.String())
}

func (e *BalanceNotZeroError) Unwrap() error { return ErrBalanceNotZero }
