package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// A quién pertenece un asiento del libro de saldos.
const (
	PartyVendor   = "vendor"
	PartyCustomer = "customer"
)

// Tipos de asiento del libro de saldos.
// Para proveedores solo existe "payment" (las compras generan el aumento).
// Para clientes: "payment" reduce el saldo, "charge" lo aumenta.
const (
	BalanceEntryPayment = "payment"
	BalanceEntryCharge  = "charge"
)

// BalanceEntry es el registro inmutable de un evento que afecta el saldo de
// una contraparte (pago a proveedor, abono de cliente, cargo a crédito).
type BalanceEntry struct {
	ID             string
	PartyType      string // vendor | customer
	CounterpartyID string
	Type           string // payment | charge
	Amount         decimal.Decimal
	Method         string // cash, transfer, card, ...
	ReferenceNo    string
	ReferenceID    string // documento origen (ej. venta a crédito)
	Notes          string
	Date           time.Time
	CreatedAt      time.Time
	CreatedBy      string
}

// SignedAmount devuelve el efecto del asiento sobre el saldo:
// cargos positivos, pagos negativos.
func (e *BalanceEntry) SignedAmount() decimal.Decimal {
	if e.Type == BalanceEntryPayment {
		return e.Amount.Neg()
	}
	return e.Amount
}
