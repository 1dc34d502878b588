package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción POS. completed es el único estado desde el que
// se puede transicionar; cancelled/returned/voided son terminales.
const (
	POSStatusCompleted = "completed"
	POSStatusCancelled = "cancelled"
	POSStatusReturned  = "returned"
	POSStatusVoided    = "voided"
)

// Tipos de comprobante. Una cotización (quotation) no mueve stock ni afecta
// contabilidad; de ahí derivan AffectsInventory/AffectsAccounting.
const (
	BillTypeSale      = "sale"
	BillTypeCredit    = "credit_sale"
	BillTypeQuotation = "quotation"
)

// Métodos de pago del POS.
const (
	PayMethodCash     = "cash"
	PayMethodCard     = "card"
	PayMethodTransfer = "transfer"
	PayMethodCredit   = "credit"
)

// POSItem es una línea de venta.
type POSItem struct {
	ID            string
	TransactionID string
	ItemID        string
	ItemName      string // snapshot del nombre al momento de la venta
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

// POSTransaction es una venta de mostrador.
// Inmutable una vez creada salvo el cambio de Status; la cancelación y las
// devoluciones se registran como eventos de compensación, nunca como edición.
type POSTransaction struct {
	ID                string
	Sequence          int64
	Items             []POSItem
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	PaymentMethod     string
	AmountTendered    decimal.Decimal
	ChangeGiven       decimal.Decimal
	CustomerID        string // vacío = venta de contado sin cliente
	BillType          string
	Status            string
	AffectsInventory  bool
	AffectsAccounting bool
	Date              time.Time
	CreatedAt         time.Time
	CreatedBy         string
}

// IsTerminal indica si el estado no admite más transiciones.
func (t *POSTransaction) IsTerminal() bool {
	return t.Status != POSStatusCompleted
}

// ReturnItem es una línea devuelta de una venta previa.
type ReturnItem struct {
	ID        string
	ReturnID  string
	ItemID    string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// POSReturn es la reversión parcial o total de una venta. La venta original
// nunca se edita; si queda totalmente cubierta se marca "returned".
type POSReturn struct {
	ID            string
	TransactionID string
	Items         []ReturnItem
	RefundAmount  decimal.Decimal
	RefundMethod  string
	Reason        string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
