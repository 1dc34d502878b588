package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una compra. La progresión es monótona:
// unpaid -> partial -> paid (los pagos nunca reducen PaidAmount).
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// PurchaseItem es una línea de compra a proveedor.
type PurchaseItem struct {
	ID           string
	PurchaseID   string
	ItemID       string
	Quantity     decimal.Decimal
	PurchaseRate decimal.Decimal // costo unitario de esta compra
	SaleRate     decimal.Decimal // precio de venta sugerido (actualiza el item)
	ExpiryDate   *time.Time
	ShelfLoc     string
}

// Purchase es una compra a proveedor (entrada de stock).
// CreditAmount = TotalAmount - pagado al momento de crear; es INMUTABLE y es
// lo que suma al saldo del proveedor (la asignación posterior de pagos mueve
// PaidAmount/PaymentStatus, nunca CreditAmount — así el recálculo del saldo
// desde el libro es estable).
type Purchase struct {
	ID             string
	Sequence       int64 // consecutivo asignado por el servidor
	VendorID       string
	Items          []PurchaseItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentStatus  string // unpaid | partial | paid
	PaidAmount     decimal.Decimal
	CreditAmount   decimal.Decimal // TotalAmount - PaidAmount al crear; inmutable
	PurchaseDate   time.Time
	Notes          string
	CreatedAt      time.Time
	CreatedBy      string
}

// PendingAmount devuelve TotalAmount - PaidAmount. Negativo implica sobrepago
// (bug de datos); el llamador debe reportarlo, no ocultarlo.
func (p *Purchase) PendingAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}
