package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras.
// Una compra es inmutable salvo PaidAmount/PaymentStatus, que solo avanzan
// conforme se asignan pagos al proveedor.
type PurchaseRepository interface {
	// Create persiste la compra con sus líneas y asigna Sequence (consecutivo
	// del servidor).
	Create(p *entity.Purchase) error
	GetByID(id string) (*entity.Purchase, error)
	List(limit, offset int) ([]*entity.Purchase, error)
	ListByVendor(vendorID string, limit, offset int) ([]*entity.Purchase, error)
	// ListOpenByVendor devuelve compras unpaid/partial en orden de fecha
	// (asignación FIFO de pagos).
	ListOpenByVendor(vendorID string) ([]*entity.Purchase, error)
	// UpdatePayment avanza el estado de pago; nunca toca CreditAmount.
	UpdatePayment(id string, paidAmount decimal.Decimal, status string) error
	// SumCreditByVendor suma credit_amount de todas las compras del proveedor
	// (lado positivo del saldo autoritativo).
	SumCreditByVendor(vendorID string) (decimal.Decimal, error)
}
