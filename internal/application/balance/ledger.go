// Package balance expone la misma dualidad oráculo/ruta-rápida del stock,
// aplicada a saldos de contrapartes (proveedores y clientes).
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// Ledger calcula saldos autoritativos y lee los desnormalizados.
type Ledger struct {
	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	purchases repository.PurchaseRepository
	entries   repository.BalanceEntryRepository
}

// NewLedger construye el libro de saldos.
func NewLedger(
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	purchases repository.PurchaseRepository,
	entries repository.BalanceEntryRepository,
) *Ledger {
	return &Ledger{vendors: vendors, customers: customers, purchases: purchases, entries: entries}
}

// ComputeVendorBalance recalcula el saldo autoritativo del proveedor:
// Σ credit_amount de sus compras (lo que el negocio quedó debiendo al crear
// cada compra, inmutable) menos Σ pagos del libro.
func (l *Ledger) ComputeVendorBalance(vendorID string) (decimal.Decimal, error) {
	credit, err := l.purchases.SumCreditByVendor(vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	// Para proveedores solo existen pagos: la suma con signo ya es negativa.
	paid, err := l.entries.SumByCounterparty(entity.PartyVendor, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	return credit.Add(paid), nil
}

// ComputeCustomerBalance recalcula el saldo autoritativo del cliente:
// Σ cargos - Σ abonos de su libro.
func (l *Ledger) ComputeCustomerBalance(customerID string) (decimal.Decimal, error) {
	return l.entries.SumByCounterparty(entity.PartyCustomer, customerID)
}

// FastPathVendorBalance lee el saldo desnormalizado del proveedor (O(1)).
func (l *Ledger) FastPathVendorBalance(vendorID string) (decimal.Decimal, error) {
	v, err := l.vendors.GetByID(vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	if v == nil {
		return decimal.Zero, domain.ErrVendorNotFound
	}
	return v.OutstandingBalance, nil
}

// FastPathCustomerBalance lee el saldo desnormalizado del cliente (O(1)).
func (l *Ledger) FastPathCustomerBalance(customerID string) (decimal.Decimal, error) {
	c, err := l.customers.GetByID(customerID)
	if err != nil {
		return decimal.Zero, err
	}
	if c == nil {
		return decimal.Zero, domain.ErrCustomerNotFound
	}
	return c.OutstandingBalance, nil
}
