package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// VendorRepository define el puerto de persistencia para proveedores.
type VendorRepository interface {
	Create(v *entity.Vendor) error
	GetByID(id string) (*entity.Vendor, error)
	// GetForUpdate bloquea la fila del proveedor (serializa la asignación
	// FIFO de pagos a compras abiertas).
	GetForUpdate(id string) (*entity.Vendor, error)
	List(limit, offset int) ([]*entity.Vendor, error)
	ListIDs(limit, offset int) ([]string, error)
	Update(v *entity.Vendor) error
	Delete(id string) error
	// AdjustBalance aplica deltas con UPDATE ... SET x = x + $1 (incremento
	// atómico, válido en ruta atómica con fila bloqueada y en ruta offline).
	AdjustBalance(id string, balanceDelta, totalPurchasesDelta decimal.Decimal) error
	// SetBalance sobrescribe el saldo desnormalizado (solo Reconciliación).
	SetBalance(id string, balance decimal.Decimal) error
}

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(c *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetForUpdate(id string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	ListIDs(limit, offset int) ([]string, error)
	Update(c *entity.Customer) error
	Delete(id string) error
	AdjustBalance(id string, balanceDelta, totalPurchasesDelta decimal.Decimal) error
	SetBalance(id string, balance decimal.Decimal) error
}

// CategoryRepository define el puerto de persistencia para categorías.
type CategoryRepository interface {
	Create(c *entity.Category) error
	GetByID(id string) (*entity.Category, error)
	List() ([]*entity.Category, error)
}
