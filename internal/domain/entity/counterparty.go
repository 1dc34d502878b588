package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor representa un proveedor. OutstandingBalance es la deuda del negocio
// con el proveedor (desnormalizada; la verdad está en compras + pagos).
type Vendor struct {
	ID                 string
	Name               string
	Phone              string
	Email              string
	Address            string
	TaxID              string
	OutstandingBalance decimal.Decimal // Σ credit_amount de compras - Σ pagos
	TotalPurchases     decimal.Decimal // agregado de por vida
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedBy          string
}

// Customer representa un cliente. OutstandingBalance es la deuda del cliente
// con el negocio (ventas a crédito/cargos - pagos).
type Customer struct {
	ID                 string
	Name               string
	Phone              string
	Email              string
	Address            string
	OutstandingBalance decimal.Decimal // Σ cargos - Σ pagos
	TotalPurchases     decimal.Decimal
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedBy          string
}

// Category agrupa artículos del catálogo.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
