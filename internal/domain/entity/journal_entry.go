package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un asiento del diario de inventario.
const (
	DirectionStockIn  = "stock_in"  // entrada (compra, devolución, ajuste +)
	DirectionStockOut = "stock_out" // salida (venta, ajuste -)
)

// Tipos de documento que originan asientos (ReferenceType).
const (
	RefPurchase   = "purchase"
	RefSale       = "sale"
	RefReturn     = "return"
	RefAdjustment = "adjustment"
)

// JournalEntry es el registro inmutable de un movimiento de stock.
// Nunca se edita ni se borra: las correcciones se hacen con asientos de
// compensación. Lo crea exclusivamente el orquestador de transacciones.
type JournalEntry struct {
	ID            string
	ItemID        string
	Direction     string          // stock_in | stock_out
	Quantity      decimal.Decimal // siempre positiva; el signo lo da Direction
	UnitPrice     decimal.Decimal
	TotalValue    decimal.Decimal // Quantity * UnitPrice
	Date          time.Time       // fecha del movimiento (negocio)
	Counterparty  string          // nombre del proveedor/cliente, informativo
	ReferenceID   string          // id del documento origen (compra, venta, devolución)
	ReferenceType string
	CreatedAt     time.Time
	CreatedBy     string
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (e *JournalEntry) SignedQuantity() decimal.Decimal {
	if e.Direction == DirectionStockOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
