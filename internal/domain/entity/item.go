package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del inventario (tienda de una sola sede).
// CurrentQuantity y AverageUnitCost son agregados desnormalizados: la fuente
// de verdad es el diario (journal_entries) y la Reconciliación corrige la deriva.
type Item struct {
	ID              string
	Name            string
	CategoryID      string
	Unit            string // unidad de medida (UND, KG, LT, ...)
	Barcode         string
	SKU             string
	CurrentQuantity decimal.Decimal // suma con signo de entradas/salidas del diario
	AverageUnitCost decimal.Decimal // promedio ponderado de por vida de las entradas
	PurchaseRate    decimal.Decimal // último costo de compra conocido
	SaleRate        decimal.Decimal // último precio de venta conocido
	Archived        bool            // nunca se borra mientras existan asientos que lo referencien
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
}
