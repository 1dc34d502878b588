// Package ledger contiene los servicios de dominio del motor contable:
// cálculo de costo promedio y agregación de asientos del diario.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// AverageUnitCost calcula el costo promedio ponderado de por vida:
// costo total de TODAS las entradas / cantidad total de TODAS las entradas.
// No es FIFO ni LIFO ni promedio móvil estándar; es la fórmula histórica del
// sistema y se preserva por compatibilidad con los datos existentes.
func AverageUnitCost(totalStockInValue, totalStockInQty decimal.Decimal) decimal.Decimal {
	if totalStockInQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalStockInValue.Div(totalStockInQty)
}

// StockSummary es el resultado de agregar el diario de un artículo.
type StockSummary struct {
	Quantity        decimal.Decimal // suma con signo; puede ser negativa
	DisplayQuantity decimal.Decimal // Quantity con piso en 0 para presentación
	AverageUnitCost decimal.Decimal
	StockInQty      decimal.Decimal
	StockInValue    decimal.Decimal
	Negative        bool // true = el diario suma negativo: problema de integridad
}

// Summarize agrega una lista de asientos de un mismo artículo.
// Una cantidad negativa no se oculta: se reporta vía Negative y se expone
// DisplayQuantity en 0 solo para presentación.
func Summarize(entries []*entity.JournalEntry) StockSummary {
	var s StockSummary
	for _, e := range entries {
		s.Quantity = s.Quantity.Add(e.SignedQuantity())
		if e.Direction == entity.DirectionStockIn {
			s.StockInQty = s.StockInQty.Add(e.Quantity)
			s.StockInValue = s.StockInValue.Add(e.TotalValue)
		}
	}
	s.AverageUnitCost = AverageUnitCost(s.StockInValue, s.StockInQty)
	s.DisplayQuantity = s.Quantity
	if s.Quantity.IsNegative() {
		s.Negative = true
		s.DisplayQuantity = decimal.Zero
	}
	return s
}
