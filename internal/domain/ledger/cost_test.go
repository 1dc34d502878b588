package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// AverageUnitCost — promedio ponderado de por vida
// ──────────────────────────────────────────────────────────────────────────────

func TestAverageUnitCost_PromedioDePorVida(t *testing.T) {
	// 10 unidades a 100 + 10 unidades a 200 = 3000 / 20 = 150
	got := ledger.AverageUnitCost(dec("3000"), dec("20"))
	assert.True(t, dec("150").Equal(got), "el promedio debe ser 150, fue %s", got)
}

func TestAverageUnitCost_SinEntradasEsCero(t *testing.T) {
	got := ledger.AverageUnitCost(decimal.Zero, decimal.Zero)
	assert.True(t, got.IsZero(), "sin entradas el costo promedio debe ser 0")
}

func TestAverageUnitCost_CantidadNegativaEsCero(t *testing.T) {
	// Datos corruptos no deben producir una división sin sentido.
	got := ledger.AverageUnitCost(dec("500"), dec("-3"))
	assert.True(t, got.IsZero(), "cantidad de entradas negativa debe dar costo 0")
}

func TestAverageUnitCost_NoEsPromedioMovil(t *testing.T) {
	// La fórmula es histórica: las salidas NO cambian el promedio.
	// Entradas: 10 a 100, luego 10 a 300. Ventas intermedias irrelevantes.
	got := ledger.AverageUnitCost(dec("4000"), dec("20"))
	assert.True(t, dec("200").Equal(got),
		"el promedio debe considerar todas las entradas históricas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Summarize — agregación del diario de un artículo
// ──────────────────────────────────────────────────────────────────────────────

func entradaDiario(dir, qty, price string) *entity.JournalEntry {
	q, p := dec(qty), dec(price)
	return &entity.JournalEntry{
		Direction:  dir,
		Quantity:   q,
		UnitPrice:  p,
		TotalValue: q.Mul(p),
	}
}

func TestSummarize_EntradasYSalidas(t *testing.T) {
	entries := []*entity.JournalEntry{
		entradaDiario(entity.DirectionStockIn, "10", "100"),
		entradaDiario(entity.DirectionStockOut, "4", "150"),
		entradaDiario(entity.DirectionStockIn, "10", "200"),
	}
	s := ledger.Summarize(entries)

	assert.True(t, dec("16").Equal(s.Quantity), "cantidad: 10 - 4 + 10 = 16, fue %s", s.Quantity)
	assert.True(t, dec("20").Equal(s.StockInQty), "entradas totales: 20")
	assert.True(t, dec("3000").Equal(s.StockInValue), "valor de entradas: 1000 + 2000")
	assert.True(t, dec("150").Equal(s.AverageUnitCost), "costo promedio: 3000/20 = 150")
	assert.False(t, s.Negative)
	assert.True(t, s.Quantity.Equal(s.DisplayQuantity))
}

func TestSummarize_CantidadNegativaSeMarcaNoSeOculta(t *testing.T) {
	entries := []*entity.JournalEntry{
		entradaDiario(entity.DirectionStockIn, "5", "100"),
		entradaDiario(entity.DirectionStockOut, "8", "150"),
	}
	s := ledger.Summarize(entries)

	assert.True(t, dec("-3").Equal(s.Quantity), "la suma real debe conservarse negativa")
	assert.True(t, s.Negative, "la cantidad negativa debe marcarse como problema de integridad")
	assert.True(t, s.DisplayQuantity.IsZero(), "la cantidad de presentación tiene piso en 0")
}

func TestSummarize_DiarioVacio(t *testing.T) {
	s := ledger.Summarize(nil)
	assert.True(t, s.Quantity.IsZero())
	assert.True(t, s.AverageUnitCost.IsZero())
	assert.False(t, s.Negative)
}

// ──────────────────────────────────────────────────────────────────────────────
// SignedAmount — efecto con signo de un asiento del libro de saldos
// ──────────────────────────────────────────────────────────────────────────────

func TestBalanceEntry_SignedAmount(t *testing.T) {
	charge := &entity.BalanceEntry{Type: entity.BalanceEntryCharge, Amount: dec("1000")}
	payment := &entity.BalanceEntry{Type: entity.BalanceEntryPayment, Amount: dec("400")}
	assert.True(t, dec("1000").Equal(charge.SignedAmount()), "un cargo suma")
	assert.True(t, dec("-400").Equal(payment.SignedAmount()), "un pago resta")
}
