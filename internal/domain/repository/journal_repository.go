package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// JournalSums agrega el diario de un artículo en una sola consulta:
// cantidad con signo y totales de entradas (para el costo promedio).
type JournalSums struct {
	Quantity     decimal.Decimal
	StockInQty   decimal.Decimal
	StockInValue decimal.Decimal
}

// JournalRepository define el puerto del diario de movimientos de stock.
// El diario es append-only: no hay Update ni Delete.
type JournalRepository interface {
	Create(e *entity.JournalEntry) error
	GetByID(id string) (*entity.JournalEntry, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error)
	ListByReference(referenceID string) ([]*entity.JournalEntry, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error)
	// SumByItem agrega el diario del artículo en una sola consulta; lo usa
	// el refresco de agregados dentro de la transacción de escritura.
	SumByItem(itemID string) (JournalSums, error)
	// ExistsByItem permite bloquear el borrado de artículos referenciados.
	ExistsByItem(itemID string) (bool, error)
}
