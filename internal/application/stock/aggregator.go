// Package stock deriva la cantidad y el costo promedio autoritativos de un
// artículo desde su diario, y expone la lectura rápida desnormalizada que
// usan las rutas calientes de lectura (búsqueda, carrito, verificación de stock).
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	domledger "github.com/jhoicas/puntoventa-api/internal/domain/ledger"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Computed es el resultado autoritativo del diario de un artículo.
type Computed struct {
	ItemID          string
	Quantity        decimal.Decimal // suma con signo; puede ser negativa
	DisplayQuantity decimal.Decimal // con piso en 0 para presentación
	AverageUnitCost decimal.Decimal
	Negative        bool // el diario suma negativo: problema de integridad
}

// Aggregator calcula agregados de stock. ComputeFromJournal es el oráculo de
// corrección O(n); FastPathRead es la lectura O(1) del campo desnormalizado.
type Aggregator struct {
	items   repository.ItemRepository
	journal repository.JournalRepository
	cache   *ItemCache // puede ser nil: lectura directa del almacén
	log     *logger.Logger
}

// NewAggregator construye el agregador.
func NewAggregator(items repository.ItemRepository, journal repository.JournalRepository, cache *ItemCache, log *logger.Logger) *Aggregator {
	return &Aggregator{items: items, journal: journal, cache: cache, log: log}
}

// journalPageSize acota cada página del recorrido del diario.
const journalPageSize = 500

// ComputeFromJournal recalcula cantidad y costo promedio recorriendo todos
// los asientos del artículo por páginas acotadas. Una cantidad negativa no se
// oculta: se marca y se loguea como problema de integridad; DisplayQuantity
// se presenta con piso en 0.
func (a *Aggregator) ComputeFromJournal(itemID string) (*Computed, error) {
	var all []*entity.JournalEntry
	for offset := 0; ; offset += journalPageSize {
		page, err := a.journal.ListByItem(itemID, nil, nil, journalPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < journalPageSize {
			break
		}
	}
	s := domledger.Summarize(all)
	c := &Computed{
		ItemID:          itemID,
		Quantity:        s.Quantity,
		DisplayQuantity: s.DisplayQuantity,
		AverageUnitCost: s.AverageUnitCost,
		Negative:        s.Negative,
	}
	if s.Negative {
		a.log.Warn().Str("item_id", itemID).Str("quantity", s.Quantity.String()).
			Msg("el diario del artículo suma cantidad negativa (integridad)")
	}
	return c, nil
}

// FastPathRead devuelve el artículo con sus agregados desnormalizados, vía
// caché de lectura si está configurada. Este valor puede derivar del oráculo
// tras escrituras offline; la Reconciliación lo corrige.
func (a *Aggregator) FastPathRead(itemID string) (*entity.Item, error) {
	if a.cache != nil {
		if item, ok := a.cache.Get(itemID); ok {
			return item, nil
		}
	}
	item, err := a.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if a.cache != nil {
		a.cache.Put(item)
	}
	return item, nil
}
