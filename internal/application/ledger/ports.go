package ledger

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// Repos agrupa los repositorios que participan en un evento de negocio.
// El TxRunner entrega un Repos atado a la transacción; el cableado de la
// aplicación entrega otro atado al pool (ruta degradada offline).
type Repos struct {
	Items     repository.ItemRepository
	Journal   repository.JournalRepository
	Purchases repository.PurchaseRepository
	Vendors   repository.VendorRepository
	Customers repository.CustomerRepository
	Balance   repository.BalanceEntryRepository
	POS       repository.POSRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Commit si fn retorna nil, Rollback si retorna error.
// Es la garantía de atomicidad del motor: o se aplica todo el evento o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// EventQueue es la cola local de eventos pendientes (ruta offline).
// Enqueue persiste el evento y devuelve su id temporal.
type EventQueue interface {
	Enqueue(kind string, payload any) (string, error)
}

// CacheInvalidator invalida entradas de la caché de lectura después de cada
// escritura que afecta entidades cacheadas. La invalidación es explícita,
// nunca implícita ni global.
type CacheInvalidator interface {
	Invalidate(itemIDs ...string)
}

// noopInvalidator permite construir el orquestador sin caché (tests, CLI).
type noopInvalidator struct{}

func (noopInvalidator) Invalidate(...string) {}
