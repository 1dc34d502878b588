package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para artículos.
// Los campos desnormalizados (CurrentQuantity, AverageUnitCost) solo los
// escriben el orquestador de transacciones y la Reconciliación.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del artículo (SELECT FOR UPDATE) para
	// serializar la secuencia verificar-stock-luego-descontar.
	GetForUpdate(id string) (*entity.Item, error)
	List(includeArchived bool, limit, offset int) ([]*entity.Item, error)
	ListIDs(limit, offset int) ([]string, error)
	Update(item *entity.Item) error
	// SetAggregates sobrescribe los agregados desnormalizados (ruta atómica
	// con fila bloqueada, o corrección de la Reconciliación).
	SetAggregates(id string, quantity, averageUnitCost decimal.Decimal) error
	// SetRates actualiza los últimos precios conocidos de compra/venta.
	SetRates(id string, purchaseRate, saleRate decimal.Decimal) error
	// IncrementQuantity aplica un delta con UPDATE ... SET qty = qty + $1
	// (ruta degradada offline: incremento atómico sin leer-modificar-escribir).
	IncrementQuantity(id string, delta decimal.Decimal) error
	Archive(id string) error
}
