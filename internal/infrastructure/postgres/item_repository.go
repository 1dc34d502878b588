package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, category_id, unit, barcode, sku, current_quantity, average_unit_cost, purchase_rate, sale_rate, archived, created_at, updated_at, created_by`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.CategoryID, &it.Unit, &it.Barcode, &it.SKU,
		&it.CurrentQuantity, &it.AverageUnitCost, &it.PurchaseRate, &it.SaleRate,
		&it.Archived, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo artículo. Los agregados inician en 0.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.CategoryID, item.Unit, item.Barcode, item.SKU,
		item.CurrentQuantity, item.AverageUnitCost, item.PurchaseRate, item.SaleRate,
		item.Archived, item.CreatedAt, item.UpdatedAt, item.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE) para
// serializar la secuencia verificar-stock-luego-descontar.
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return it, nil
}

// List lista artículos con paginación. Los archivados se excluyen salvo que
// includeArchived sea true.
func (r *ItemRepo) List(includeArchived bool, limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE ($1 OR NOT archived) ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, includeArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.CategoryID, &it.Unit, &it.Barcode, &it.SKU,
			&it.CurrentQuantity, &it.AverageUnitCost, &it.PurchaseRate, &it.SaleRate,
			&it.Archived, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListIDs devuelve solo los IDs (incluye archivados: la reconciliación también
// los verifica). Paginado para que el barrido trabaje por lotes.
func (r *ItemRepo) ListIDs(limit, offset int) ([]string, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id FROM items ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list item ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update actualiza los campos de catálogo. No toca los agregados ni Archived
// (se manejan vía SetAggregates/Archive).
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, category_id = $3, unit = $4, barcode = $5, sku = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.CategoryID, item.Unit, item.Barcode, item.SKU, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// SetAggregates sobrescribe los agregados desnormalizados (orquestador con la
// fila bloqueada, o corrección de la Reconciliación).
func (r *ItemRepo) SetAggregates(id string, quantity, averageUnitCost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET current_quantity = $2, average_unit_cost = $3, updated_at = now() WHERE id = $1`,
		id, quantity, averageUnitCost,
	)
	if err != nil {
		return fmt.Errorf("set item aggregates: %w", err)
	}
	return nil
}

// SetRates actualiza los últimos precios conocidos de compra/venta.
func (r *ItemRepo) SetRates(id string, purchaseRate, saleRate decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET purchase_rate = $2, sale_rate = $3, updated_at = now() WHERE id = $1`,
		id, purchaseRate, saleRate,
	)
	if err != nil {
		return fmt.Errorf("set item rates: %w", err)
	}
	return nil
}

// IncrementQuantity aplica un delta atómico sin leer-modificar-escribir
// (ruta degradada offline; no recalcula el costo promedio).
func (r *ItemRepo) IncrementQuantity(id string, delta decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET current_quantity = current_quantity + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("increment item quantity: %w", err)
	}
	return nil
}

// Archive marca el artículo como archivado. Nunca se borra: el diario lo referencia.
func (r *ItemRepo) Archive(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET archived = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive item: %w", err)
	}
	return nil
}
