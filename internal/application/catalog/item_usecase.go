// Package catalog contiene los casos de uso CRUD del catálogo (artículos,
// categorías, proveedores, clientes). El catálogo suministra las entidades;
// cantidades, costos y saldos solo los mueve el motor de transacciones.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para artículos. CurrentQuantity y
// AverageUnitCost inician en 0 y solo los escriben orquestador/reconciliación.
type ItemUseCase struct {
	items   repository.ItemRepository
	journal repository.JournalRepository
	cache   interface{ Invalidate(...string) } // puede ser nil
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(items repository.ItemRepository, journal repository.JournalRepository, cache interface{ Invalidate(...string) }) *ItemUseCase {
	return &ItemUseCase{items: items, journal: journal, cache: cache}
}

// Create crea un artículo nuevo. Nombre/barcode/SKU duplicados los rechaza el
// almacén por restricción única (domain.ErrDuplicate).
func (uc *ItemUseCase) Create(userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" || in.SaleRate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:              uuid.New().String(),
		Name:            in.Name,
		CategoryID:      in.CategoryID,
		Unit:            in.Unit,
		Barcode:         in.Barcode,
		SKU:             in.SKU,
		CurrentQuantity: decimal.Zero,
		AverageUnitCost: decimal.Zero,
		SaleRate:        in.SaleRate,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       userID,
	}
	if err := uc.items.Create(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un artículo por ID (campos desnormalizados incluidos).
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return toItemResponse(item), nil
}

// List lista artículos con paginación.
func (uc *ItemUseCase) List(includeArchived bool, limit, offset int) ([]*dto.ItemResponse, error) {
	list, err := uc.items.List(includeArchived, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(list))
	for _, item := range list {
		out = append(out, toItemResponse(item))
	}
	return out, nil
}

// Update edita los campos de catálogo del artículo. No toca cantidad ni
// costo promedio (se manejan vía movimientos).
func (uc *ItemUseCase) Update(id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.Barcode != nil {
		item.Barcode = *in.Barcode
	}
	if in.SKU != nil {
		item.SKU = *in.SKU
	}
	if in.SaleRate != nil {
		if in.SaleRate.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item.SaleRate = *in.SaleRate
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.Update(item); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Invalidate(id)
	}
	return toItemResponse(item), nil
}

// Archive archiva el artículo. Un artículo con movimientos en el diario
// nunca se borra: se archiva para conservar la trazabilidad de sus asientos.
func (uc *ItemUseCase) Archive(id string) error {
	item, err := uc.items.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}
	if err := uc.items.Archive(id); err != nil {
		return err
	}
	if uc.cache != nil {
		uc.cache.Invalidate(id)
	}
	return nil
}

func toItemResponse(item *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:              item.ID,
		Name:            item.Name,
		CategoryID:      item.CategoryID,
		Unit:            item.Unit,
		Barcode:         item.Barcode,
		SKU:             item.SKU,
		CurrentQuantity: item.CurrentQuantity,
		AverageUnitCost: item.AverageUnitCost,
		PurchaseRate:    item.PurchaseRate,
		SaleRate:        item.SaleRate,
		Archived:        item.Archived,
	}
}

// CategoryUseCase casos de uso para categorías.
type CategoryUseCase struct {
	categories repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(categories repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{categories: categories}
}

// Create crea una categoría.
func (uc *CategoryUseCase) Create(in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.Category{ID: uuid.New().String(), Name: in.Name, CreatedAt: time.Now()}
	if err := uc.categories.Create(c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name}, nil
}

// List lista todas las categorías.
func (uc *CategoryUseCase) List() ([]*dto.CategoryResponse, error) {
	list, err := uc.categories.List()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, &dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return out, nil
}
