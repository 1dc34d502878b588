package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/catalog"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// fakeItems reproduce la unicidad del esquema: nombre, código de barras y SKU
// únicos entre artículos activos (archivar libera el identificador).
type fakeItems struct {
	repository.ItemRepository
	byID map[string]*entity.Item
}

func (f *fakeItems) Create(item *entity.Item) error {
	for _, it := range f.byID {
		if it.Archived {
			continue
		}
		if it.Name == item.Name ||
			(item.Barcode != "" && it.Barcode == item.Barcode) ||
			(item.SKU != "" && it.SKU == item.SKU) {
			return domain.ErrDuplicate
		}
	}
	f.byID[item.ID] = item
	return nil
}

func (f *fakeItems) GetByID(id string) (*entity.Item, error) {
	it, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) Archive(id string) error {
	f.byID[id].Archived = true
	return nil
}

func newItemUC() (*catalog.ItemUseCase, *fakeItems) {
	items := &fakeItems{byID: map[string]*entity.Item{}}
	return catalog.NewItemUseCase(items, nil, nil), items
}

func TestCreateItem_NombreDuplicadoSeRechaza(t *testing.T) {
	uc, _ := newItemUC()

	_, err := uc.Create("u1", dto.CreateItemRequest{Name: "Arroz 500g", SaleRate: dec("2500")})
	require.NoError(t, err)

	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Arroz 500g", SaleRate: dec("2600")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateItem_BarcodeYSKUDuplicadosSeRechazan(t *testing.T) {
	uc, _ := newItemUC()

	_, err := uc.Create("u1", dto.CreateItemRequest{Name: "Arroz 500g", Barcode: "7701234", SKU: "ARZ-500", SaleRate: dec("2500")})
	require.NoError(t, err)

	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Otro nombre", Barcode: "7701234", SaleRate: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "código de barras duplicado")

	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Tercer nombre", SKU: "ARZ-500", SaleRate: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "SKU duplicado")

	// Barcode vacío no choca con otro barcode vacío.
	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Sin barcode A", SaleRate: dec("1000")})
	require.NoError(t, err)
	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Sin barcode B", SaleRate: dec("1000")})
	require.NoError(t, err)
}

func TestCreateItem_ArchivarLiberaElNombre(t *testing.T) {
	uc, _ := newItemUC()

	created, err := uc.Create("u1", dto.CreateItemRequest{Name: "Descontinuado", SaleRate: dec("900")})
	require.NoError(t, err)
	require.NoError(t, uc.Archive(created.ID))

	_, err = uc.Create("u1", dto.CreateItemRequest{Name: "Descontinuado", SaleRate: dec("950")})
	assert.NoError(t, err, "un artículo archivado no bloquea el nombre")
}
