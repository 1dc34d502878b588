package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/catalog"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// Fakes con interfaz embebida: solo se implementa lo que el caso de uso toca.

type fakeVendors struct {
	repository.VendorRepository
	vendors map[string]*entity.Vendor
	deleted []string
}

func (f *fakeVendors) Create(v *entity.Vendor) error {
	f.vendors[v.ID] = v
	return nil
}

func (f *fakeVendors) GetByID(id string) (*entity.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (f *fakeVendors) Delete(id string) error {
	delete(f.vendors, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCustomers struct {
	repository.CustomerRepository
	customers map[string]*entity.Customer
	deleted   []string
}

func (f *fakeCustomers) Create(c *entity.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomers) GetByID(id string) (*entity.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (f *fakeCustomers) Delete(id string) error {
	delete(f.customers, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePurchases struct {
	repository.PurchaseRepository
	creditByVendor map[string]decimal.Decimal
}

func (f *fakePurchases) SumCreditByVendor(vendorID string) (decimal.Decimal, error) {
	return f.creditByVendor[vendorID], nil
}

type fakeEntries struct {
	repository.BalanceEntryRepository
	sumByParty map[string]decimal.Decimal
}

func (f *fakeEntries) SumByCounterparty(partyType, counterpartyID string) (decimal.Decimal, error) {
	return f.sumByParty[partyType+"/"+counterpartyID], nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type ucFixture struct {
	vendors   *fakeVendors
	customers *fakeCustomers
	purchases *fakePurchases
	entries   *fakeEntries
	uc        *catalog.CounterpartyUseCase
}

func newUCFixture() *ucFixture {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{}}
	customers := &fakeCustomers{customers: map[string]*entity.Customer{}}
	purchases := &fakePurchases{creditByVendor: map[string]decimal.Decimal{}}
	entries := &fakeEntries{sumByParty: map[string]decimal.Decimal{}}
	ledger := balance.NewLedger(vendors, customers, purchases, entries)
	uc := catalog.NewCounterpartyUseCase(vendors, customers, ledger, dec("1.0"))
	return &ucFixture{vendors: vendors, customers: customers, purchases: purchases, entries: entries, uc: uc}
}

func TestCreateVendor_IniciaConSaldoCero(t *testing.T) {
	f := newUCFixture()
	resp, err := f.uc.CreateVendor("u1", dto.CreateCounterpartyRequest{Name: "Distribuidora Sur", Phone: "300123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.OutstandingBalance.IsZero())
	assert.True(t, resp.Active)

	_, err = f.uc.CreateVendor("u1", dto.CreateCounterpartyRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el nombre es obligatorio")
}

func TestDeleteVendor_BloqueadoConSaldoVivo(t *testing.T) {
	f := newUCFixture()
	f.vendors.vendors["v1"] = &entity.Vendor{ID: "v1", Name: "proveedor"}
	// Saldo autoritativo: 1500 a crédito - 500 pagados = 1000.
	f.purchases.creditByVendor["v1"] = dec("1500")
	f.entries.sumByParty["vendor/v1"] = dec("-500")

	err := f.uc.DeleteVendor("v1")
	var balErr *domain.BalanceNotZeroError
	require.ErrorAs(t, err, &balErr, "no se puede borrar un proveedor con deuda viva")
	assert.True(t, dec("1000").Equal(balErr.Balance), "el error debe llevar el saldo recalculado")
	assert.Empty(t, f.vendors.deleted)
}

func TestDeleteVendor_SaldoDesnormalizadoNoDecide(t *testing.T) {
	f := newUCFixture()
	// El desnormalizado quedó con deriva (dice 900) pero el autoritativo es 0:
	// la decisión usa el recálculo del servidor, no el campo cacheado.
	f.vendors.vendors["v1"] = &entity.Vendor{ID: "v1", OutstandingBalance: dec("900")}
	f.purchases.creditByVendor["v1"] = dec("500")
	f.entries.sumByParty["vendor/v1"] = dec("-500")

	require.NoError(t, f.uc.DeleteVendor("v1"))
	assert.Equal(t, []string{"v1"}, f.vendors.deleted)
}

func TestDeleteVendor_RedondeoDentroDelEpsilon(t *testing.T) {
	f := newUCFixture()
	f.vendors.vendors["v1"] = &entity.Vendor{ID: "v1"}
	f.purchases.creditByVendor["v1"] = dec("500.40")
	f.entries.sumByParty["vendor/v1"] = dec("-500")

	// |0.40| <= epsilon 1.0: residuo de redondeo, el borrado procede.
	require.NoError(t, f.uc.DeleteVendor("v1"))
}

func TestDeleteCustomer_BloqueadoConSaldoVivo(t *testing.T) {
	f := newUCFixture()
	f.customers.customers["c1"] = &entity.Customer{ID: "c1"}
	f.entries.sumByParty["customer/c1"] = dec("250")

	err := f.uc.DeleteCustomer("c1")
	var balErr *domain.BalanceNotZeroError
	require.ErrorAs(t, err, &balErr)
	assert.Empty(t, f.customers.deleted)

	// Tras un abono que salda la deuda, el borrado procede.
	f.entries.sumByParty["customer/c1"] = dec("0")
	require.NoError(t, f.uc.DeleteCustomer("c1"))
}

func TestDeleteVendor_Inexistente(t *testing.T) {
	f := newUCFixture()
	assert.ErrorIs(t, f.uc.DeleteVendor("fantasma"), domain.ErrVendorNotFound)
}
