package reconcile_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Los fakes embeben la interfaz e implementan solo lo que el barrido usa;
// cualquier otro método dispara un nil panic y delata un acceso inesperado.

type fakeItems struct {
	repository.ItemRepository
	items map[string]*entity.Item
}

func (f *fakeItems) GetByID(id string) (*entity.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) ListIDs(limit, offset int) ([]string, error) {
	var ids []string
	for id := range f.items {
		ids = append(ids, id)
	}
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeItems) SetAggregates(id string, quantity, avgCost decimal.Decimal) error {
	f.items[id].CurrentQuantity = quantity
	f.items[id].AverageUnitCost = avgCost
	return nil
}

type fakeJournal struct {
	repository.JournalRepository
	entries map[string][]*entity.JournalEntry
}

func (f *fakeJournal) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error) {
	list := f.entries[itemID]
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// Los fakes de contrapartes llevan mutex: la corrección oportunista escribe
// desde una goroutine mientras el test consulta el estado.

type fakeVendors struct {
	repository.VendorRepository
	mu      sync.Mutex
	vendors map[string]*entity.Vendor
}

func (f *fakeVendors) GetByID(id string) (*entity.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVendors) ListIDs(limit, offset int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.vendors {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeVendors) SetBalance(id string, b decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendors[id].OutstandingBalance = b
	return nil
}

func (f *fakeVendors) balance(id string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vendors[id].OutstandingBalance
}

type fakeCustomers struct {
	repository.CustomerRepository
	mu        sync.Mutex
	customers map[string]*entity.Customer
}

func (f *fakeCustomers) GetByID(id string) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) ListIDs(limit, offset int) ([]string, error) { return nil, nil }

func (f *fakeCustomers) SetBalance(id string, b decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[id].OutstandingBalance = b
	return nil
}

func (f *fakeCustomers) balance(id string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers[id].OutstandingBalance
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
	sumByParty map[string]decimal.Decimal // clave: partyType + "/" + id
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

func newService(items *fakeItems, journal *fakeJournal, vendors *fakeVendors,
	customers *fakeCustomers, purchases *fakePurchases, entries *fakeEntries,
	opts reconcile.Options) *reconcile.Service {

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	aggregator := stock.NewAggregator(items, journal, nil, log)
	balances := balance.NewLedger(vendors, customers, purchases, entries)
	return reconcile.NewService(items, vendors, customers, aggregator, balances, nil, opts, log)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación de artículos
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileItem_CorrigeDeriva(t *testing.T) {
	items := &fakeItems{items: map[string]*entity.Item{
		// Desnormalizado dice 7; el diario dice 10 a costo 150.
		"i1": {ID: "i1", CurrentQuantity: dec("7"), AverageUnitCost: dec("100")},
	}}
	journal := &fakeJournal{entries: map[string][]*entity.JournalEntry{
		"i1": {
			{Direction: entity.DirectionStockIn, Quantity: dec("20"), TotalValue: dec("3000")},
			{Direction: entity.DirectionStockOut, Quantity: dec("10")},
		},
	}}
	svc := newService(items, journal, &fakeVendors{}, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{}, reconcile.DefaultOptions())

	corrected, err := svc.ReconcileItem("i1")
	require.NoError(t, err)
	assert.True(t, corrected, "la deriva debe detectarse y corregirse")
	assert.True(t, dec("10").Equal(items.items["i1"].CurrentQuantity))
	assert.True(t, dec("150").Equal(items.items["i1"].AverageUnitCost))
}

func TestReconcileItem_Idempotente(t *testing.T) {
	items := &fakeItems{items: map[string]*entity.Item{
		"i1": {ID: "i1", CurrentQuantity: dec("10"), AverageUnitCost: dec("150")},
	}}
	journal := &fakeJournal{entries: map[string][]*entity.JournalEntry{
		"i1": {
			{Direction: entity.DirectionStockIn, Quantity: dec("20"), TotalValue: dec("3000")},
			{Direction: entity.DirectionStockOut, Quantity: dec("10")},
		},
	}}
	svc := newService(items, journal, &fakeVendors{}, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{}, reconcile.DefaultOptions())

	// Primera pasada ya está alineada; segunda tampoco debe tocar nada.
	for i := 0; i < 2; i++ {
		corrected, err := svc.ReconcileItem("i1")
		require.NoError(t, err)
		assert.False(t, corrected, "sin deriva no debe haber corrección (pasada %d)", i+1)
	}
}

func TestReconcileItem_ArticuloBorradoNoEsError(t *testing.T) {
	svc := newService(&fakeItems{items: map[string]*entity.Item{}}, &fakeJournal{},
		&fakeVendors{}, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{}, reconcile.DefaultOptions())

	corrected, err := svc.ReconcileItem("borrado")
	require.NoError(t, err, "un artículo desaparecido en medio del barrido no es un error")
	assert.False(t, corrected)
}

func TestReconcileAllItems_BarreTodo(t *testing.T) {
	items := &fakeItems{items: map[string]*entity.Item{
		"i1": {ID: "i1", CurrentQuantity: dec("5")}, // deriva: el diario dice 8
		"i2": {ID: "i2", CurrentQuantity: dec("3")}, // alineado
	}}
	journal := &fakeJournal{entries: map[string][]*entity.JournalEntry{
		"i1": {{Direction: entity.DirectionStockIn, Quantity: dec("8"), TotalValue: dec("800")}},
		"i2": {{Direction: entity.DirectionStockIn, Quantity: dec("3"), TotalValue: dec("0")}},
	}}
	svc := newService(items, journal, &fakeVendors{}, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{}, reconcile.DefaultOptions())

	report, err := svc.ReconcileAllItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Corrected)
	assert.Equal(t, 0, report.Failed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación de saldos con epsilon
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileVendor_DerivaDentroDelEpsilonSeIgnora(t *testing.T) {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{
		"v1": {ID: "v1", OutstandingBalance: dec("1000.50")},
	}}
	purchases := &fakePurchases{creditByVendor: map[string]decimal.Decimal{"v1": dec("1500")}}
	entries := &fakeEntries{sumByParty: map[string]decimal.Decimal{"vendor/v1": dec("-500")}}
	svc := newService(&fakeItems{}, &fakeJournal{}, vendors, &fakeCustomers{}, purchases, entries,
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	// Autoritativo: 1500 - 500 = 1000; almacenado 1000.50; |0.50| <= 1.0
	corrected, err := svc.ReconcileVendor("v1")
	require.NoError(t, err)
	assert.False(t, corrected, "el redondeo dentro del epsilon no es deriva")
	assert.True(t, dec("1000.50").Equal(vendors.vendors["v1"].OutstandingBalance))
}

func TestReconcileVendor_DerivaRealSeCorrige(t *testing.T) {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{
		"v1": {ID: "v1", OutstandingBalance: dec("900")},
	}}
	purchases := &fakePurchases{creditByVendor: map[string]decimal.Decimal{"v1": dec("1500")}}
	entries := &fakeEntries{sumByParty: map[string]decimal.Decimal{"vendor/v1": dec("-500")}}
	svc := newService(&fakeItems{}, &fakeJournal{}, vendors, &fakeCustomers{}, purchases, entries,
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	corrected, err := svc.ReconcileVendor("v1")
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.True(t, dec("1000").Equal(vendors.vendors["v1"].OutstandingBalance),
		"el saldo debe sobrescribirse con el valor autoritativo")
}

func TestReconcileCustomer_CorrigeContraHistorial(t *testing.T) {
	customers := &fakeCustomers{customers: map[string]*entity.Customer{
		"c1": {ID: "c1", OutstandingBalance: dec("0")},
	}}
	entries := &fakeEntries{sumByParty: map[string]decimal.Decimal{"customer/c1": dec("250")}}
	svc := newService(&fakeItems{}, &fakeJournal{}, &fakeVendors{}, customers, &fakePurchases{}, entries,
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	corrected, err := svc.ReconcileCustomer("c1")
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.True(t, dec("250").Equal(customers.customers["c1"].OutstandingBalance))
}

// ──────────────────────────────────────────────────────────────────────────────
// Disparo oportunista desde rutas de lectura
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckVendorOpportunistic_CorrigeEnSegundoPlano(t *testing.T) {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{
		"v1": {ID: "v1", OutstandingBalance: dec("900")},
	}}
	svc := newService(&fakeItems{}, &fakeJournal{}, vendors, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{},
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	// La ruta de lectura ya recalculó 1000; el desnormalizado dice 900.
	svc.CheckVendorOpportunistic("v1", dec("1000"))

	assert.Eventually(t, func() bool {
		return dec("1000").Equal(vendors.balance("v1"))
	}, time.Second, 5*time.Millisecond, "la deriva detectada en lectura debe corregirse en segundo plano")
}

func TestCheckVendorOpportunistic_DentroDelEpsilonNoToca(t *testing.T) {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{
		"v1": {ID: "v1", OutstandingBalance: dec("1000.50")},
	}}
	svc := newService(&fakeItems{}, &fakeJournal{}, vendors, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{},
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	svc.CheckVendorOpportunistic("v1", dec("1000"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, dec("1000.50").Equal(vendors.balance("v1")), "el redondeo dentro del epsilon no es deriva")
}

func TestCheckCustomerOpportunistic_CorrigeEnSegundoPlano(t *testing.T) {
	customers := &fakeCustomers{customers: map[string]*entity.Customer{
		"c1": {ID: "c1", OutstandingBalance: dec("0")},
	}}
	svc := newService(&fakeItems{}, &fakeJournal{}, &fakeVendors{}, customers, &fakePurchases{}, &fakeEntries{},
		reconcile.Options{Epsilon: dec("1.0"), BatchSize: 100})

	svc.CheckCustomerOpportunistic("c1", dec("250"))

	assert.Eventually(t, func() bool {
		return dec("250").Equal(customers.balance("c1"))
	}, time.Second, 5*time.Millisecond)
}

func TestCheckVendorOpportunistic_ProveedorDesaparecidoNoHaceNada(t *testing.T) {
	vendors := &fakeVendors{vendors: map[string]*entity.Vendor{}}
	svc := newService(&fakeItems{}, &fakeJournal{}, vendors, &fakeCustomers{}, &fakePurchases{}, &fakeEntries{},
		reconcile.DefaultOptions())

	// No debe hacer panic ni escribir nada.
	svc.CheckVendorOpportunistic("fantasma", dec("1000"))
	time.Sleep(20 * time.Millisecond)
}
