package ledger_test

// Repositorios en memoria para los tests del orquestador. El TxRunner de
// prueba toma un snapshot del almacén antes de fn y lo restaura si fn falla,
// imitando el commit/rollback real.

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

type memStore struct {
	items     map[string]*entity.Item
	journal   []*entity.JournalEntry
	purchases map[string]*entity.Purchase
	purOrder  []string
	vendors   map[string]*entity.Vendor
	customers map[string]*entity.Customer
	balance   []*entity.BalanceEntry
	pos       map[string]*entity.POSTransaction
	returns   []*entity.POSReturn
	seq       int64
}

func newMemStore() *memStore {
	return &memStore{
		items:     make(map[string]*entity.Item),
		purchases: make(map[string]*entity.Purchase),
		vendors:   make(map[string]*entity.Vendor),
		customers: make(map[string]*entity.Customer),
		pos:       make(map[string]*entity.POSTransaction),
	}
}

func (s *memStore) repos() ledger.Repos {
	return ledger.Repos{
		Items:     &memItemRepo{s},
		Journal:   &memJournalRepo{s},
		Purchases: &memPurchaseRepo{s},
		Vendors:   &memVendorRepo{s},
		Customers: &memCustomerRepo{s},
		Balance:   &memBalanceRepo{s},
		POS:       &memPOSRepo{s},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.seq = s.seq
	for id, it := range s.items {
		cp := *it
		c.items[id] = &cp
	}
	for _, e := range s.journal {
		cp := *e
		c.journal = append(c.journal, &cp)
	}
	for id, p := range s.purchases {
		cp := *p
		cp.Items = append([]entity.PurchaseItem(nil), p.Items...)
		c.purchases[id] = &cp
	}
	c.purOrder = append([]string(nil), s.purOrder...)
	for id, v := range s.vendors {
		cp := *v
		c.vendors[id] = &cp
	}
	for id, cu := range s.customers {
		cp := *cu
		c.customers[id] = &cp
	}
	for _, e := range s.balance {
		cp := *e
		c.balance = append(c.balance, &cp)
	}
	for id, t := range s.pos {
		cp := *t
		cp.Items = append([]entity.POSItem(nil), t.Items...)
		c.pos[id] = &cp
	}
	for _, r := range s.returns {
		cp := *r
		cp.Items = append([]entity.ReturnItem(nil), r.Items...)
		c.returns = append(c.returns, &cp)
	}
	return c
}

// memTxRunner imita la atomicidad: restaura el snapshot si fn falla.
// failWith fuerza el fallo de la transacción (simula almacén caído).
type memTxRunner struct {
	store    *memStore
	failWith error
}

func (r *memTxRunner) Run(_ context.Context, fn func(ledger.Repos) error) error {
	if r.failWith != nil {
		return r.failWith
	}
	snapshot := r.store.clone()
	if err := fn(r.store.repos()); err != nil {
		*r.store = *snapshot
		return err
	}
	return nil
}

// memQueue captura los Enqueue del orquestador.
type memQueue struct {
	events []struct {
		Kind    string
		Payload any
	}
}

func (q *memQueue) Enqueue(kind string, payload any) (string, error) {
	q.events = append(q.events, struct {
		Kind    string
		Payload any
	}{kind, payload})
	return "pending-1", nil
}

// ── items ────────────────────────────────────────────────────────────────────

type memItemRepo struct{ s *memStore }

var _ repository.ItemRepository = (*memItemRepo)(nil)

func (r *memItemRepo) Create(item *entity.Item) error {
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) GetByID(id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memItemRepo) GetForUpdate(id string) (*entity.Item, error) { return r.GetByID(id) }

func (r *memItemRepo) List(includeArchived bool, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, id := range r.sortedIDs() {
		it := r.s.items[id]
		if it.Archived && !includeArchived {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r *memItemRepo) ListIDs(limit, offset int) ([]string, error) {
	return page(r.sortedIDs(), limit, offset), nil
}

func (r *memItemRepo) sortedIDs() []string {
	ids := make([]string, 0, len(r.s.items))
	for id := range r.s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *memItemRepo) Update(item *entity.Item) error {
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) SetAggregates(id string, quantity, avgCost decimal.Decimal) error {
	if it, ok := r.s.items[id]; ok {
		it.CurrentQuantity = quantity
		it.AverageUnitCost = avgCost
	}
	return nil
}

func (r *memItemRepo) SetRates(id string, purchaseRate, saleRate decimal.Decimal) error {
	if it, ok := r.s.items[id]; ok {
		it.PurchaseRate = purchaseRate
		it.SaleRate = saleRate
	}
	return nil
}

func (r *memItemRepo) IncrementQuantity(id string, delta decimal.Decimal) error {
	if it, ok := r.s.items[id]; ok {
		it.CurrentQuantity = it.CurrentQuantity.Add(delta)
	}
	return nil
}

func (r *memItemRepo) Archive(id string) error {
	if it, ok := r.s.items[id]; ok {
		it.Archived = true
	}
	return nil
}

// ── journal ──────────────────────────────────────────────────────────────────

type memJournalRepo struct{ s *memStore }

var _ repository.JournalRepository = (*memJournalRepo)(nil)

func (r *memJournalRepo) Create(e *entity.JournalEntry) error {
	for _, existing := range r.s.journal {
		if existing.ID == e.ID {
			return domain.ErrDuplicate
		}
	}
	cp := *e
	r.s.journal = append(r.s.journal, &cp)
	return nil
}

func (r *memJournalRepo) GetByID(id string) (*entity.JournalEntry, error) {
	for _, e := range r.s.journal {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memJournalRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, e := range r.s.journal {
		if e.ItemID == itemID && inRange(e.Date, from, to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memJournalRepo) ListByReference(referenceID string) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, e := range r.s.journal {
		if e.ReferenceID == referenceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJournalRepo) List(from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, e := range r.s.journal {
		if inRange(e.Date, from, to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memJournalRepo) SumByItem(itemID string) (repository.JournalSums, error) {
	var sums repository.JournalSums
	for _, e := range r.s.journal {
		if e.ItemID != itemID {
			continue
		}
		sums.Quantity = sums.Quantity.Add(e.SignedQuantity())
		if e.Direction == entity.DirectionStockIn {
			sums.StockInQty = sums.StockInQty.Add(e.Quantity)
			sums.StockInValue = sums.StockInValue.Add(e.TotalValue)
		}
	}
	return sums, nil
}

func (r *memJournalRepo) ExistsByItem(itemID string) (bool, error) {
	for _, e := range r.s.journal {
		if e.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

// ── purchases ────────────────────────────────────────────────────────────────

type memPurchaseRepo struct{ s *memStore }

var _ repository.PurchaseRepository = (*memPurchaseRepo)(nil)

func (r *memPurchaseRepo) Create(p *entity.Purchase) error {
	if _, ok := r.s.purchases[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.seq++
	p.Sequence = r.s.seq
	cp := *p
	cp.Items = append([]entity.PurchaseItem(nil), p.Items...)
	r.s.purchases[p.ID] = &cp
	r.s.purOrder = append(r.s.purOrder, p.ID)
	return nil
}

func (r *memPurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Items = append([]entity.PurchaseItem(nil), p.Items...)
	return &cp, nil
}

func (r *memPurchaseRepo) List(limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, id := range r.s.purOrder {
		p, _ := r.GetByID(id)
		out = append(out, p)
	}
	return page(out, limit, offset), nil
}

func (r *memPurchaseRepo) ListByVendor(vendorID string, limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, id := range r.s.purOrder {
		if r.s.purchases[id].VendorID == vendorID {
			p, _ := r.GetByID(id)
			out = append(out, p)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memPurchaseRepo) ListOpenByVendor(vendorID string) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, id := range r.s.purOrder {
		p := r.s.purchases[id]
		if p.VendorID == vendorID && p.PaymentStatus != entity.PaymentStatusPaid {
			cp, _ := r.GetByID(id)
			out = append(out, cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PurchaseDate.Equal(out[j].PurchaseDate) {
			return out[i].PurchaseDate.Before(out[j].PurchaseDate)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (r *memPurchaseRepo) UpdatePayment(id string, paidAmount decimal.Decimal, status string) error {
	if p, ok := r.s.purchases[id]; ok {
		p.PaidAmount = paidAmount
		p.PaymentStatus = status
	}
	return nil
}

func (r *memPurchaseRepo) SumCreditByVendor(vendorID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.purchases {
		if p.VendorID == vendorID {
			total = total.Add(p.CreditAmount)
		}
	}
	return total, nil
}

// ── vendors / customers ──────────────────────────────────────────────────────

type memVendorRepo struct{ s *memStore }

var _ repository.VendorRepository = (*memVendorRepo)(nil)

func (r *memVendorRepo) Create(v *entity.Vendor) error {
	cp := *v
	r.s.vendors[v.ID] = &cp
	return nil
}

func (r *memVendorRepo) GetByID(id string) (*entity.Vendor, error) {
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memVendorRepo) GetForUpdate(id string) (*entity.Vendor, error) { return r.GetByID(id) }

func (r *memVendorRepo) List(limit, offset int) ([]*entity.Vendor, error) {
	var out []*entity.Vendor
	for _, id := range sortedKeys(r.s.vendors) {
		cp := *r.s.vendors[id]
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r *memVendorRepo) ListIDs(limit, offset int) ([]string, error) {
	return page(sortedKeys(r.s.vendors), limit, offset), nil
}

func (r *memVendorRepo) Update(v *entity.Vendor) error {
	cp := *v
	r.s.vendors[v.ID] = &cp
	return nil
}

func (r *memVendorRepo) Delete(id string) error {
	delete(r.s.vendors, id)
	return nil
}

func (r *memVendorRepo) AdjustBalance(id string, balanceDelta, totalPurchasesDelta decimal.Decimal) error {
	if v, ok := r.s.vendors[id]; ok {
		v.OutstandingBalance = v.OutstandingBalance.Add(balanceDelta)
		v.TotalPurchases = v.TotalPurchases.Add(totalPurchasesDelta)
	}
	return nil
}

func (r *memVendorRepo) SetBalance(id string, balance decimal.Decimal) error {
	if v, ok := r.s.vendors[id]; ok {
		v.OutstandingBalance = balance
	}
	return nil
}

type memCustomerRepo struct{ s *memStore }

var _ repository.CustomerRepository = (*memCustomerRepo)(nil)

func (r *memCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) { return r.GetByID(id) }

func (r *memCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, id := range sortedKeys(r.s.customers) {
		cp := *r.s.customers[id]
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r *memCustomerRepo) ListIDs(limit, offset int) ([]string, error) {
	return page(sortedKeys(r.s.customers), limit, offset), nil
}

func (r *memCustomerRepo) Update(c *entity.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) Delete(id string) error {
	delete(r.s.customers, id)
	return nil
}

func (r *memCustomerRepo) AdjustBalance(id string, balanceDelta, totalPurchasesDelta decimal.Decimal) error {
	if c, ok := r.s.customers[id]; ok {
		c.OutstandingBalance = c.OutstandingBalance.Add(balanceDelta)
		c.TotalPurchases = c.TotalPurchases.Add(totalPurchasesDelta)
	}
	return nil
}

func (r *memCustomerRepo) SetBalance(id string, balance decimal.Decimal) error {
	if c, ok := r.s.customers[id]; ok {
		c.OutstandingBalance = balance
	}
	return nil
}

// ── balance entries ──────────────────────────────────────────────────────────

type memBalanceRepo struct{ s *memStore }

var _ repository.BalanceEntryRepository = (*memBalanceRepo)(nil)

func (r *memBalanceRepo) Create(e *entity.BalanceEntry) error {
	for _, existing := range r.s.balance {
		if existing.ID == e.ID {
			return domain.ErrDuplicate
		}
	}
	cp := *e
	r.s.balance = append(r.s.balance, &cp)
	return nil
}

func (r *memBalanceRepo) ListByCounterparty(partyType, counterpartyID string, limit, offset int) ([]*entity.BalanceEntry, error) {
	var out []*entity.BalanceEntry
	for _, e := range r.s.balance {
		if e.PartyType == partyType && e.CounterpartyID == counterpartyID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memBalanceRepo) SumByCounterparty(partyType, counterpartyID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.s.balance {
		if e.PartyType == partyType && e.CounterpartyID == counterpartyID {
			total = total.Add(e.SignedAmount())
		}
	}
	return total, nil
}

// ── POS ──────────────────────────────────────────────────────────────────────

type memPOSRepo struct{ s *memStore }

var _ repository.POSRepository = (*memPOSRepo)(nil)

func (r *memPOSRepo) CreateTransaction(t *entity.POSTransaction) error {
	if _, ok := r.s.pos[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.seq++
	t.Sequence = r.s.seq
	cp := *t
	cp.Items = append([]entity.POSItem(nil), t.Items...)
	r.s.pos[t.ID] = &cp
	return nil
}

func (r *memPOSRepo) GetTransaction(id string) (*entity.POSTransaction, error) {
	t, ok := r.s.pos[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.Items = append([]entity.POSItem(nil), t.Items...)
	return &cp, nil
}

func (r *memPOSRepo) GetTransactionForUpdate(id string) (*entity.POSTransaction, error) {
	return r.GetTransaction(id)
}

func (r *memPOSRepo) ListTransactions(from, to *time.Time, limit, offset int) ([]*entity.POSTransaction, error) {
	var out []*entity.POSTransaction
	for _, id := range sortedKeys(r.s.pos) {
		t := r.s.pos[id]
		if inRange(t.Date, from, to) {
			cp, _ := r.GetTransaction(id)
			out = append(out, cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memPOSRepo) UpdateStatus(id, status string) error {
	if t, ok := r.s.pos[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *memPOSRepo) CreateReturn(ret *entity.POSReturn) error {
	cp := *ret
	cp.Items = append([]entity.ReturnItem(nil), ret.Items...)
	r.s.returns = append(r.s.returns, &cp)
	return nil
}

func (r *memPOSRepo) ListReturnsByTransaction(transactionID string) ([]*entity.POSReturn, error) {
	var out []*entity.POSReturn
	for _, ret := range r.s.returns {
		if ret.TransactionID == transactionID {
			cp := *ret
			cp.Items = append([]entity.ReturnItem(nil), ret.Items...)
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}
