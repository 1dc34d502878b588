package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// CartLine es una línea del carrito del POS.
type CartLine struct {
	ItemID    string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// SaleInput entrada para RecordSale. AllowOffline debe venir en true solo si
// el cajero reconoció explícitamente que la venta quede pendiente de sync:
// una venta de mostrador no se difiere en silencio.
type SaleInput struct {
	Lines          []CartLine
	PaymentMethod  string
	CustomerID     string // requerido si BillType es credit_sale
	BillType       string // sale | credit_sale | quotation
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	AmountTendered decimal.Decimal
	SaleDate       time.Time
	UserID         string
	AllowOffline   bool
}

// billTypeFlags deriva qué afecta el comprobante: una cotización no mueve
// stock ni contabilidad.
func billTypeFlags(billType string) (affectsInventory, affectsAccounting bool, ok bool) {
	switch billType {
	case entity.BillTypeSale, entity.BillTypeCredit:
		return true, true, true
	case entity.BillTypeQuotation:
		return false, false, true
	default:
		return false, false, false
	}
}

// RecordSale registra una venta de mostrador: verifica stock por línea con la
// fila bloqueada, crea la transacción POS, un asiento stock_out por línea,
// descuenta las cantidades y — si es venta a crédito — carga el saldo del
// cliente. Si cualquier línea queda sin stock, el evento completo se rechaza
// sin descontar nada.
func (o *Orchestrator) RecordSale(ctx context.Context, in SaleInput) (*entity.POSTransaction, Outcome, error) {
	if len(in.Lines) == 0 {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	affectsInventory, affectsAccounting, ok := billTypeFlags(in.BillType)
	if !ok {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		if l.ItemID == "" || !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.IsNegative() {
			return nil, Outcome{}, domain.ErrInvalidInput
		}
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	total := subtotal.Add(in.TaxAmount).Sub(in.DiscountAmount)
	if total.IsNegative() {
		return nil, Outcome{}, domain.ErrInvalidInput
	}

	isCredit := in.BillType == entity.BillTypeCredit
	if isCredit && in.CustomerID == "" {
		return nil, Outcome{}, domain.ErrInvalidInput
	}

	counterparty := "mostrador"
	if in.CustomerID != "" {
		customer, err := o.store.Customers.GetByID(in.CustomerID)
		if err != nil {
			return nil, Outcome{}, err
		}
		if customer == nil {
			return nil, Outcome{}, domain.ErrCustomerNotFound
		}
		counterparty = customer.Name
	}

	sale := buildSale(in, subtotal, total, affectsInventory, affectsAccounting)
	err := o.txRunner.Run(ctx, func(r Repos) error {
		return applySale(r, sale, counterparty, isCredit)
	})
	if err != nil {
		// Una venta solo se difiere con reconocimiento explícito del cajero.
		if in.AllowOffline {
			if out, okDefer := o.deferOffline(EventSale, in, err); okDefer {
				return nil, out, nil
			}
		}
		return nil, Outcome{}, err
	}
	if affectsInventory {
		ids := make([]string, 0, len(in.Lines))
		for _, l := range in.Lines {
			ids = append(ids, l.ItemID)
		}
		o.cache.Invalidate(ids...)
	}
	return sale, committed(), nil
}

func buildSale(in SaleInput, subtotal, total decimal.Decimal, affectsInventory, affectsAccounting bool) *entity.POSTransaction {
	now := time.Now()
	date := in.SaleDate
	if date.IsZero() {
		date = now
	}
	change := decimal.Zero
	if in.PaymentMethod == entity.PayMethodCash && in.AmountTendered.GreaterThan(total) {
		change = in.AmountTendered.Sub(total)
	}
	t := &entity.POSTransaction{
		ID:                uuid.New().String(),
		Subtotal:          subtotal,
		TaxAmount:         in.TaxAmount,
		DiscountAmount:    in.DiscountAmount,
		TotalAmount:       total,
		PaymentMethod:     in.PaymentMethod,
		AmountTendered:    in.AmountTendered,
		ChangeGiven:       change,
		CustomerID:        in.CustomerID,
		BillType:          in.BillType,
		Status:            entity.POSStatusCompleted,
		AffectsInventory:  affectsInventory,
		AffectsAccounting: affectsAccounting,
		Date:              date,
		CreatedAt:         now,
		CreatedBy:         in.UserID,
	}
	for _, l := range in.Lines {
		t.Items = append(t.Items, entity.POSItem{
			ID:            uuid.New().String(),
			TransactionID: t.ID,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			LineTotal:     l.Quantity.Mul(l.UnitPrice),
		})
	}
	return t
}

// applySale ejecuta las escrituras de la venta dentro de la tx del caller.
func applySale(r Repos, t *entity.POSTransaction, counterparty string, isCredit bool) error {
	if t.AffectsInventory {
		for i := range t.Items {
			line := &t.Items[i]
			// Verificar-y-descontar con la fila bloqueada: dos ventas
			// concurrentes del mismo artículo no pueden pasar ambas la
			// verificación contra una cantidad obsoleta.
			item, err := r.Items.GetForUpdate(line.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrItemNotFound
			}
			line.ItemName = item.Name
			if item.CurrentQuantity.LessThan(line.Quantity) {
				return &domain.InsufficientStockError{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Requested: line.Quantity,
					Available: item.CurrentQuantity,
				}
			}
			entry := &entity.JournalEntry{
				ID:            uuid.New().String(),
				ItemID:        line.ItemID,
				Direction:     entity.DirectionStockOut,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				TotalValue:    line.Quantity.Mul(line.UnitPrice),
				Date:          t.Date,
				Counterparty:  counterparty,
				ReferenceID:   t.ID,
				ReferenceType: entity.RefSale,
				CreatedAt:     t.CreatedAt,
				CreatedBy:     t.CreatedBy,
			}
			if err := r.Journal.Create(entry); err != nil {
				return err
			}
			if err := refreshItemAggregates(r, line.ItemID); err != nil {
				return err
			}
		}
	}
	if err := r.POS.CreateTransaction(t); err != nil {
		return err
	}
	if isCredit && t.AffectsAccounting {
		// El cargo entra al libro de saldos para que el recálculo del saldo
		// del cliente cierre contra sus asientos.
		charge := &entity.BalanceEntry{
			ID:             uuid.New().String(),
			PartyType:      entity.PartyCustomer,
			CounterpartyID: t.CustomerID,
			Type:           entity.BalanceEntryCharge,
			Amount:         t.TotalAmount,
			Method:         t.PaymentMethod,
			ReferenceID:    t.ID,
			Date:           t.Date,
			CreatedAt:      t.CreatedAt,
			CreatedBy:      t.CreatedBy,
		}
		if err := r.Balance.Create(charge); err != nil {
			return err
		}
		if err := r.Customers.AdjustBalance(t.CustomerID, t.TotalAmount, t.TotalAmount); err != nil {
			return err
		}
	}
	return nil
}
