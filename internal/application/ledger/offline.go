package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// Ruta degradada offline.
//
// Cuando un evento no pudo confirmarse por falta de conectividad queda en la
// cola local y se reproduce aquí con escrituras secuenciales de mejor
// esfuerzo: primero el registro primario, después los contadores vía
// incrementos atómicos (UPDATE ... SET x = x + δ), nunca leer-modificar-
// escribir. No hay aislamiento entre sesiones: la pérdida de actualizaciones
// es un riesgo aceptado que corrige la Reconciliación.
//
// Idempotencia acotada: todos los ids derivan del id temporal del evento
// (uuid determinista), así un reintento tras una aplicación parcial choca por
// clave duplicada en vez de duplicar filas; cada incremento va apareado a su
// inserción y se omite cuando la inserción ya existía.

// Replay reaplica un evento pendiente de la cola. Lo invoca el Drain de la
// cola offline; kind/payload son los que guardó Enqueue.
func (o *Orchestrator) Replay(ctx context.Context, eventID, kind string, payload []byte) error {
	switch kind {
	case EventPurchase:
		var in PurchaseInput
		if err := json.Unmarshal(payload, &in); err != nil {
			return fmt.Errorf("decodificar evento %s: %w", kind, err)
		}
		return o.applyPurchaseOffline(eventID, in)
	case EventSale:
		var in SaleInput
		if err := json.Unmarshal(payload, &in); err != nil {
			return fmt.Errorf("decodificar evento %s: %w", kind, err)
		}
		return o.applySaleOffline(eventID, in)
	case EventVendorPayment:
		var in PaymentInput
		if err := json.Unmarshal(payload, &in); err != nil {
			return fmt.Errorf("decodificar evento %s: %w", kind, err)
		}
		return o.applyPaymentOffline(eventID, entity.PartyVendor, in)
	case EventCustomerTransaction:
		var in PaymentInput
		if err := json.Unmarshal(payload, &in); err != nil {
			return fmt.Errorf("decodificar evento %s: %w", kind, err)
		}
		return o.applyPaymentOffline(eventID, entity.PartyCustomer, in)
	default:
		return fmt.Errorf("evento de tipo desconocido: %s", kind)
	}
}

// offlineID deriva un uuid determinista del evento y un rol ("purchase",
// "journal:0", ...): reintentos generan los mismos ids.
func offlineID(eventID, role string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(eventID+":"+role)).String()
}

// skipIfDuplicate trata la violación de unicidad como "ya aplicado".
func skipIfDuplicate(err error) (alreadyApplied bool, real error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return true, nil
	}
	return false, err
}

func (o *Orchestrator) applyPurchaseOffline(eventID string, in PurchaseInput) error {
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.PurchaseRate))
	}
	total := subtotal.Add(in.TaxAmount).Sub(in.DiscountAmount)

	vendorName := ""
	if v, err := o.store.Vendors.GetByID(in.VendorID); err != nil {
		return err
	} else if v != nil {
		vendorName = v.Name
	}

	p := buildPurchase(in, subtotal, total)
	p.ID = offlineID(eventID, "purchase")
	for i := range p.Items {
		p.Items[i].ID = offlineID(eventID, fmt.Sprintf("purchase_item:%d", i))
		p.Items[i].PurchaseID = p.ID
	}

	// 1) registro primario
	purchaseExisted, err := skipIfDuplicate(o.store.Purchases.Create(p))
	if err != nil {
		return err
	}
	// 2) diario + incremento de stock, apareados por línea
	for i, line := range p.Items {
		entry := &entity.JournalEntry{
			ID:            offlineID(eventID, fmt.Sprintf("journal:%d", i)),
			ItemID:        line.ItemID,
			Direction:     entity.DirectionStockIn,
			Quantity:      line.Quantity,
			UnitPrice:     line.PurchaseRate,
			TotalValue:    line.Quantity.Mul(line.PurchaseRate),
			Date:          p.PurchaseDate,
			Counterparty:  vendorName,
			ReferenceID:   p.ID,
			ReferenceType: entity.RefPurchase,
			CreatedAt:     p.CreatedAt,
			CreatedBy:     in.UserID,
		}
		existed, err := skipIfDuplicate(o.store.Journal.Create(entry))
		if err != nil {
			return err
		}
		if existed {
			continue // el incremento de este asiento ya se aplicó (o lo cubrirá la Reconciliación)
		}
		if err := o.store.Items.IncrementQuantity(line.ItemID, line.Quantity); err != nil {
			return err
		}
		if err := o.store.Items.SetRates(line.ItemID, line.PurchaseRate, line.SaleRate); err != nil {
			return err
		}
	}
	// 3) saldo del proveedor, apareado a la creación de la compra
	if !purchaseExisted {
		if err := o.store.Vendors.AdjustBalance(p.VendorID, p.CreditAmount, p.TotalAmount); err != nil {
			return err
		}
	}
	o.invalidateLines(in.Lines)
	return nil
}

func (o *Orchestrator) applySaleOffline(eventID string, in SaleInput) error {
	affectsInventory, affectsAccounting, ok := billTypeFlags(in.BillType)
	if !ok {
		return domain.ErrInvalidInput
	}
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	total := subtotal.Add(in.TaxAmount).Sub(in.DiscountAmount)

	counterparty := "mostrador"
	if in.CustomerID != "" {
		if c, err := o.store.Customers.GetByID(in.CustomerID); err != nil {
			return err
		} else if c != nil {
			counterparty = c.Name
		}
	}

	t := buildSale(in, subtotal, total, affectsInventory, affectsAccounting)
	t.ID = offlineID(eventID, "sale")
	for i := range t.Items {
		t.Items[i].ID = offlineID(eventID, fmt.Sprintf("sale_item:%d", i))
		t.Items[i].TransactionID = t.ID
	}

	saleExisted, err := skipIfDuplicate(o.store.POS.CreateTransaction(t))
	if err != nil {
		return err
	}
	if affectsInventory {
		// Sin verificación de stock: en modo degradado no hay aislamiento y
		// un sobregiro temporal lo detecta y corrige la Reconciliación.
		for i, line := range t.Items {
			entry := &entity.JournalEntry{
				ID:            offlineID(eventID, fmt.Sprintf("journal:%d", i)),
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
				CreatedBy:     in.UserID,
			}
			existed, err := skipIfDuplicate(o.store.Journal.Create(entry))
			if err != nil {
				return err
			}
			if existed {
				continue
			}
			if err := o.store.Items.IncrementQuantity(line.ItemID, line.Quantity.Neg()); err != nil {
				return err
			}
		}
	}
	if in.BillType == entity.BillTypeCredit && affectsAccounting && !saleExisted {
		charge := &entity.BalanceEntry{
			ID:             offlineID(eventID, "charge"),
			PartyType:      entity.PartyCustomer,
			CounterpartyID: in.CustomerID,
			Type:           entity.BalanceEntryCharge,
			Amount:         total,
			Method:         in.PaymentMethod,
			ReferenceID:    t.ID,
			Date:           t.Date,
			CreatedAt:      t.CreatedAt,
			CreatedBy:      in.UserID,
		}
		existed, err := skipIfDuplicate(o.store.Balance.Create(charge))
		if err != nil {
			return err
		}
		if !existed {
			if err := o.store.Customers.AdjustBalance(in.CustomerID, total, total); err != nil {
				return err
			}
		}
	}
	if affectsInventory {
		ids := make([]string, 0, len(in.Lines))
		for _, l := range in.Lines {
			ids = append(ids, l.ItemID)
		}
		o.cache.Invalidate(ids...)
	}
	return nil
}

func (o *Orchestrator) applyPaymentOffline(eventID, partyType string, in PaymentInput) error {
	entryType := entity.BalanceEntryPayment
	if partyType == entity.PartyCustomer && in.Type == entity.BalanceEntryCharge {
		entryType = entity.BalanceEntryCharge
	}
	entry := buildBalanceEntry(partyType, entryType, in)
	entry.ID = offlineID(eventID, "balance_entry")
	existed, err := skipIfDuplicate(o.store.Balance.Create(entry))
	if err != nil {
		return err
	}
	if existed {
		return nil
	}
	// Sin asignación FIFO a compras en modo degradado: el estado de pago de
	// las compras lo regulariza el siguiente pago en ruta atómica.
	if partyType == entity.PartyVendor {
		return o.store.Vendors.AdjustBalance(in.CounterpartyID, in.Amount.Neg(), decimal.Zero)
	}
	return o.store.Customers.AdjustBalance(in.CounterpartyID, entry.SignedAmount(), decimal.Zero)
}
