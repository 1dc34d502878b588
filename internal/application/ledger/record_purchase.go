package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	domledger "github.com/jhoicas/puntoventa-api/internal/domain/ledger"
)

// PurchaseLine es una línea de compra a proveedor.
type PurchaseLine struct {
	ItemID       string
	Quantity     decimal.Decimal
	PurchaseRate decimal.Decimal
	SaleRate     decimal.Decimal
	ExpiryDate   *time.Time
	ShelfLoc     string
}

// PurchaseInput entrada para RecordPurchase. El llamador crea antes, de forma
// síncrona, cualquier artículo nuevo: aquí toda línea debe referenciar un
// artículo existente.
type PurchaseInput struct {
	VendorID       string
	Lines          []PurchaseLine
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	PaidAmount     decimal.Decimal
	PurchaseDate   time.Time
	Notes          string
	UserID         string
}

// paymentStatusFor deriva el estado de pago a partir de lo pagado al crear.
func paymentStatusFor(paid, total decimal.Decimal) string {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return entity.PaymentStatusUnpaid
	case paid.LessThan(total):
		return entity.PaymentStatusPartial
	default:
		return entity.PaymentStatusPaid
	}
}

// RecordPurchase registra una compra a proveedor: crea la compra, un asiento
// stock_in por línea, incrementa la cantidad de cada artículo (y sus precios
// de referencia) y aumenta el saldo del proveedor en el monto a crédito.
// Todo dentro de una transacción; si el almacén no está disponible el evento
// se encola offline y el Outcome lo indica.
func (o *Orchestrator) RecordPurchase(ctx context.Context, in PurchaseInput) (*entity.Purchase, Outcome, error) {
	if len(in.Lines) == 0 || in.VendorID == "" {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		if l.ItemID == "" || !l.Quantity.GreaterThan(decimal.Zero) || l.PurchaseRate.IsNegative() {
			return nil, Outcome{}, domain.ErrInvalidInput
		}
		subtotal = subtotal.Add(l.Quantity.Mul(l.PurchaseRate))
	}
	total := subtotal.Add(in.TaxAmount).Sub(in.DiscountAmount)
	if total.IsNegative() || in.PaidAmount.IsNegative() || in.PaidAmount.GreaterThan(total) {
		return nil, Outcome{}, domain.ErrInvalidInput
	}

	// Validación de existencia fuera de la tx (solo lectura).
	vendor, err := o.store.Vendors.GetByID(in.VendorID)
	if err != nil {
		if out, ok := o.deferOffline(EventPurchase, in, err); ok {
			return nil, out, nil
		}
		return nil, Outcome{}, err
	}
	if vendor == nil {
		return nil, Outcome{}, domain.ErrVendorNotFound
	}

	purchase := buildPurchase(in, subtotal, total)
	err = o.txRunner.Run(ctx, func(r Repos) error {
		return applyPurchase(r, purchase, vendor.Name, in.UserID)
	})
	if err != nil {
		if out, ok := o.deferOffline(EventPurchase, in, err); ok {
			return nil, out, nil
		}
		return nil, Outcome{}, err
	}
	o.invalidateLines(in.Lines)
	return purchase, committed(), nil
}

// buildPurchase arma la entidad con id y montos calculados en el servidor.
func buildPurchase(in PurchaseInput, subtotal, total decimal.Decimal) *entity.Purchase {
	now := time.Now()
	date := in.PurchaseDate
	if date.IsZero() {
		date = now
	}
	p := &entity.Purchase{
		ID:             uuid.New().String(),
		VendorID:       in.VendorID,
		Subtotal:       subtotal,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		TotalAmount:    total,
		PaymentStatus:  paymentStatusFor(in.PaidAmount, total),
		PaidAmount:     in.PaidAmount,
		CreditAmount:   total.Sub(in.PaidAmount),
		PurchaseDate:   date,
		Notes:          in.Notes,
		CreatedAt:      now,
		CreatedBy:      in.UserID,
	}
	for _, l := range in.Lines {
		p.Items = append(p.Items, entity.PurchaseItem{
			ID:           uuid.New().String(),
			PurchaseID:   p.ID,
			ItemID:       l.ItemID,
			Quantity:     l.Quantity,
			PurchaseRate: l.PurchaseRate,
			SaleRate:     l.SaleRate,
			ExpiryDate:   l.ExpiryDate,
			ShelfLoc:     l.ShelfLoc,
		})
	}
	return p
}

// applyPurchase ejecuta las escrituras de la compra con los repos del caller
// (misma transacción). Solo ruta atómica: el replay offline usa incrementos.
func applyPurchase(r Repos, p *entity.Purchase, vendorName, userID string) error {
	for _, line := range p.Items {
		// Bloquea la fila del artículo: los agregados se recalculan abajo
		// contra el diario y nadie más puede escribirlos en paralelo.
		item, err := r.Items.GetForUpdate(line.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		entry := &entity.JournalEntry{
			ID:            uuid.New().String(),
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
			CreatedBy:     userID,
		}
		if err := r.Journal.Create(entry); err != nil {
			return err
		}
		if err := refreshItemAggregates(r, line.ItemID); err != nil {
			return err
		}
		if err := r.Items.SetRates(line.ItemID, line.PurchaseRate, line.SaleRate); err != nil {
			return err
		}
	}
	if err := r.Purchases.Create(p); err != nil {
		return err
	}
	// El saldo sube por el monto a crédito; TotalPurchases por el total.
	return r.Vendors.AdjustBalance(p.VendorID, p.CreditAmount, p.TotalAmount)
}

// refreshItemAggregates recalcula cantidad y costo promedio del artículo
// desde el diario (dentro de la misma tx, ve sus propias escrituras) y
// sobrescribe los campos desnormalizados: la ruta rápida queda igual al
// oráculo después de cada commit.
func refreshItemAggregates(r Repos, itemID string) error {
	sums, err := r.Journal.SumByItem(itemID)
	if err != nil {
		return err
	}
	avg := domledger.AverageUnitCost(sums.StockInValue, sums.StockInQty)
	return r.Items.SetAggregates(itemID, sums.Quantity, avg)
}

func (o *Orchestrator) invalidateLines(lines []PurchaseLine) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	o.cache.Invalidate(ids...)
}
