package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// ReturnLine es una línea devuelta de una venta previa.
type ReturnLine struct {
	ItemID   string
	Quantity decimal.Decimal
}

// ReturnInput entrada para ProcessReturn.
type ReturnInput struct {
	TransactionID string
	Lines         []ReturnLine
	RefundMethod  string
	Reason        string
	UserID        string
}

// ProcessReturn procesa una devolución parcial o total de una venta: crea el
// registro de devolución con su monto de reembolso, asientos stock_in por
// línea devuelta, y marca la venta original como returned si todas sus líneas
// quedaron cubiertas. La venta original no se edita ni se borra.
func (o *Orchestrator) ProcessReturn(ctx context.Context, in ReturnInput) (*entity.POSReturn, error) {
	if in.TransactionID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if l.ItemID == "" || !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	var ret *entity.POSReturn
	err := o.txRunner.Run(ctx, func(r Repos) error {
		t, err := r.POS.GetTransactionForUpdate(in.TransactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.POSStatusCompleted {
			return &domain.NotCancellableError{TransactionID: t.ID, Status: t.Status}
		}

		// Cantidad ya devuelta por artículo en devoluciones previas.
		previous, err := r.POS.ListReturnsByTransaction(t.ID)
		if err != nil {
			return err
		}
		returned := map[string]decimal.Decimal{}
		for _, pr := range previous {
			for _, li := range pr.Items {
				returned[li.ItemID] = returned[li.ItemID].Add(li.Quantity)
			}
		}
		sold := map[string]decimal.Decimal{}
		price := map[string]decimal.Decimal{}
		for _, li := range t.Items {
			sold[li.ItemID] = sold[li.ItemID].Add(li.Quantity)
			price[li.ItemID] = li.UnitPrice
		}

		now := time.Now()
		ret = &entity.POSReturn{
			ID:            uuid.New().String(),
			TransactionID: t.ID,
			RefundMethod:  in.RefundMethod,
			Reason:        in.Reason,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}
		refund := decimal.Zero
		for _, l := range in.Lines {
			soldQty, wasSold := sold[l.ItemID]
			if !wasSold {
				return domain.ErrInvalidInput
			}
			// No se puede devolver más de lo vendido, acumulando devoluciones previas.
			if returned[l.ItemID].Add(l.Quantity).GreaterThan(soldQty) {
				return domain.ErrInvalidInput
			}
			returned[l.ItemID] = returned[l.ItemID].Add(l.Quantity)
			refund = refund.Add(l.Quantity.Mul(price[l.ItemID]))
			ret.Items = append(ret.Items, entity.ReturnItem{
				ID:        uuid.New().String(),
				ReturnID:  ret.ID,
				ItemID:    l.ItemID,
				Quantity:  l.Quantity,
				UnitPrice: price[l.ItemID],
			})
			if t.AffectsInventory {
				if err := compensateStockIn(r, l.ItemID, l.Quantity, now, ret.ID, entity.RefReturn, in.Reason, in.UserID); err != nil {
					return err
				}
			}
		}
		ret.RefundAmount = refund
		if err := r.POS.CreateReturn(ret); err != nil {
			return err
		}

		// Si toda línea vendida quedó cubierta, la venta pasa a returned.
		fully := true
		for itemID, qty := range sold {
			if returned[itemID].LessThan(qty) {
				fully = false
				break
			}
		}
		if fully {
			if err := r.POS.UpdateStatus(t.ID, entity.POSStatusReturned); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ItemID)
	}
	o.cache.Invalidate(ids...)
	return ret, nil
}
