package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// CancelSale cancela una venta completada: crea asientos stock_in de
// compensación por cada línea original y pasa el estado a cancelled.
// La venta original nunca se edita ni se borra. Solo es válida desde
// "completed"; cancelled/returned/voided son estados terminales.
func (o *Orchestrator) CancelSale(ctx context.Context, transactionID, reason, userID string) (*entity.POSTransaction, error) {
	if transactionID == "" {
		return nil, domain.ErrInvalidInput
	}
	var cancelled *entity.POSTransaction
	err := o.txRunner.Run(ctx, func(r Repos) error {
		// Fila bloqueada: dos cancelaciones concurrentes no compensan doble.
		t, err := r.POS.GetTransactionForUpdate(transactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.POSStatusCompleted {
			return &domain.NotCancellableError{TransactionID: t.ID, Status: t.Status}
		}
		now := time.Now()
		if t.AffectsInventory {
			for _, line := range t.Items {
				if err := compensateStockIn(r, line.ItemID, line.Quantity, now, t.ID, entity.RefSale, reason, userID); err != nil {
					return err
				}
			}
		}
		if err := r.POS.UpdateStatus(t.ID, entity.POSStatusCancelled); err != nil {
			return err
		}
		t.Status = entity.POSStatusCancelled
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cancelled.Items))
	for _, line := range cancelled.Items {
		ids = append(ids, line.ItemID)
	}
	o.cache.Invalidate(ids...)
	o.log.Info().Str("transaction_id", transactionID).Str("reason", reason).
		Msg("venta cancelada con asientos de compensación")
	return cancelled, nil
}

// compensateStockIn crea el asiento stock_in que revierte una salida previa
// y recalcula los agregados del artículo. El precio unitario es el costo
// promedio vigente del artículo, no el precio de venta: así la entrada de
// compensación no distorsiona el costo promedio de por vida.
func compensateStockIn(r Repos, itemID string, qty decimal.Decimal, now time.Time, refID, refType, reason, userID string) error {
	item, err := r.Items.GetForUpdate(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}
	entry := &entity.JournalEntry{
		ID:            uuid.New().String(),
		ItemID:        itemID,
		Direction:     entity.DirectionStockIn,
		Quantity:      qty,
		UnitPrice:     item.AverageUnitCost,
		TotalValue:    qty.Mul(item.AverageUnitCost),
		Date:          now,
		Counterparty:  reason,
		ReferenceID:   refID,
		ReferenceType: refType,
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := r.Journal.Create(entry); err != nil {
		return err
	}
	return refreshItemAggregates(r, itemID)
}
