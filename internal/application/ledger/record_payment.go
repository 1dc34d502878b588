package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// PaymentInput entrada para pagos a proveedor y transacciones de cliente.
// Type solo aplica a clientes: payment (abono) o charge (cargo manual).
type PaymentInput struct {
	CounterpartyID string
	Amount         decimal.Decimal
	Method         string
	Type           string
	ReferenceNo    string
	Notes          string
	Date           time.Time
	UserID         string
}

// RecordVendorPayment registra un pago a proveedor: crea el asiento en el
// libro, reduce el saldo del proveedor y asigna el pago FIFO a las compras
// abiertas (unpaid -> partial -> paid; PaidAmount solo avanza).
func (o *Orchestrator) RecordVendorPayment(ctx context.Context, in PaymentInput) (*entity.BalanceEntry, Outcome, error) {
	if in.CounterpartyID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	entry := buildBalanceEntry(entity.PartyVendor, entity.BalanceEntryPayment, in)
	err := o.txRunner.Run(ctx, func(r Repos) error {
		// Fila del proveedor bloqueada: serializa la asignación FIFO.
		vendor, err := r.Vendors.GetForUpdate(in.CounterpartyID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return domain.ErrVendorNotFound
		}
		if err := r.Balance.Create(entry); err != nil {
			return err
		}
		if err := r.Vendors.AdjustBalance(vendor.ID, in.Amount.Neg(), decimal.Zero); err != nil {
			return err
		}
		return allocatePaymentFIFO(r, vendor.ID, in.Amount, o)
	})
	if err != nil {
		if out, ok := o.deferOffline(EventVendorPayment, in, err); ok {
			return nil, out, nil
		}
		return nil, Outcome{}, err
	}
	return entry, committed(), nil
}

// RecordCustomerTransaction registra un abono (payment) o un cargo manual
// (charge) de un cliente y ajusta su saldo en la misma transacción.
func (o *Orchestrator) RecordCustomerTransaction(ctx context.Context, in PaymentInput) (*entity.BalanceEntry, Outcome, error) {
	if in.CounterpartyID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	if in.Type != entity.BalanceEntryPayment && in.Type != entity.BalanceEntryCharge {
		return nil, Outcome{}, domain.ErrInvalidInput
	}
	entry := buildBalanceEntry(entity.PartyCustomer, in.Type, in)
	err := o.txRunner.Run(ctx, func(r Repos) error {
		customer, err := r.Customers.GetForUpdate(in.CounterpartyID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		if err := r.Balance.Create(entry); err != nil {
			return err
		}
		return r.Customers.AdjustBalance(customer.ID, entry.SignedAmount(), decimal.Zero)
	})
	if err != nil {
		if out, ok := o.deferOffline(EventCustomerTransaction, in, err); ok {
			return nil, out, nil
		}
		return nil, Outcome{}, err
	}
	return entry, committed(), nil
}

func buildBalanceEntry(partyType, entryType string, in PaymentInput) *entity.BalanceEntry {
	now := time.Now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	return &entity.BalanceEntry{
		ID:             uuid.New().String(),
		PartyType:      partyType,
		CounterpartyID: in.CounterpartyID,
		Type:           entryType,
		Amount:         in.Amount,
		Method:         in.Method,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		Date:           date,
		CreatedAt:      now,
		CreatedBy:      in.UserID,
	}
}

// allocatePaymentFIFO reparte un pago entre las compras abiertas del
// proveedor en orden de fecha. Solo mueve PaidAmount/PaymentStatus; el
// CreditAmount de cada compra queda intacto (es lo que suma el saldo
// autoritativo). Un excedente deja el saldo negativo: sobrepago, se reporta.
func allocatePaymentFIFO(r Repos, vendorID string, amount decimal.Decimal, o *Orchestrator) error {
	open, err := r.Purchases.ListOpenByVendor(vendorID)
	if err != nil {
		return err
	}
	remaining := amount
	for _, p := range open {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		pending := p.PendingAmount()
		if !pending.GreaterThan(decimal.Zero) {
			continue
		}
		applied := decimal.Min(pending, remaining)
		newPaid := p.PaidAmount.Add(applied)
		status := entity.PaymentStatusPartial
		if newPaid.GreaterThanOrEqual(p.TotalAmount) {
			status = entity.PaymentStatusPaid
		}
		if err := r.Purchases.UpdatePayment(p.ID, newPaid, status); err != nil {
			return err
		}
		remaining = remaining.Sub(applied)
	}
	if remaining.GreaterThan(decimal.Zero) {
		o.log.Warn().Str("vendor_id", vendorID).Str("excess", remaining.String()).
			Msg("pago excede las compras abiertas del proveedor (posible sobrepago)")
	}
	return nil
}
