package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.POSRepository = (*POSRepo)(nil)

const posTxColumns = `id, sequence, subtotal, tax_amount, discount_amount, total_amount, payment_method, amount_tendered, change_given, customer_id, bill_type, status, affects_inventory, affects_accounting, date, created_at, created_by`

// POSRepo implementación del puerto POSRepository sobre PostgreSQL.
type POSRepo struct {
	q Querier
}

// NewPOSRepository construye el adaptador del punto de venta. Pasar pool o tx (Querier).
func NewPOSRepository(q Querier) *POSRepo {
	return &POSRepo{q: q}
}

// CreateTransaction persiste la venta con sus líneas. Sequence lo asigna el
// servidor (DEFAULT nextval) y se devuelve en t.Sequence vía RETURNING.
func (r *POSRepo) CreateTransaction(t *entity.POSTransaction) error {
	query := `
		INSERT INTO pos_transactions (id, subtotal, tax_amount, discount_amount, total_amount, payment_method, amount_tendered, change_given, customer_id, bill_type, status, affects_inventory, affects_accounting, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING sequence`
	err := r.q.QueryRow(context.Background(), query,
		t.ID, t.Subtotal, t.TaxAmount, t.DiscountAmount, t.TotalAmount,
		t.PaymentMethod, t.AmountTendered, t.ChangeGiven, t.CustomerID,
		t.BillType, t.Status, t.AffectsInventory, t.AffectsAccounting,
		t.Date, t.CreatedAt, t.CreatedBy,
	).Scan(&t.Sequence)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert pos transaction: %w", err)
	}

	for i := range t.Items {
		it := &t.Items[i]
		it.TransactionID = t.ID
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO pos_items (id, transaction_id, item_id, item_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.TransactionID, it.ItemID, it.ItemName, it.Quantity, it.UnitPrice, it.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert pos item: %w", err)
		}
	}
	return nil
}

func (r *POSRepo) getTransaction(id string, forUpdate bool) (*entity.POSTransaction, error) {
	query := `SELECT ` + posTxColumns + ` FROM pos_transactions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var t entity.POSTransaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.Sequence, &t.Subtotal, &t.TaxAmount, &t.DiscountAmount, &t.TotalAmount,
		&t.PaymentMethod, &t.AmountTendered, &t.ChangeGiven, &t.CustomerID,
		&t.BillType, &t.Status, &t.AffectsInventory, &t.AffectsAccounting,
		&t.Date, &t.CreatedAt, &t.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pos transaction: %w", err)
	}
	items, err := r.loadItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

// GetTransaction obtiene una venta con sus líneas.
func (r *POSRepo) GetTransaction(id string) (*entity.POSTransaction, error) {
	return r.getTransaction(id, false)
}

// GetTransactionForUpdate bloquea la fila de la venta para que dos
// cancelaciones o devoluciones concurrentes no se apliquen dos veces.
func (r *POSRepo) GetTransactionForUpdate(id string) (*entity.POSTransaction, error) {
	return r.getTransaction(id, true)
}

func (r *POSRepo) loadItems(transactionID string) ([]entity.POSItem, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, transaction_id, item_id, item_name, quantity, unit_price, line_total
		FROM pos_items WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list pos items: %w", err)
	}
	defer rows.Close()
	var items []entity.POSItem
	for rows.Next() {
		var it entity.POSItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ItemID, &it.ItemName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan pos item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListTransactions lista ventas, opcionalmente acotadas por fecha (más recientes primero).
func (r *POSRepo) ListTransactions(from, to *time.Time, limit, offset int) ([]*entity.POSTransaction, error) {
	query := `
		SELECT ` + posTxColumns + ` FROM pos_transactions
		WHERE ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date <= $2)
		ORDER BY date DESC, sequence DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pos transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.POSTransaction
	for rows.Next() {
		var t entity.POSTransaction
		if err := rows.Scan(&t.ID, &t.Sequence, &t.Subtotal, &t.TaxAmount, &t.DiscountAmount,
			&t.TotalAmount, &t.PaymentMethod, &t.AmountTendered, &t.ChangeGiven,
			&t.CustomerID, &t.BillType, &t.Status, &t.AffectsInventory, &t.AffectsAccounting,
			&t.Date, &t.CreatedAt, &t.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan pos transaction: %w", err)
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range list {
		items, err := r.loadItems(t.ID)
		if err != nil {
			return nil, err
		}
		t.Items = items
	}
	return list, nil
}

// UpdateStatus cambia el estado de una venta (único campo mutable).
func (r *POSRepo) UpdateStatus(id, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE pos_transactions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update pos status: %w", err)
	}
	return nil
}

// CreateReturn persiste una devolución con sus líneas.
func (r *POSRepo) CreateReturn(ret *entity.POSReturn) error {
	query := `
		INSERT INTO pos_returns (id, transaction_id, refund_amount, refund_method, reason, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.TransactionID, ret.RefundAmount, ret.RefundMethod, ret.Reason,
		ret.Date, ret.CreatedAt, ret.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert pos return: %w", err)
	}
	for i := range ret.Items {
		it := &ret.Items[i]
		it.ReturnID = ret.ID
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO return_items (id, return_id, item_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.ReturnID, it.ItemID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert return item: %w", err)
		}
	}
	return nil
}

// ListReturnsByTransaction lista las devoluciones de una venta con sus líneas.
func (r *POSRepo) ListReturnsByTransaction(transactionID string) ([]*entity.POSReturn, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, transaction_id, refund_amount, refund_method, reason, date, created_at, created_by
		FROM pos_returns WHERE transaction_id = $1 ORDER BY created_at`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list pos returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.POSReturn
	for rows.Next() {
		var ret entity.POSReturn
		if err := rows.Scan(&ret.ID, &ret.TransactionID, &ret.RefundAmount, &ret.RefundMethod,
			&ret.Reason, &ret.Date, &ret.CreatedAt, &ret.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan pos return: %w", err)
		}
		list = append(list, &ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, ret := range list {
		itemRows, err := r.q.Query(context.Background(), `
			SELECT id, return_id, item_id, quantity, unit_price
			FROM return_items WHERE return_id = $1 ORDER BY id`, ret.ID)
		if err != nil {
			return nil, fmt.Errorf("list return items: %w", err)
		}
		for itemRows.Next() {
			var it entity.ReturnItem
			if err := itemRows.Scan(&it.ID, &it.ReturnID, &it.ItemID, &it.Quantity, &it.UnitPrice); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("scan return item: %w", err)
			}
			ret.Items = append(ret.Items, it)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return nil, err
		}
	}
	return list, nil
}
