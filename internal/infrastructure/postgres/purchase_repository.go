package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, sequence, vendor_id, subtotal, tax_amount, discount_amount, total_amount, payment_status, paid_amount, credit_amount, purchase_date, notes, created_at, created_by`

// PurchaseRepo implementación del puerto PurchaseRepository sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste la compra con sus líneas. Sequence lo asigna el servidor
// (DEFAULT nextval) y se devuelve en p.Sequence vía RETURNING.
func (r *PurchaseRepo) Create(p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, vendor_id, subtotal, tax_amount, discount_amount, total_amount, payment_status, paid_amount, credit_amount, purchase_date, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING sequence`
	err := r.q.QueryRow(context.Background(), query,
		p.ID, p.VendorID, p.Subtotal, p.TaxAmount, p.DiscountAmount, p.TotalAmount,
		p.PaymentStatus, p.PaidAmount, p.CreditAmount, p.PurchaseDate, p.Notes,
		p.CreatedAt, p.CreatedBy,
	).Scan(&p.Sequence)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}

	for i := range p.Items {
		it := &p.Items[i]
		it.PurchaseID = p.ID
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO purchase_items (id, purchase_id, item_id, quantity, purchase_rate, sale_rate, expiry_date, shelf_loc)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, it.PurchaseID, it.ItemID, it.Quantity, it.PurchaseRate, it.SaleRate, it.ExpiryDate, it.ShelfLoc,
		)
		if err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una compra con sus líneas.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	var p entity.Purchase
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Sequence, &p.VendorID, &p.Subtotal, &p.TaxAmount, &p.DiscountAmount,
		&p.TotalAmount, &p.PaymentStatus, &p.PaidAmount, &p.CreditAmount,
		&p.PurchaseDate, &p.Notes, &p.CreatedAt, &p.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	items, err := r.loadItems(p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *PurchaseRepo) loadItems(purchaseID string) ([]entity.PurchaseItem, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, purchase_id, item_id, quantity, purchase_rate, sale_rate, expiry_date, shelf_loc
		FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ItemID, &it.Quantity,
			&it.PurchaseRate, &it.SaleRate, &it.ExpiryDate, &it.ShelfLoc); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PurchaseRepo) collect(rows pgx.Rows) ([]*entity.Purchase, error) {
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.Sequence, &p.VendorID, &p.Subtotal, &p.TaxAmount,
			&p.DiscountAmount, &p.TotalAmount, &p.PaymentStatus, &p.PaidAmount,
			&p.CreditAmount, &p.PurchaseDate, &p.Notes, &p.CreatedAt, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Cargar líneas fuera del cursor: pgx no soporta queries anidadas sobre
	// la misma conexión mientras rows está abierto.
	for _, p := range list {
		items, err := r.loadItems(p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return list, nil
}

// List lista compras con paginación (más recientes primero).
func (r *PurchaseRepo) List(limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases ORDER BY purchase_date DESC, sequence DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return r.collect(rows)
}

// ListByVendor lista compras de un proveedor con paginación.
func (r *PurchaseRepo) ListByVendor(vendorID string, limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE vendor_id = $1 ORDER BY purchase_date DESC, sequence DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, vendorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases by vendor: %w", err)
	}
	return r.collect(rows)
}

// ListOpenByVendor devuelve compras unpaid/partial del proveedor en orden de
// fecha ascendente (asignación FIFO de pagos).
func (r *PurchaseRepo) ListOpenByVendor(vendorID string) ([]*entity.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + ` FROM purchases
		WHERE vendor_id = $1 AND payment_status IN ('unpaid', 'partial')
		ORDER BY purchase_date ASC, sequence ASC`
	rows, err := r.q.Query(context.Background(), query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list open purchases: %w", err)
	}
	return r.collect(rows)
}

// UpdatePayment avanza el estado de pago de una compra. Nunca toca credit_amount.
func (r *PurchaseRepo) UpdatePayment(id string, paidAmount decimal.Decimal, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE purchases SET paid_amount = $2, payment_status = $3 WHERE id = $1`,
		id, paidAmount, status,
	)
	if err != nil {
		return fmt.Errorf("update purchase payment: %w", err)
	}
	return nil
}

// SumCreditByVendor suma credit_amount de todas las compras del proveedor
// (lado positivo del saldo autoritativo).
func (r *PurchaseRepo) SumCreditByVendor(vendorID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(credit_amount), 0) FROM purchases WHERE vendor_id = $1`, vendorID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum credit by vendor: %w", err)
	}
	return sum, nil
}
