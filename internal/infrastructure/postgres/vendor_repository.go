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

var _ repository.VendorRepository = (*VendorRepo)(nil)

const vendorColumns = `id, name, phone, email, address, tax_id, outstanding_balance, total_purchases, active, created_at, updated_at, created_by`

// VendorRepo implementación del puerto VendorRepository sobre PostgreSQL.
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador de proveedores. Pasar pool o tx (Querier).
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

func scanVendor(row pgx.Row) (*entity.Vendor, error) {
	var v entity.Vendor
	err := row.Scan(
		&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.TaxID,
		&v.OutstandingBalance, &v.TotalPurchases, &v.Active,
		&v.CreatedAt, &v.UpdatedAt, &v.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste un proveedor.
func (r *VendorRepo) Create(v *entity.Vendor) error {
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.Name, v.Phone, v.Email, v.Address, v.TaxID,
		v.OutstandingBalance, v.TotalPurchases, v.Active,
		v.CreatedAt, v.UpdatedAt, v.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID.
func (r *VendorRepo) GetByID(id string) (*entity.Vendor, error) {
	v, err := scanVendor(r.q.QueryRow(context.Background(),
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

// GetForUpdate bloquea la fila del proveedor (serializa la asignación FIFO de
// pagos a compras abiertas).
func (r *VendorRepo) GetForUpdate(id string) (*entity.Vendor, error) {
	v, err := scanVendor(r.q.QueryRow(context.Background(),
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor for update: %w", err)
	}
	return v, nil
}

// List lista proveedores activos con paginación.
func (r *VendorRepo) List(limit, offset int) ([]*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE active ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vendor
	for rows.Next() {
		var v entity.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.TaxID,
			&v.OutstandingBalance, &v.TotalPurchases, &v.Active,
			&v.CreatedAt, &v.UpdatedAt, &v.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// ListIDs devuelve solo los IDs (barrido de reconciliación), por lotes.
func (r *VendorRepo) ListIDs(limit, offset int) ([]string, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id FROM vendors ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vendor ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vendor id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update actualiza los datos de contacto. No toca los saldos.
func (r *VendorRepo) Update(v *entity.Vendor) error {
	query := `
		UPDATE vendors SET name = $2, phone = $3, email = $4, address = $5, tax_id = $6, active = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.Name, v.Phone, v.Email, v.Address, v.TaxID, v.Active, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	return nil
}

// Delete elimina un proveedor. El caso de uso exige saldo cero antes de llamar.
func (r *VendorRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}

// AdjustBalance aplica deltas atómicos sobre los agregados desnormalizados.
func (r *VendorRepo) AdjustBalance(id string, balanceDelta, totalPurchasesDelta decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE vendors
		SET outstanding_balance = outstanding_balance + $2,
		    total_purchases = total_purchases + $3,
		    updated_at = now()
		WHERE id = $1`,
		id, balanceDelta, totalPurchasesDelta,
	)
	if err != nil {
		return fmt.Errorf("adjust vendor balance: %w", err)
	}
	return nil
}

// SetBalance sobrescribe el saldo desnormalizado (solo Reconciliación).
func (r *VendorRepo) SetBalance(id string, balance decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE vendors SET outstanding_balance = $2, updated_at = now() WHERE id = $1`,
		id, balance,
	)
	if err != nil {
		return fmt.Errorf("set vendor balance: %w", err)
	}
	return nil
}
