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

var _ repository.JournalRepository = (*JournalRepo)(nil)

const journalColumns = `id, item_id, direction, quantity, unit_price, total_value, date, counterparty, reference_id, reference_type, created_at, created_by`

// JournalRepo implementación del diario de movimientos sobre PostgreSQL.
// Append-only: solo INSERT y SELECT.
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador del diario. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

// Create persiste un asiento del diario.
func (r *JournalRepo) Create(e *entity.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.ItemID, e.Direction, e.Quantity, e.UnitPrice, e.TotalValue,
		e.Date, e.Counterparty, e.ReferenceID, e.ReferenceType, e.CreatedAt, e.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *JournalRepo) GetByID(id string) (*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE id = $1`
	var e entity.JournalEntry
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.ItemID, &e.Direction, &e.Quantity, &e.UnitPrice, &e.TotalValue,
		&e.Date, &e.Counterparty, &e.ReferenceID, &e.ReferenceType, &e.CreatedAt, &e.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return &e, nil
}

// ListByItem lista los asientos de un artículo, opcionalmente acotados por fecha.
func (r *JournalRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + ` FROM journal_entries
		WHERE item_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC, created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, itemID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list journal by item: %w", err)
	}
	return collectEntries(rows)
}

// ListByReference lista los asientos originados por un documento (compra, venta, devolución).
func (r *JournalRepo) ListByReference(referenceID string) ([]*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE reference_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list journal by reference: %w", err)
	}
	return collectEntries(rows)
}

// List lista asientos del diario completo, opcionalmente acotados por fecha.
func (r *JournalRepo) List(from, to *time.Time, limit, offset int) ([]*entity.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + ` FROM journal_entries
		WHERE ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date <= $2)
		ORDER BY date DESC, created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*entity.JournalEntry, error) {
	defer rows.Close()
	var list []*entity.JournalEntry
	for rows.Next() {
		var e entity.JournalEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Direction, &e.Quantity, &e.UnitPrice, &e.TotalValue,
			&e.Date, &e.Counterparty, &e.ReferenceID, &e.ReferenceType, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByItem agrega el diario completo de un artículo en una sola consulta:
// cantidad con signo, y cantidad/valor total de entradas para el costo promedio.
func (r *JournalRepo) SumByItem(itemID string) (repository.JournalSums, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'stock_in' THEN quantity ELSE -quantity END), 0),
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'stock_in'), 0),
			COALESCE(SUM(total_value) FILTER (WHERE direction = 'stock_in'), 0)
		FROM journal_entries WHERE item_id = $1`
	var sums repository.JournalSums
	err := r.q.QueryRow(context.Background(), query, itemID).Scan(
		&sums.Quantity, &sums.StockInQty, &sums.StockInValue,
	)
	if err != nil {
		return repository.JournalSums{}, fmt.Errorf("sum journal by item: %w", err)
	}
	return sums, nil
}

// ExistsByItem indica si el artículo tiene asientos (bloquea su borrado).
func (r *JournalRepo) ExistsByItem(itemID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM journal_entries WHERE item_id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("journal exists by item: %w", err)
	}
	return exists, nil
}
