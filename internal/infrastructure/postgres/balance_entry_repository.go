package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.BalanceEntryRepository = (*BalanceEntryRepo)(nil)

const balanceEntryColumns = `id, party_type, counterparty_id, type, amount, method, reference_no, reference_id, notes, date, created_at, created_by`

// BalanceEntryRepo implementación del libro de saldos sobre PostgreSQL.
// Append-only: solo INSERT y SELECT.
type BalanceEntryRepo struct {
	q Querier
}

// NewBalanceEntryRepository construye el adaptador del libro de saldos. Pasar pool o tx (Querier).
func NewBalanceEntryRepository(q Querier) *BalanceEntryRepo {
	return &BalanceEntryRepo{q: q}
}

// Create persiste un asiento del libro de saldos.
func (r *BalanceEntryRepo) Create(e *entity.BalanceEntry) error {
	query := `
		INSERT INTO balance_entries (` + balanceEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.PartyType, e.CounterpartyID, e.Type, e.Amount, e.Method,
		e.ReferenceNo, e.ReferenceID, e.Notes, e.Date, e.CreatedAt, e.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert balance entry: %w", err)
	}
	return nil
}

// ListByCounterparty lista asientos de una contraparte (más recientes primero).
func (r *BalanceEntryRepo) ListByCounterparty(partyType, counterpartyID string, limit, offset int) ([]*entity.BalanceEntry, error) {
	query := `
		SELECT ` + balanceEntryColumns + ` FROM balance_entries
		WHERE party_type = $1 AND counterparty_id = $2
		ORDER BY date DESC, created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, partyType, counterpartyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list balance entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.BalanceEntry
	for rows.Next() {
		var e entity.BalanceEntry
		if err := rows.Scan(&e.ID, &e.PartyType, &e.CounterpartyID, &e.Type, &e.Amount,
			&e.Method, &e.ReferenceNo, &e.ReferenceID, &e.Notes, &e.Date,
			&e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan balance entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByCounterparty devuelve la suma con signo de los asientos de la
// contraparte (cargos positivos, pagos negativos), resuelta por el servidor.
func (r *BalanceEntryRepo) SumByCounterparty(partyType, counterpartyID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'payment' THEN -amount ELSE amount END), 0)
		FROM balance_entries WHERE party_type = $1 AND counterparty_id = $2`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, partyType, counterpartyID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum balance entries: %w", err)
	}
	return sum, nil
}
