package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. O se aplica todo el evento o nada.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos construye el conjunto de repositorios sobre un Querier (pool o tx).
// Con el pool produce los repos de la ruta degradada offline y de las lecturas.
func NewRepos(q Querier) ledger.Repos {
	return ledger.Repos{
		Items:     NewItemRepository(q),
		Journal:   NewJournalRepository(q),
		Purchases: NewPurchaseRepository(q),
		Vendors:   NewVendorRepository(q),
		Customers: NewCustomerRepository(q),
		Balance:   NewBalanceEntryRepository(q),
		POS:       NewPOSRepository(q),
	}
}
