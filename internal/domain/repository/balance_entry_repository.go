package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// BalanceEntryRepository define el puerto del libro de saldos (pagos a
// proveedores, abonos y cargos de clientes). Append-only.
type BalanceEntryRepository interface {
	Create(e *entity.BalanceEntry) error
	ListByCounterparty(partyType, counterpartyID string, limit, offset int) ([]*entity.BalanceEntry, error)
	// SumByCounterparty devuelve la suma con signo de los asientos de la
	// contraparte (cargos positivos, pagos negativos), resuelta en el almacén.
	SumByCounterparty(partyType, counterpartyID string) (decimal.Decimal, error)
}
