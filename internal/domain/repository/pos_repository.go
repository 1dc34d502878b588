package repository

import (
	"time"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// POSRepository define el puerto de persistencia para ventas de mostrador y
// devoluciones. Las ventas nunca se editan: solo cambia Status y las
// reversiones se registran como POSReturn.
type POSRepository interface {
	CreateTransaction(t *entity.POSTransaction) error
	GetTransaction(id string) (*entity.POSTransaction, error)
	// GetTransactionForUpdate bloquea la fila de la venta para que dos
	// cancelaciones/devoluciones concurrentes no se apliquen dos veces.
	GetTransactionForUpdate(id string) (*entity.POSTransaction, error)
	ListTransactions(from, to *time.Time, limit, offset int) ([]*entity.POSTransaction, error)
	UpdateStatus(id, status string) error
	CreateReturn(r *entity.POSReturn) error
	ListReturnsByTransaction(transactionID string) ([]*entity.POSReturn, error)
}

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
}
