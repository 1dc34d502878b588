package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// CounterpartyUseCase casos de uso CRUD para proveedores y clientes.
// El borrado se bloquea mientras el saldo autoritativo (recalculado en el
// servidor, no el desnormalizado) supere epsilon.
type CounterpartyUseCase struct {
	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	ledger    *balance.Ledger
	epsilon   decimal.Decimal
}

// NewCounterpartyUseCase construye el caso de uso.
func NewCounterpartyUseCase(
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	ledger *balance.Ledger,
	epsilon decimal.Decimal,
) *CounterpartyUseCase {
	if epsilon.IsZero() {
		epsilon = decimal.NewFromInt(1)
	}
	return &CounterpartyUseCase{vendors: vendors, customers: customers, ledger: ledger, epsilon: epsilon}
}

// CreateVendor crea un proveedor con saldo 0.
func (uc *CounterpartyUseCase) CreateVendor(userID string, in dto.CreateCounterpartyRequest) (*dto.CounterpartyResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	v := &entity.Vendor{
		ID:                 uuid.New().String(),
		Name:               in.Name,
		Phone:              in.Phone,
		Email:              in.Email,
		Address:            in.Address,
		TaxID:              in.TaxID,
		OutstandingBalance: decimal.Zero,
		TotalPurchases:     decimal.Zero,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          userID,
	}
	if err := uc.vendors.Create(v); err != nil {
		return nil, err
	}
	return vendorResponse(v), nil
}

// GetVendor obtiene un proveedor por ID.
func (uc *CounterpartyUseCase) GetVendor(id string) (*dto.CounterpartyResponse, error) {
	v, err := uc.vendors.GetByID(id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrVendorNotFound
	}
	return vendorResponse(v), nil
}

// ListVendors lista proveedores con paginación.
func (uc *CounterpartyUseCase) ListVendors(limit, offset int) ([]*dto.CounterpartyResponse, error) {
	list, err := uc.vendors.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CounterpartyResponse, 0, len(list))
	for _, v := range list {
		out = append(out, vendorResponse(v))
	}
	return out, nil
}

// DeleteVendor borra un proveedor solo si su saldo recalculado en el
// servidor queda dentro de epsilon de cero.
func (uc *CounterpartyUseCase) DeleteVendor(id string) error {
	v, err := uc.vendors.GetByID(id)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.ErrVendorNotFound
	}
	computed, err := uc.ledger.ComputeVendorBalance(id)
	if err != nil {
		return err
	}
	if computed.Abs().GreaterThan(uc.epsilon) {
		return &domain.BalanceNotZeroError{CounterpartyID: id, Balance: computed}
	}
	return uc.vendors.Delete(id)
}

// CreateCustomer crea un cliente con saldo 0.
func (uc *CounterpartyUseCase) CreateCustomer(userID string, in dto.CreateCounterpartyRequest) (*dto.CounterpartyResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &entity.Customer{
		ID:                 uuid.New().String(),
		Name:               in.Name,
		Phone:              in.Phone,
		Email:              in.Email,
		Address:            in.Address,
		OutstandingBalance: decimal.Zero,
		TotalPurchases:     decimal.Zero,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          userID,
	}
	if err := uc.customers.Create(c); err != nil {
		return nil, err
	}
	return customerResponse(c), nil
}

// GetCustomer obtiene un cliente por ID.
func (uc *CounterpartyUseCase) GetCustomer(id string) (*dto.CounterpartyResponse, error) {
	c, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return customerResponse(c), nil
}

// ListCustomers lista clientes con paginación.
func (uc *CounterpartyUseCase) ListCustomers(limit, offset int) ([]*dto.CounterpartyResponse, error) {
	list, err := uc.customers.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CounterpartyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, customerResponse(c))
	}
	return out, nil
}

// DeleteCustomer borra un cliente con la misma verificación de saldo.
func (uc *CounterpartyUseCase) DeleteCustomer(id string) error {
	c, err := uc.customers.GetByID(id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrCustomerNotFound
	}
	computed, err := uc.ledger.ComputeCustomerBalance(id)
	if err != nil {
		return err
	}
	if computed.Abs().GreaterThan(uc.epsilon) {
		return &domain.BalanceNotZeroError{CounterpartyID: id, Balance: computed}
	}
	return uc.customers.Delete(id)
}

func vendorResponse(v *entity.Vendor) *dto.CounterpartyResponse {
	return &dto.CounterpartyResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Phone:              v.Phone,
		Email:              v.Email,
		Address:            v.Address,
		TaxID:              v.TaxID,
		OutstandingBalance: v.OutstandingBalance,
		TotalPurchases:     v.TotalPurchases,
		Active:             v.Active,
	}
}

func customerResponse(c *entity.Customer) *dto.CounterpartyResponse {
	return &dto.CounterpartyResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Phone:              c.Phone,
		Email:              c.Email,
		Address:            c.Address,
		OutstandingBalance: c.OutstandingBalance,
		TotalPurchases:     c.TotalPurchases,
		Active:             c.Active,
	}
}
