// Package reconcile detecta y corrige la deriva entre los agregados
// desnormalizados (cantidad de artículo, saldo de contraparte) y los valores
// autoritativos derivados del diario y del libro de saldos.
//
// La reconciliación es autocuración en segundo plano: nunca bloquea la
// operación en curso y el fallo de una unidad no detiene el barrido.
package reconcile

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Opciones del servicio. Epsilon absorbe redondeo de punto flotante en
// saldos (≈ 1 unidad de moneda); BatchSize acota cada lote del barrido al
// límite de escritura del almacén.
type Options struct {
	Epsilon   decimal.Decimal
	BatchSize int
}

// DefaultOptions valores por defecto: epsilon 1.0, lotes de 500.
func DefaultOptions() Options {
	return Options{Epsilon: decimal.NewFromInt(1), BatchSize: 500}
}

// Report es el resultado agregado de un barrido: los fallos por unidad se
// aíslan y se cuentan, no se propagan.
type Report struct {
	Checked   int `json:"checked"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

// Service recalcula agregados y corrige la deriva.
type Service struct {
	items      repository.ItemRepository
	vendors    repository.VendorRepository
	customers  repository.CustomerRepository
	aggregator *stock.Aggregator
	ledger     *balance.Ledger
	cache      interface{ Invalidate(...string) }
	opts       Options
	log        *logger.Logger
}

// NewService construye el servicio. cache puede ser nil.
func NewService(
	items repository.ItemRepository,
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	aggregator *stock.Aggregator,
	ledger *balance.Ledger,
	cache interface{ Invalidate(...string) },
	opts Options,
	log *logger.Logger,
) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Epsilon.IsZero() {
		opts.Epsilon = decimal.NewFromInt(1)
	}
	return &Service{
		items:      items,
		vendors:    vendors,
		customers:  customers,
		aggregator: aggregator,
		ledger:     ledger,
		cache:      cache,
		opts:       opts,
		log:        log,
	}
}

// ReconcileItem recalcula los agregados del artículo desde el diario y
// sobrescribe los desnormalizados si difieren. Idempotente: una segunda
// pasada sin escrituras intermedias no cambia nada.
func (s *Service) ReconcileItem(itemID string) (corrected bool, err error) {
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil // borrado en medio del barrido: no es un error
	}
	computed, err := s.aggregator.ComputeFromJournal(itemID)
	if err != nil {
		return false, err
	}
	if item.CurrentQuantity.Equal(computed.Quantity) && item.AverageUnitCost.Equal(computed.AverageUnitCost) {
		return false, nil
	}
	if err := s.items.SetAggregates(itemID, computed.Quantity, computed.AverageUnitCost); err != nil {
		return false, err
	}
	if s.cache != nil {
		s.cache.Invalidate(itemID)
	}
	s.log.Info().Str("item_id", itemID).
		Str("stored_qty", item.CurrentQuantity.String()).
		Str("computed_qty", computed.Quantity.String()).
		Str("stored_cost", item.AverageUnitCost.String()).
		Str("computed_cost", computed.AverageUnitCost.String()).
		Msg("deriva de stock corregida")
	return true, nil
}

// ReconcileAllItems barre todos los artículos por lotes acotados.
func (s *Service) ReconcileAllItems(ctx context.Context) (Report, error) {
	var report Report
	for offset := 0; ; offset += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ids, err := s.items.ListIDs(s.opts.BatchSize, offset)
		if err != nil {
			return report, err
		}
		if len(ids) == 0 {
			return report, nil
		}
		for _, id := range ids {
			report.Checked++
			corrected, err := s.ReconcileItem(id)
			if err != nil {
				// El fallo de una unidad no detiene el barrido.
				report.Failed++
				s.log.Error().Err(err).Str("item_id", id).Msg("reconciliación de artículo falló")
				continue
			}
			if corrected {
				report.Corrected++
			}
		}
		if len(ids) < s.opts.BatchSize {
			return report, nil
		}
	}
}

// ReconcileVendor recalcula el saldo del proveedor y lo corrige si la
// diferencia absoluta supera epsilon. Nunca lanza por deriva: corrige y loguea.
func (s *Service) ReconcileVendor(vendorID string) (bool, error) {
	v, err := s.vendors.GetByID(vendorID)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	computed, err := s.ledger.ComputeVendorBalance(vendorID)
	if err != nil {
		return false, err
	}
	return s.correctBalance(entity.PartyVendor, vendorID, v.OutstandingBalance, computed)
}

// ReconcileCustomer recalcula el saldo del cliente, con la misma política.
func (s *Service) ReconcileCustomer(customerID string) (bool, error) {
	c, err := s.customers.GetByID(customerID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	computed, err := s.ledger.ComputeCustomerBalance(customerID)
	if err != nil {
		return false, err
	}
	return s.correctBalance(entity.PartyCustomer, customerID, c.OutstandingBalance, computed)
}

func (s *Service) correctBalance(partyType, id string, stored, computed decimal.Decimal) (bool, error) {
	if stored.Sub(computed).Abs().LessThanOrEqual(s.opts.Epsilon) {
		return false, nil
	}
	var err error
	if partyType == entity.PartyVendor {
		err = s.vendors.SetBalance(id, computed)
	} else {
		err = s.customers.SetBalance(id, computed)
	}
	if err != nil {
		return false, err
	}
	s.log.Info().Str("party_type", partyType).Str("counterparty_id", id).
		Str("stored", stored.String()).Str("computed", computed.String()).
		Msg("deriva de saldo corregida")
	return true, nil
}

// ReconcileAllCounterparties barre proveedores y clientes por lotes.
func (s *Service) ReconcileAllCounterparties(ctx context.Context) (Report, error) {
	var report Report
	if err := s.sweep(ctx, &report, s.vendors.ListIDs, s.ReconcileVendor); err != nil {
		return report, err
	}
	if err := s.sweep(ctx, &report, s.customers.ListIDs, s.ReconcileCustomer); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Service) sweep(ctx context.Context, report *Report, listIDs func(limit, offset int) ([]string, error), reconcile func(string) (bool, error)) error {
	for offset := 0; ; offset += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids, err := listIDs(s.opts.BatchSize, offset)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			report.Checked++
			corrected, err := reconcile(id)
			if err != nil {
				report.Failed++
				s.log.Error().Err(err).Str("counterparty_id", id).Msg("reconciliación de saldo falló")
				continue
			}
			if corrected {
				report.Corrected++
			}
		}
		if len(ids) < s.opts.BatchSize {
			return nil
		}
	}
}

// CheckVendorOpportunistic recibe el saldo recién recalculado por una ruta de
// lectura, lo compara contra el desnormalizado y corrige en segundo plano si
// hay deriva (política de disparo oportunista). Nunca bloquea la lectura.
func (s *Service) CheckVendorOpportunistic(vendorID string, computed decimal.Decimal) {
	go func() {
		v, err := s.vendors.GetByID(vendorID)
		if err != nil || v == nil {
			return
		}
		if _, err := s.correctBalance(entity.PartyVendor, vendorID, v.OutstandingBalance, computed); err != nil {
			s.log.Error().Err(err).Str("vendor_id", vendorID).Msg("corrección oportunista falló")
		}
	}()
}

// CheckCustomerOpportunistic análogo para clientes.
func (s *Service) CheckCustomerOpportunistic(customerID string, computed decimal.Decimal) {
	go func() {
		c, err := s.customers.GetByID(customerID)
		if err != nil || c == nil {
			return
		}
		if _, err := s.correctBalance(entity.PartyCustomer, customerID, c.OutstandingBalance, computed); err != nil {
			s.log.Error().Err(err).Str("customer_id", customerID).Msg("corrección oportunista falló")
		}
	}()
}
