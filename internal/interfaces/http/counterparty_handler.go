package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/catalog"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// CounterpartyHandler maneja proveedores y clientes: catálogo, pagos y libro
// de saldos.
type CounterpartyHandler struct {
	uc           *catalog.CounterpartyUseCase
	orchestrator *ledger.Orchestrator
	balances     *balance.Ledger
	entries      repository.BalanceEntryRepository
	reconciler   *reconcile.Service
}

// NewCounterpartyHandler construye el handler de contrapartes. reconciler
// puede ser nil (sin corrección oportunista desde las rutas de lectura).
func NewCounterpartyHandler(
	uc *catalog.CounterpartyUseCase,
	orchestrator *ledger.Orchestrator,
	balances *balance.Ledger,
	entries repository.BalanceEntryRepository,
	reconciler *reconcile.Service,
) *CounterpartyHandler {
	return &CounterpartyHandler{uc: uc, orchestrator: orchestrator, balances: balances, entries: entries, reconciler: reconciler}
}

func parseCounterpartyBody(c *fiber.Ctx) (*dto.CreateCounterpartyRequest, error) {
	var in dto.CreateCounterpartyRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	return &in, nil
}

// CreateVendor godoc
// @Summary      Crear proveedor
// @Tags         vendors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCounterpartyRequest  true  "Datos del proveedor"
// @Success      201   {object}  dto.CounterpartyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/vendors [post]
func (h *CounterpartyHandler) CreateVendor(c *fiber.Ctx) error {
	in, err := parseCounterpartyBody(c)
	if in == nil {
		return err
	}
	out, err := h.uc.CreateVendor(GetUserID(c), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetVendor godoc
// @Summary      Obtener proveedor (saldo desnormalizado)
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.CounterpartyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendors/{id} [get]
func (h *CounterpartyHandler) GetVendor(c *fiber.Ctx) error {
	out, err := h.uc.GetVendor(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListVendors godoc
// @Summary      Listar proveedores
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(50)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.CounterpartyResponse
// @Router       /api/vendors [get]
func (h *CounterpartyHandler) ListVendors(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.uc.ListVendors(limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteVendor godoc
// @Summary      Eliminar proveedor (solo con saldo cero recalculado en el servidor)
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proveedor"
// @Success      204  "Eliminado"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vendors/{id} [delete]
func (h *CounterpartyHandler) DeleteVendor(c *fiber.Ctx) error {
	if err := h.uc.DeleteVendor(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordVendorPayment godoc
// @Summary      Registrar pago a proveedor (asignación FIFO a compras abiertas)
// @Tags         vendors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del proveedor"
// @Param        body  body  dto.RecordPaymentRequest  true  "Monto y método"
// @Success      201   {object}  dto.BalanceEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vendors/{id}/payments [post]
func (h *CounterpartyHandler) RecordVendorPayment(c *fiber.Ctx) error {
	in, perr := parsePaymentBody(c)
	if in == nil {
		return perr
	}
	entry, outcome, err := h.orchestrator.RecordVendorPayment(c.Context(), ledger.PaymentInput{
		CounterpartyID: c.Params("id"),
		Amount:         in.Amount,
		Method:         in.Method,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		Date:           paymentDate(in),
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(balanceEntryResponse(entry, outcome))
}

// VendorLedger godoc
// @Summary      Libro de saldos del proveedor con saldo recalculado
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true  "ID del proveedor"
// @Param        limit   query  int     false "Límite"  default(50)
// @Param        offset  query  int     false "Offset"  default(0)
// @Success      200     {object}  map[string]any
// @Router       /api/vendors/{id}/ledger [get]
func (h *CounterpartyHandler) VendorLedger(c *fiber.Ctx) error {
	id := c.Params("id")
	computed, err := h.balances.ComputeVendorBalance(id)
	if err != nil {
		return respondError(c, err)
	}
	// El saldo autoritativo ya está en mano: si el desnormalizado derivó,
	// la corrección se dispara en segundo plano sin bloquear la lectura.
	if h.reconciler != nil {
		h.reconciler.CheckVendorOpportunistic(id, computed)
	}
	limit, offset := pagination(c)
	entries, err := h.entries.ListByCounterparty(entity.PartyVendor, id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"counterparty_id":  id,
		"computed_balance": computed,
		"entries":          balanceEntryResponses(entries),
	})
}

// CreateCustomer godoc
// @Summary      Crear cliente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCounterpartyRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.CounterpartyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CounterpartyHandler) CreateCustomer(c *fiber.Ctx) error {
	in, err := parseCounterpartyBody(c)
	if in == nil {
		return err
	}
	out, err := h.uc.CreateCustomer(GetUserID(c), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetCustomer godoc
// @Summary      Obtener cliente (saldo desnormalizado)
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CounterpartyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [get]
func (h *CounterpartyHandler) GetCustomer(c *fiber.Ctx) error {
	out, err := h.uc.GetCustomer(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListCustomers godoc
// @Summary      Listar clientes
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(50)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.CounterpartyResponse
// @Router       /api/customers [get]
func (h *CounterpartyHandler) ListCustomers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.uc.ListCustomers(limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteCustomer godoc
// @Summary      Eliminar cliente (solo con saldo cero recalculado en el servidor)
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      204  "Eliminado"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [delete]
func (h *CounterpartyHandler) DeleteCustomer(c *fiber.Ctx) error {
	if err := h.uc.DeleteCustomer(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordCustomerTransaction godoc
// @Summary      Registrar abono o cargo de cliente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del cliente"
// @Param        body  body  dto.RecordPaymentRequest  true  "Monto, método y type (payment|charge)"
// @Success      201   {object}  dto.BalanceEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/transactions [post]
func (h *CounterpartyHandler) RecordCustomerTransaction(c *fiber.Ctx) error {
	in, perr := parsePaymentBody(c)
	if in == nil {
		return perr
	}
	entry, outcome, err := h.orchestrator.RecordCustomerTransaction(c.Context(), ledger.PaymentInput{
		CounterpartyID: c.Params("id"),
		Amount:         in.Amount,
		Method:         in.Method,
		Type:           in.Type,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		Date:           paymentDate(in),
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(balanceEntryResponse(entry, outcome))
}

// CustomerLedger godoc
// @Summary      Libro de saldos del cliente con saldo recalculado
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true  "ID del cliente"
// @Param        limit   query  int     false "Límite"  default(50)
// @Param        offset  query  int     false "Offset"  default(0)
// @Success      200     {object}  map[string]any
// @Router       /api/customers/{id}/ledger [get]
func (h *CounterpartyHandler) CustomerLedger(c *fiber.Ctx) error {
	id := c.Params("id")
	computed, err := h.balances.ComputeCustomerBalance(id)
	if err != nil {
		return respondError(c, err)
	}
	if h.reconciler != nil {
		h.reconciler.CheckCustomerOpportunistic(id, computed)
	}
	limit, offset := pagination(c)
	entries, err := h.entries.ListByCounterparty(entity.PartyCustomer, id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"counterparty_id":  id,
		"computed_balance": computed,
		"entries":          balanceEntryResponses(entries),
	})
}

func parsePaymentBody(c *fiber.Ctx) (*dto.RecordPaymentRequest, error) {
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !in.Amount.IsPositive() {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "amount debe ser mayor que 0"})
	}
	return &in, nil
}

func paymentDate(in *dto.RecordPaymentRequest) time.Time {
	if in.Date != nil {
		return *in.Date
	}
	return time.Now()
}

func balanceEntryResponse(e *entity.BalanceEntry, outcome ledger.Outcome) dto.BalanceEntryResponse {
	return dto.BalanceEntryResponse{
		ID:             e.ID,
		CounterpartyID: e.CounterpartyID,
		Type:           e.Type,
		Amount:         e.Amount,
		Method:         e.Method,
		ReferenceNo:    e.ReferenceNo,
		Date:           e.Date.Format(time.RFC3339),
		Outcome:        outcome.Status,
		PendingID:      outcome.PendingID,
	}
}

func balanceEntryResponses(entries []*entity.BalanceEntry) []dto.BalanceEntryResponse {
	out := make([]dto.BalanceEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.BalanceEntryResponse{
			ID:             e.ID,
			CounterpartyID: e.CounterpartyID,
			Type:           e.Type,
			Amount:         e.Amount,
			Method:         e.Method,
			ReferenceNo:    e.ReferenceNo,
			Date:           e.Date.Format(time.RFC3339),
		})
	}
	return out
}
