package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
)

// ReconcileHandler expone la reconciliación bajo demanda (solo admin).
type ReconcileHandler struct {
	svc *reconcile.Service
}

// NewReconcileHandler construye el handler de reconciliación.
func NewReconcileHandler(svc *reconcile.Service) *ReconcileHandler {
	return &ReconcileHandler{svc: svc}
}

// Items godoc
// @Summary      Reconciliar todos los artículos contra el diario
// @Description  Recalcula cantidad y costo promedio desde journal_entries y
// @Description  corrige los campos desnormalizados que derivaron. Idempotente.
// @Tags         reconcile
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  reconcile.Report
// @Router       /api/reconcile/items [post]
func (h *ReconcileHandler) Items(c *fiber.Ctx) error {
	report, err := h.svc.ReconcileAllItems(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Item godoc
// @Summary      Reconciliar un artículo
// @Tags         reconcile
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del artículo"
// @Success      200  {object}  map[string]bool
// @Router       /api/reconcile/items/{id} [post]
func (h *ReconcileHandler) Item(c *fiber.Ctx) error {
	corrected, err := h.svc.ReconcileItem(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"corrected": corrected})
}

// Counterparties godoc
// @Summary      Reconciliar saldos de proveedores y clientes
// @Description  Recalcula cada saldo desde compras + libro de saldos y corrige
// @Description  las diferencias que superan el epsilon configurado.
// @Tags         reconcile
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  reconcile.Report
// @Router       /api/reconcile/counterparties [post]
func (h *ReconcileHandler) Counterparties(c *fiber.Ctx) error {
	report, err := h.svc.ReconcileAllCounterparties(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
