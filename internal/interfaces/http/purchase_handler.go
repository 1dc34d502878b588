package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// PurchaseHandler maneja las compras a proveedor.
type PurchaseHandler struct {
	orchestrator *ledger.Orchestrator
	purchases    repository.PurchaseRepository
}

// NewPurchaseHandler construye el handler de compras.
func NewPurchaseHandler(orchestrator *ledger.Orchestrator, purchases repository.PurchaseRepository) *PurchaseHandler {
	return &PurchaseHandler{orchestrator: orchestrator, purchases: purchases}
}

// Create godoc
// @Summary      Registrar compra a proveedor (entrada de stock + crédito)
// @Description  Crea la compra, asienta stock_in por línea, recalcula el costo
// @Description  promedio y aumenta el saldo del proveedor; todo en una
// @Description  transacción. Sin conectividad, el evento queda encolado y
// @Description  outcome es deferred_offline.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordPurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.VendorID == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "vendor_id y lines son requeridos"})
	}
	lines := make([]ledger.PurchaseLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.PurchaseLine{
			ItemID:       l.ItemID,
			Quantity:     l.Quantity,
			PurchaseRate: l.PurchaseRate,
			SaleRate:     l.SaleRate,
			ExpiryDate:   l.ExpiryDate,
			ShelfLoc:     l.ShelfLoc,
		})
	}
	purchaseDate := time.Now()
	if in.PurchaseDate != nil {
		purchaseDate = *in.PurchaseDate
	}
	purchase, outcome, err := h.orchestrator.RecordPurchase(c.Context(), ledger.PurchaseInput{
		VendorID:       in.VendorID,
		Lines:          lines,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		PaidAmount:     in.PaidAmount,
		PurchaseDate:   purchaseDate,
		Notes:          in.Notes,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchaseResponse(purchase, outcome))
}

// GetByID godoc
// @Summary      Obtener compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.purchases.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "compra no encontrada"})
	}
	return c.JSON(purchaseResponse(p, ledger.Outcome{Status: ledger.StatusCommitted}))
}

// List godoc
// @Summary      Listar compras
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        vendor_id  query  string  false  "Filtrar por proveedor"
// @Param        limit      query  int     false  "Límite"   default(50)
// @Param        offset     query  int     false  "Offset"   default(0)
// @Success      200        {array}  dto.PurchaseResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	var (
		list []*entity.Purchase
		err  error
	)
	if vendorID := c.Query("vendor_id"); vendorID != "" {
		list, err = h.purchases.ListByVendor(vendorID, limit, offset)
	} else {
		list, err = h.purchases.List(limit, offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, purchaseResponse(p, ledger.Outcome{Status: ledger.StatusCommitted}))
	}
	return c.JSON(out)
}

func purchaseResponse(p *entity.Purchase, outcome ledger.Outcome) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:            p.ID,
		Sequence:      p.Sequence,
		VendorID:      p.VendorID,
		Subtotal:      p.Subtotal,
		TaxAmount:     p.TaxAmount,
		Discount:      p.DiscountAmount,
		TotalAmount:   p.TotalAmount,
		PaymentStatus: p.PaymentStatus,
		PaidAmount:    p.PaidAmount,
		PendingAmount: p.PendingAmount(),
		PurchaseDate:  p.PurchaseDate.Format(time.RFC3339),
		Outcome:       outcome.Status,
		PendingID:     outcome.PendingID,
	}
}
