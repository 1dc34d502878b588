package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// POSHandler maneja ventas de mostrador, cancelaciones y devoluciones.
type POSHandler struct {
	orchestrator *ledger.Orchestrator
	pos          repository.POSRepository
}

// NewPOSHandler construye el handler del punto de venta.
func NewPOSHandler(orchestrator *ledger.Orchestrator, pos repository.POSRepository) *POSHandler {
	return &POSHandler{orchestrator: orchestrator, pos: pos}
}

// CreateSale godoc
// @Summary      Registrar venta de mostrador
// @Description  Verifica stock línea a línea con la fila bloqueada, asienta
// @Description  stock_out, y registra el cargo a crédito si aplica; todo en
// @Description  una transacción. Solo se difiere offline si el cajero mandó
// @Description  allow_offline=true.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con available en details"
// @Router       /api/pos/sales [post]
func (h *POSHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lines es requerido"})
	}
	if in.BillType == "" {
		in.BillType = entity.BillTypeSale
	}
	lines := make([]ledger.CartLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.CartLine{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	sale, outcome, err := h.orchestrator.RecordSale(c.Context(), ledger.SaleInput{
		Lines:          lines,
		PaymentMethod:  in.PaymentMethod,
		CustomerID:     in.CustomerID,
		BillType:       in.BillType,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		AmountTendered: in.AmountTendered,
		SaleDate:       time.Now(),
		UserID:         GetUserID(c),
		AllowOffline:   in.AllowOffline,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saleResponse(sale, outcome))
}

// GetSale godoc
// @Summary      Obtener venta
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id} [get]
func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	t, err := h.pos.GetTransaction(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	}
	return c.JSON(saleResponse(t, ledger.Outcome{Status: ledger.StatusCommitted}))
}

// ListSales godoc
// @Summary      Listar ventas
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Límite"   default(50)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {array}  dto.SaleResponse
// @Router       /api/pos/sales [get]
func (h *POSHandler) ListSales(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	from, to, err := dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser RFC3339"})
	}
	list, err := h.pos.ListTransactions(from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, t := range list {
		out = append(out, saleResponse(t, ledger.Outcome{Status: ledger.StatusCommitted}))
	}
	return c.JSON(out)
}

// CancelSale godoc
// @Summary      Cancelar venta (reversión de inventario por compensación)
// @Description  Solo desde completed. Asienta stock_in de compensación por
// @Description  cada línea al costo promedio vigente y marca cancelled. La
// @Description  venta nunca se edita ni se borra.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  true  "Motivo"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "NOT_CANCELLABLE"
// @Router       /api/pos/sales/{id}/cancel [post]
func (h *POSHandler) CancelSale(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.orchestrator.CancelSale(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saleResponse(t, ledger.Outcome{Status: ledger.StatusCommitted}))
}

// CreateReturn godoc
// @Summary      Registrar devolución parcial o total
// @Description  Valida contra lo vendido menos lo ya devuelto, asienta
// @Description  stock_in por línea y calcula el reembolso al precio original
// @Description  de la venta. Marca returned si la venta quedó cubierta.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta original"
// @Param        body  body  dto.ProcessReturnRequest  true  "Líneas devueltas"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id}/returns [post]
func (h *POSHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.ProcessReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lines es requerido"})
	}
	lines := make([]ledger.ReturnLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.ReturnLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	ret, err := h.orchestrator.ProcessReturn(c.Context(), ledger.ReturnInput{
		TransactionID: c.Params("id"),
		Lines:         lines,
		RefundMethod:  in.RefundMethod,
		Reason:        in.Reason,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReturnResponse{
		ID:            ret.ID,
		TransactionID: ret.TransactionID,
		RefundAmount:  ret.RefundAmount,
		RefundMethod:  ret.RefundMethod,
		Reason:        ret.Reason,
		Date:          ret.Date.Format(time.RFC3339),
	})
}

func saleResponse(t *entity.POSTransaction, outcome ledger.Outcome) dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(t.Items))
	for _, it := range t.Items {
		lines = append(lines, dto.SaleLineResponse{
			ItemID:    it.ItemID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return dto.SaleResponse{
		ID:             t.ID,
		Sequence:       t.Sequence,
		Lines:          lines,
		Subtotal:       t.Subtotal,
		TaxAmount:      t.TaxAmount,
		Discount:       t.DiscountAmount,
		TotalAmount:    t.TotalAmount,
		PaymentMethod:  t.PaymentMethod,
		AmountTendered: t.AmountTendered,
		ChangeGiven:    t.ChangeGiven,
		CustomerID:     t.CustomerID,
		BillType:       t.BillType,
		Status:         t.Status,
		Date:           t.Date.Format(time.RFC3339),
		Outcome:        outcome.Status,
		PendingID:      outcome.PendingID,
	}
}
