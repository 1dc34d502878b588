package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// JournalHandler expone el diario de movimientos en solo lectura (reportes,
// exportación). El diario nunca se escribe por HTTP: solo el orquestador.
type JournalHandler struct {
	journal repository.JournalRepository
}

// NewJournalHandler construye el handler del diario.
func NewJournalHandler(journal repository.JournalRepository) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// List godoc
// @Summary      Listar asientos del diario
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Límite"   default(50)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {array}  dto.JournalEntryResponse
// @Router       /api/journal [get]
func (h *JournalHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	from, to, err := dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser RFC3339"})
	}
	entries, err := h.journal.List(from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(journalResponses(entries))
}

// ListByReference godoc
// @Summary      Asientos originados por un documento
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento (compra, venta, devolución)"
// @Success      200  {array}  dto.JournalEntryResponse
// @Router       /api/journal/reference/{id} [get]
func (h *JournalHandler) ListByReference(c *fiber.Ctx) error {
	entries, err := h.journal.ListByReference(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(journalResponses(entries))
}
