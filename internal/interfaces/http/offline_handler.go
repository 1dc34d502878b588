package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/offline"
)

// OfflineHandler expone la cola de eventos pendientes al operador.
type OfflineHandler struct {
	queue *offline.Queue
}

// NewOfflineHandler construye el handler de la cola offline.
func NewOfflineHandler(queue *offline.Queue) *OfflineHandler {
	return &OfflineHandler{queue: queue}
}

// Pending godoc
// @Summary      Listar eventos pendientes de sincronizar
// @Tags         offline
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  offline.Event
// @Router       /api/offline/pending [get]
func (h *OfflineHandler) Pending(c *fiber.Ctx) error {
	events, err := h.queue.Pending()
	if err != nil {
		return respondError(c, err)
	}
	if events == nil {
		events = []*offline.Event{}
	}
	return c.JSON(events)
}

// Drain godoc
// @Summary      Drenar la cola offline contra el almacén
// @Description  Reaplica cada evento pendiente por la ruta degradada del
// @Description  orquestador. El fallo de un evento se registra y no bloquea
// @Description  a los demás.
// @Tags         offline
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  offline.Report
// @Router       /api/offline/drain [post]
func (h *OfflineHandler) Drain(c *fiber.Ctx) error {
	report, err := h.queue.Drain(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
