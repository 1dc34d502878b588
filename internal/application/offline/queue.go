// Package offline implementa la cola local de eventos pendientes: captura
// eventos de negocio que no pudieron confirmarse atómicamente (sin
// conectividad) y los reproduce después por la ruta degradada del orquestador.
//
// La cola es estado local de una sola sesión, durable (sobrevive reinicios) y
// nunca se comparte entre sesiones concurrentes.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Event es un evento de negocio pendiente, con id temporal y marca de encolado.
type Event struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"last_error,omitempty"`
}

// Store es el puerto del almacén local durable de la cola.
type Store interface {
	Append(ev *Event) error
	// List devuelve los eventos pendientes en orden de encolado.
	List() ([]*Event, error)
	Remove(id string) error
	MarkFailed(id string, attempts int, lastError string) error
	Count() (int, error)
}

// Replayer reaplica un evento pendiente (lo implementa el orquestador).
type Replayer interface {
	Replay(ctx context.Context, eventID, kind string, payload []byte) error
}

// Report resultado agregado de un Drain; el fallo de un evento se aísla y
// reporta, nunca bloquea el resto.
type Report struct {
	Drained   int `json:"drained"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Queue es la cola offline. Implementa ledger.EventQueue.
type Queue struct {
	store    Store
	replayer Replayer
	log      *logger.Logger
}

// NewQueue construye la cola.
func NewQueue(store Store, replayer Replayer, log *logger.Logger) *Queue {
	return &Queue{store: store, replayer: replayer, log: log}
}

// Enqueue persiste el evento con un id temporal y devuelve ese id. El
// llamador debe tratar el evento como "pendiente", no como confirmado.
func (q *Queue) Enqueue(kind string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializar evento %s: %w", kind, err)
	}
	ev := &Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
	if err := q.store.Append(ev); err != nil {
		return "", fmt.Errorf("encolar evento %s: %w", kind, err)
	}
	return ev.ID, nil
}

// Pending devuelve los eventos pendientes (para mostrarlos al operador).
func (q *Queue) Pending() ([]*Event, error) {
	return q.store.List()
}

// Drain reproduce cada evento pendiente por la ruta degradada del
// orquestador. El éxito lo saca de la cola; el fallo lo deja para reintento
// con el error registrado, sin bloquear los demás eventos.
func (q *Queue) Drain(ctx context.Context) (Report, error) {
	events, err := q.store.List()
	if err != nil {
		return Report{}, err
	}
	var report Report
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			report.Remaining = len(events) - report.Drained - report.Failed
			return report, err
		}
		if err := q.replayer.Replay(ctx, ev.ID, ev.Kind, ev.Payload); err != nil {
			report.Failed++
			q.log.Error().Err(err).Str("event_id", ev.ID).Str("kind", ev.Kind).
				Int("attempts", ev.Attempts+1).Msg("replay de evento offline falló; queda para reintento")
			if markErr := q.store.MarkFailed(ev.ID, ev.Attempts+1, err.Error()); markErr != nil {
				q.log.Error().Err(markErr).Str("event_id", ev.ID).Msg("no se pudo registrar el fallo del evento")
			}
			continue
		}
		if err := q.store.Remove(ev.ID); err != nil {
			// Se aplicó pero no se pudo desencolar: el replay es tolerante a
			// duplicados, el próximo Drain lo resolverá.
			q.log.Error().Err(err).Str("event_id", ev.ID).Msg("evento aplicado pero no desencolado")
			report.Failed++
			continue
		}
		report.Drained++
		q.log.Info().Str("event_id", ev.ID).Str("kind", ev.Kind).Msg("evento offline sincronizado")
	}
	remaining, err := q.store.Count()
	if err == nil {
		report.Remaining = remaining
	}
	return report, nil
}
