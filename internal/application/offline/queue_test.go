package offline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/offline"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// fakeStore almacén en memoria con la misma semántica FIFO del real.
type fakeStore struct {
	events []*offline.Event
}

func (s *fakeStore) Append(ev *offline.Event) error {
	cp := *ev
	s.events = append(s.events, &cp)
	return nil
}

func (s *fakeStore) List() ([]*offline.Event, error) {
	out := make([]*offline.Event, 0, len(s.events))
	for _, ev := range s.events {
		cp := *ev
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) Remove(id string) error {
	for i, ev := range s.events {
		if ev.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) MarkFailed(id string, attempts int, lastError string) error {
	for _, ev := range s.events {
		if ev.ID == id {
			ev.Attempts = attempts
			ev.LastError = lastError
		}
	}
	return nil
}

func (s *fakeStore) Count() (int, error) { return len(s.events), nil }

// fakeReplayer registra el orden de replay y falla los ids indicados.
type fakeReplayer struct {
	replayed []string
	failIDs  map[string]error
}

func (r *fakeReplayer) Replay(_ context.Context, eventID, kind string, payload []byte) error {
	r.replayed = append(r.replayed, eventID)
	if err, ok := r.failIDs[eventID]; ok {
		return err
	}
	return nil
}

func newQueue(store *fakeStore, replayer *fakeReplayer) *offline.Queue {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return offline.NewQueue(store, replayer, log)
}

func TestEnqueue_PersisteElEventoSerializado(t *testing.T) {
	store := &fakeStore{}
	q := newQueue(store, &fakeReplayer{})

	id, err := q.Enqueue("purchase", map[string]string{"vendor_id": "v1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id, "Enqueue debe devolver el id temporal")

	require.Len(t, store.events, 1)
	assert.Equal(t, "purchase", store.events[0].Kind)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(store.events[0].Payload, &payload))
	assert.Equal(t, "v1", payload["vendor_id"])
	assert.False(t, store.events[0].EnqueuedAt.IsZero())
}

func TestDrain_ReproduceEnOrdenYDesencola(t *testing.T) {
	store := &fakeStore{}
	replayer := &fakeReplayer{}
	q := newQueue(store, replayer)

	base := time.Now()
	for i, kind := range []string{"purchase", "sale", "vendor_payment"} {
		store.events = append(store.events, &offline.Event{
			ID:         kind + "-ev",
			Kind:       kind,
			Payload:    []byte("{}"),
			EnqueuedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	report, err := q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Drained)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Remaining)
	assert.Empty(t, store.events, "los eventos sincronizados salen de la cola")
	assert.Equal(t, []string{"purchase-ev", "sale-ev", "vendor_payment-ev"}, replayer.replayed,
		"el replay debe respetar el orden de encolado")
}

func TestDrain_UnFalloNoBloqueaElResto(t *testing.T) {
	store := &fakeStore{}
	replayer := &fakeReplayer{failIDs: map[string]error{
		"ev-2": errors.New("proveedor no encontrado"),
	}}
	q := newQueue(store, replayer)

	for i, id := range []string{"ev-1", "ev-2", "ev-3"} {
		store.events = append(store.events, &offline.Event{
			ID: id, Kind: "sale", Payload: []byte("{}"),
			EnqueuedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
	}

	report, err := q.Drain(context.Background())
	require.NoError(t, err, "el fallo de un evento no es un fallo del drenado")
	assert.Equal(t, 2, report.Drained)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Remaining)

	// El fallido queda para reintento, con el error registrado.
	require.Len(t, store.events, 1)
	assert.Equal(t, "ev-2", store.events[0].ID)
	assert.Equal(t, 1, store.events[0].Attempts)
	assert.Contains(t, store.events[0].LastError, "proveedor no encontrado")

	// Los tres se intentaron: ev-2 no bloqueó a ev-3.
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3"}, replayer.replayed)
}

func TestDrain_ColaVacia(t *testing.T) {
	q := newQueue(&fakeStore{}, &fakeReplayer{})
	report, err := q.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Drained)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Remaining)
}

func TestDrain_ContextoCancelado(t *testing.T) {
	store := &fakeStore{}
	store.events = append(store.events, &offline.Event{ID: "ev-1", Kind: "sale", Payload: []byte("{}")})
	q := newQueue(store, &fakeReplayer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, store.events, 1, "con el contexto cancelado nada debe desencolarse")
}
