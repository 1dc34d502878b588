package offlinedb_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/offline"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/offlinedb"
)

func newTestStore(t *testing.T) *offlinedb.Store {
	t.Helper()
	store, err := offlinedb.New(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err, "la base local debe crearse en el directorio temporal")
	t.Cleanup(func() { store.Close() })
	return store
}

func evento(id, kind string, enqueuedAt time.Time) *offline.Event {
	return &offline.Event{
		ID:         id,
		Kind:       kind,
		Payload:    []byte(`{"vendor_id":"v1"}`),
		EnqueuedAt: enqueuedAt,
	}
}

func TestStore_AppendYList_OrdenFIFO(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC()

	// Se insertan fuera de orden: List debe devolver por orden de encolado.
	require.NoError(t, store.Append(evento("ev-2", "sale", base.Add(time.Second))))
	require.NoError(t, store.Append(evento("ev-1", "purchase", base)))
	require.NoError(t, store.Append(evento("ev-3", "vendor_payment", base.Add(2*time.Second))))

	events, err := store.List()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, "ev-2", events[1].ID)
	assert.Equal(t, "ev-3", events[2].ID)
	assert.Equal(t, "purchase", events[0].Kind)
	assert.JSONEq(t, `{"vendor_id":"v1"}`, string(events[0].Payload))
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(evento("ev-1", "sale", time.Now())))
	require.NoError(t, store.Append(evento("ev-2", "sale", time.Now())))

	require.NoError(t, store.Remove("ev-1"))

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	events, err := store.List()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-2", events[0].ID)
}

func TestStore_MarkFailed_ConservaElEvento(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(evento("ev-1", "sale", time.Now())))

	require.NoError(t, store.MarkFailed("ev-1", 3, "proveedor no encontrado"))

	events, err := store.List()
	require.NoError(t, err)
	require.Len(t, events, 1, "el fallo no debe sacar el evento de la cola")
	assert.Equal(t, 3, events[0].Attempts)
	assert.Equal(t, "proveedor no encontrado", events[0].LastError)
}

func TestStore_SobreviveReapertura(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	store, err := offlinedb.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(evento("ev-1", "purchase", time.Now())))
	require.NoError(t, store.Close())

	// Reabrir simula el reinicio del proceso: la cola es durable.
	reopened, err := offlinedb.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "los eventos pendientes deben sobrevivir reinicios")
}

func TestStore_IDDuplicadoFalla(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(evento("ev-1", "sale", time.Now())))
	assert.Error(t, store.Append(evento("ev-1", "sale", time.Now())),
		"el id del evento es clave primaria")
}
