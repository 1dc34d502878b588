package ledger

// Status del resultado de un evento de negocio. El rechazo por reglas de
// negocio no es un Status: se devuelve como error tipado y no deja efectos.
const (
	StatusCommitted       = "committed"        // aplicado atómicamente en el almacén
	StatusDeferredOffline = "deferred_offline" // encolado localmente, pendiente de sync
)

// Outcome es el resultado explícito de un evento de negocio. Reemplaza el
// viejo patrón de lanzar una excepción genérica e inspeccionar su mensaje
// para decidir la ruta offline: los llamadores ramifican sobre el valor.
type Outcome struct {
	Status    string
	PendingID string // id temporal en la cola offline (solo DeferredOffline)
}

// Committed indica si el evento quedó confirmado en el almacén.
func (o Outcome) Committed() bool { return o.Status == StatusCommitted }

// Deferred indica si el evento quedó "guardado offline, pendiente de sync".
func (o Outcome) Deferred() bool { return o.Status == StatusDeferredOffline }

func committed() Outcome { return Outcome{Status: StatusCommitted} }

func deferred(pendingID string) Outcome {
	return Outcome{Status: StatusDeferredOffline, PendingID: pendingID}
}
