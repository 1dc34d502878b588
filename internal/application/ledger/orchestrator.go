// Package ledger implementa el orquestador de transacciones: cada evento de
// negocio (compra recibida, venta, devolución, pago) se aplica como una
// unidad — diario + agregados + saldos — o no se aplica en absoluto.
// Cuando la ruta atómica no está disponible (sin conectividad) el evento se
// encola localmente y se reproduce después por una ruta secuencial de mejor
// esfuerzo, con la Reconciliación como respaldo último.
package ledger

import (
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Kinds de eventos de negocio encolables (ruta offline).
const (
	EventPurchase            = "purchase"
	EventSale                = "sale"
	EventVendorPayment       = "vendor_payment"
	EventCustomerTransaction = "customer_transaction"
)

// Orchestrator coordina los eventos de negocio del motor contable.
// txRunner da la ruta atómica; store son los mismos repositorios atados al
// pool, usados solo por la ruta degradada offline (Apply*Offline).
type Orchestrator struct {
	txRunner  TxRunner
	store     Repos
	queue     EventQueue
	cache     CacheInvalidator
	isOffline func(error) bool // clasificación de errores de conectividad
	log       *logger.Logger
}

// NewOrchestrator construye el orquestador. queue puede ser nil (sin ruta
// offline: los errores de conectividad se propagan). isOffline clasifica
// errores del almacén como transitorios/de conectividad.
func NewOrchestrator(
	txRunner TxRunner,
	store Repos,
	queue EventQueue,
	cache CacheInvalidator,
	isOffline func(error) bool,
	log *logger.Logger,
) *Orchestrator {
	if cache == nil {
		cache = noopInvalidator{}
	}
	if isOffline == nil {
		isOffline = func(error) bool { return false }
	}
	return &Orchestrator{
		txRunner:  txRunner,
		store:     store,
		queue:     queue,
		cache:     cache,
		isOffline: isOffline,
		log:       log,
	}
}

// SetQueue instala la cola offline después de la construcción. La cola
// necesita al orquestador como Replayer, así que el ciclo se cierra aquí.
func (o *Orchestrator) SetQueue(queue EventQueue) {
	o.queue = queue
}

// deferOffline encola el evento si la cola existe y el error es de
// conectividad. Devuelve el Outcome diferido o false si no aplica.
func (o *Orchestrator) deferOffline(kind string, payload any, cause error) (Outcome, bool) {
	if o.queue == nil || !o.isOffline(cause) {
		return Outcome{}, false
	}
	pendingID, err := o.queue.Enqueue(kind, payload)
	if err != nil {
		// La cola local también falló: se propaga el error original.
		o.log.Error().Err(err).Str("kind", kind).Msg("no se pudo encolar el evento offline")
		return Outcome{}, false
	}
	o.log.Warn().Str("kind", kind).Str("pending_id", pendingID).
		Msg("almacén no disponible; evento guardado offline, pendiente de sync")
	return deferred(pendingID), true
}
