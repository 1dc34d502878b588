package stock

import (
	"sync"
	"time"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// ItemCache es la caché de lectura de artículos, propiedad de la capa de
// lectura. La invalidación es EXPLÍCITA: el orquestador la llama después de
// cada escritura que afecta un artículo; el TTL es solo red de seguridad.
// Reemplaza las viejas cachés globales con invalidación por tiempo.
type ItemCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]cachedItem
}

type cachedItem struct {
	item      *entity.Item
	expiresAt time.Time
}

// NewItemCache construye la caché con el TTL de seguridad indicado.
func NewItemCache(ttl time.Duration) *ItemCache {
	return &ItemCache{ttl: ttl, data: make(map[string]cachedItem)}
}

// Get devuelve la entrada si existe y no expiró.
func (c *ItemCache) Get(id string) (*entity.Item, bool) {
	c.mu.RLock()
	entry, ok := c.data[id]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.item, true
}

// Put guarda una copia del artículo.
func (c *ItemCache) Put(item *entity.Item) {
	copia := *item
	c.mu.Lock()
	c.data[item.ID] = cachedItem{item: &copia, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate elimina las entradas indicadas. Implementa ledger.CacheInvalidator.
func (c *ItemCache) Invalidate(itemIDs ...string) {
	c.mu.Lock()
	for _, id := range itemIDs {
		delete(c.data, id)
	}
	c.mu.Unlock()
}
