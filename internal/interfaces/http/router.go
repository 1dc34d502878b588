package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/auth"
	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/catalog"
	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/application/offline"
	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ItemUC         *catalog.ItemUseCase
	CategoryUC     *catalog.CategoryUseCase
	CounterpartyUC *catalog.CounterpartyUseCase
	Orchestrator   *ledger.Orchestrator
	Aggregator     *stock.Aggregator
	Balances       *balance.Ledger
	Reconciler     *reconcile.Service
	OfflineQueue   *offline.Queue
	Journal        repository.JournalRepository
	Purchases      repository.PurchaseRepository
	POS            repository.POSRepository
	BalanceEntries repository.BalanceEntryRepository
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	anyStaff := RequireRole(entity.RoleAdmin, entity.RoleCajero, entity.RoleVendedor)

	// Items (catálogo + lecturas de stock)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.Aggregator, deps.Journal)
	items.Post("/", adminOnly, itemHandler.Create)
	items.Get("/", anyStaff, itemHandler.List)
	items.Get("/:id", anyStaff, itemHandler.GetByID)
	items.Put("/:id", adminOnly, itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Archive)
	items.Get("/:id/computed", anyStaff, itemHandler.Computed)
	items.Get("/:id/journal", anyStaff, itemHandler.Journal)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Get("/", anyStaff, categoryHandler.List)

	// Vendors y Customers (catálogo + pagos + libro de saldos)
	cpHandler := NewCounterpartyHandler(deps.CounterpartyUC, deps.Orchestrator, deps.Balances, deps.BalanceEntries, deps.Reconciler)
	vendors := protected.Group("/vendors")
	vendors.Post("/", adminOnly, cpHandler.CreateVendor)
	vendors.Get("/", anyStaff, cpHandler.ListVendors)
	vendors.Get("/:id", anyStaff, cpHandler.GetVendor)
	vendors.Delete("/:id", adminOnly, cpHandler.DeleteVendor)
	vendors.Post("/:id/payments", adminOnly, cpHandler.RecordVendorPayment)
	vendors.Get("/:id/ledger", anyStaff, cpHandler.VendorLedger)

	customers := protected.Group("/customers")
	customers.Post("/", anyStaff, cpHandler.CreateCustomer)
	customers.Get("/", anyStaff, cpHandler.ListCustomers)
	customers.Get("/:id", anyStaff, cpHandler.GetCustomer)
	customers.Delete("/:id", adminOnly, cpHandler.DeleteCustomer)
	customers.Post("/:id/transactions", anyStaff, cpHandler.RecordCustomerTransaction)
	customers.Get("/:id/ledger", anyStaff, cpHandler.CustomerLedger)

	// Purchases (entradas de stock)
	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Orchestrator, deps.Purchases)
	purchases.Post("/", adminOnly, purchaseHandler.Create)
	purchases.Get("/", anyStaff, purchaseHandler.List)
	purchases.Get("/:id", anyStaff, purchaseHandler.GetByID)

	// POS (ventas de mostrador)
	pos := protected.Group("/pos")
	posHandler := NewPOSHandler(deps.Orchestrator, deps.POS)
	pos.Post("/sales", anyStaff, posHandler.CreateSale)
	pos.Get("/sales", anyStaff, posHandler.ListSales)
	pos.Get("/sales/:id", anyStaff, posHandler.GetSale)
	pos.Post("/sales/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleCajero), posHandler.CancelSale)
	pos.Post("/sales/:id/returns", RequireRole(entity.RoleAdmin, entity.RoleCajero), posHandler.CreateReturn)

	// Journal (solo lectura)
	journal := protected.Group("/journal")
	journalHandler := NewJournalHandler(deps.Journal)
	journal.Get("/", anyStaff, journalHandler.List)
	journal.Get("/reference/:id", anyStaff, journalHandler.ListByReference)

	// Reconcile (solo admin)
	rec := protected.Group("/reconcile", adminOnly)
	reconcileHandler := NewReconcileHandler(deps.Reconciler)
	rec.Post("/items", reconcileHandler.Items)
	rec.Post("/items/:id", reconcileHandler.Item)
	rec.Post("/counterparties", reconcileHandler.Counterparties)

	// Offline queue (solo admin)
	if deps.OfflineQueue != nil {
		off := protected.Group("/offline", adminOnly)
		offlineHandler := NewOfflineHandler(deps.OfflineQueue)
		off.Get("/pending", offlineHandler.Pending)
		off.Post("/drain", offlineHandler.Drain)
	}
}
