package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/auth"
	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/catalog"
	"github.com/jhoicas/puntoventa-api/internal/application/ledger"
	"github.com/jhoicas/puntoventa-api/internal/application/offline"
	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/offlinedb"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/puntoventa-api/internal/interfaces/http"
	"github.com/jhoicas/puntoventa-api/pkg/config"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Migraciones antes de abrir el pool: el esquema debe estar listo.
	if applied, err := postgres.RunMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	} else if applied {
		log.Info().Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool: rutas de lectura y ruta degradada offline.
	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)

	epsilon, err := decimal.NewFromString(cfg.Ledger.ReconcileEpsilon)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Ledger.ReconcileEpsilon).Msg("LEDGER_RECONCILE_EPSILON inválido")
	}

	cache := stock.NewItemCache(time.Duration(cfg.Ledger.CacheTTLSeconds) * time.Second)
	aggregator := stock.NewAggregator(repos.Items, repos.Journal, cache, log.Component("stock"))
	balances := balance.NewLedger(repos.Vendors, repos.Customers, repos.Purchases, repos.Balance)

	// Cola offline durable en SQLite local. El orquestador solo la usa cuando
	// el clasificador marca el error como de conectividad.
	var queue *offline.Queue
	var orchestrator *ledger.Orchestrator
	if cfg.Offline.Enabled {
		store, err := offlinedb.New(cfg.Offline.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Offline.DBPath).Msg("abrir cola offline")
		}
		defer store.Close()
		orchestrator = ledger.NewOrchestrator(txRunner, repos, nil, cache, postgres.IsConnectivity, log.Component("orchestrator"))
		queue = offline.NewQueue(store, orchestrator, log.Component("offline"))
		orchestrator.SetQueue(queue)
	} else {
		orchestrator = ledger.NewOrchestrator(txRunner, repos, nil, cache, nil, log.Component("orchestrator"))
	}

	reconciler := reconcile.NewService(
		repos.Items, repos.Vendors, repos.Customers,
		aggregator, balances, cache,
		reconcile.Options{Epsilon: epsilon, BatchSize: cfg.Ledger.ReconcileBatch},
		log.Component("reconcile"),
	)

	itemUC := catalog.NewItemUseCase(repos.Items, repos.Journal, cache)
	categoryUC := catalog.NewCategoryUseCase(categoryRepo)
	counterpartyUC := catalog.NewCounterpartyUseCase(repos.Vendors, repos.Customers, balances, epsilon)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs. Solo se monta si el
	// artefacto generado está presente; sin él el middleware falla al arrancar.
	const swaggerFile = "./docs/swagger.json"
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "PuntoVenta API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado; documentación deshabilitada")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ItemUC:         itemUC,
		CategoryUC:     categoryUC,
		CounterpartyUC: counterpartyUC,
		Orchestrator:   orchestrator,
		Aggregator:     aggregator,
		Balances:       balances,
		Reconciler:     reconciler,
		OfflineQueue:   queue,
		Journal:        repos.Journal,
		Purchases:      repos.Purchases,
		POS:            repos.POS,
		BalanceEntries: repos.Balance,
		JWTSecret:      cfg.JWT.Secret,
	})

	// Al arrancar, drenar lo que quedó pendiente de la sesión anterior.
	if queue != nil {
		go func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			report, err := queue.Drain(drainCtx)
			if err != nil {
				log.Warn().Err(err).Msg("drenado inicial de la cola offline incompleto")
				return
			}
			if report.Drained > 0 || report.Failed > 0 {
				log.Info().Int("drained", report.Drained).Int("failed", report.Failed).
					Int("remaining", report.Remaining).Msg("cola offline drenada al arranque")
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
