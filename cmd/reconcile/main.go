// Barrido de reconciliación ejecutable a mano o desde cron: recalcula los
// agregados de stock y los saldos de contrapartes desde las fuentes
// autoritativas y corrige la deriva que encuentre.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/balance"
	"github.com/jhoicas/puntoventa-api/internal/application/reconcile"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/puntoventa-api/pkg/config"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

func main() {
	var (
		onlyItems   = flag.Bool("items", false, "reconciliar solo artículos")
		onlyParties = flag.Bool("counterparties", false, "reconciliar solo contrapartes")
		timeout     = flag.Duration("timeout", 10*time.Minute, "tiempo máximo del barrido")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"}).Component("reconcile")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.NewRepos(pool)

	epsilon, err := decimal.NewFromString(cfg.Ledger.ReconcileEpsilon)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Ledger.ReconcileEpsilon).Msg("LEDGER_RECONCILE_EPSILON inválido")
	}

	// Sin caché: el barrido por CLI corre fuera del proceso del API.
	aggregator := stock.NewAggregator(repos.Items, repos.Journal, nil, log)
	balances := balance.NewLedger(repos.Vendors, repos.Customers, repos.Purchases, repos.Balance)
	svc := reconcile.NewService(
		repos.Items, repos.Vendors, repos.Customers,
		aggregator, balances, nil,
		reconcile.Options{Epsilon: epsilon, BatchSize: cfg.Ledger.ReconcileBatch},
		log,
	)

	all := !*onlyItems && !*onlyParties
	exitCode := 0

	if all || *onlyItems {
		report, err := svc.ReconcileAllItems(ctx)
		if err != nil {
			log.Error().Err(err).Msg("barrido de artículos interrumpido")
			exitCode = 1
		}
		fmt.Printf("artículos: revisados=%d corregidos=%d fallidos=%d\n",
			report.Checked, report.Corrected, report.Failed)
		if report.Failed > 0 {
			exitCode = 1
		}
	}

	if all || *onlyParties {
		report, err := svc.ReconcileAllCounterparties(ctx)
		if err != nil {
			log.Error().Err(err).Msg("barrido de contrapartes interrumpido")
			exitCode = 1
		}
		fmt.Printf("contrapartes: revisadas=%d corregidas=%d fallidas=%d\n",
			report.Checked, report.Corrected, report.Failed)
		if report.Failed > 0 {
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
