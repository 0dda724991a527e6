package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	syncapp "github.com/erp/ordersync/internal/application/sync"
	domain "github.com/erp/ordersync/internal/domain/sync"
	"github.com/erp/ordersync/internal/infrastructure/config"
	"github.com/erp/ordersync/internal/infrastructure/ledger"
	"github.com/erp/ordersync/internal/infrastructure/logger"
	"github.com/erp/ordersync/internal/infrastructure/marketplace"
	"github.com/erp/ordersync/internal/infrastructure/persistence"
	"github.com/erp/ordersync/internal/infrastructure/scheduler"
	"github.com/erp/ordersync/internal/infrastructure/statestore"
	"github.com/erp/ordersync/internal/interfaces/http/ops"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting order sync daemon",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Duration("poll_interval", cfg.Sync.PollInterval),
		zap.Int("window_days", cfg.Sync.WindowDays),
	)

	// Marketplace client
	feed, err := marketplace.NewClient(&marketplace.Config{
		BaseURL:        cfg.Marketplace.BaseURL,
		Token:          cfg.Marketplace.Token,
		TimeoutSeconds: cfg.Marketplace.TimeoutSeconds,
		PageLimit:      cfg.Marketplace.PageLimit,
	}, log)
	if err != nil {
		log.Fatal("Failed to create marketplace client", zap.Error(err))
	}

	// Ledger client
	ledgerClient, err := ledger.NewClient(&ledger.Config{
		BaseURL:         cfg.Ledger.BaseURL,
		Token:           cfg.Ledger.Token,
		OrganizationID:  cfg.Ledger.OrganizationID,
		AgentID:         cfg.Ledger.AgentID,
		SalesChannelID:  cfg.Ledger.SalesChannelID,
		StoreID:         cfg.Ledger.StoreID,
		SalePriceTypeID: cfg.Ledger.SalePriceTypeID,
		ShipmentStateID: cfg.Ledger.ShipmentStateID,
		StateIDs:        ledgerStateIDs(cfg.Ledger.States),
		TimeoutSeconds:  cfg.Ledger.TimeoutSeconds,
		MaxAttempts:     cfg.Ledger.MaxAttempts,
	}, log)
	if err != nil {
		log.Fatal("Failed to create ledger client", zap.Error(err))
	}

	// Idempotency state
	store := statestore.NewFileStore(cfg.Sync.StatePath, log)
	state, err := store.Load()
	if err != nil {
		log.Fatal("Failed to load sync state", zap.Error(err))
	}
	log.Info("Sync state loaded",
		zap.Int("active", len(state.Active)),
		zap.Int("forgotten", len(state.Forgotten)),
	)

	// Sync journal (optional)
	var journal domain.Journal
	if cfg.Journal.Enabled {
		db, err := persistence.NewDatabaseWithLogger(cfg.Journal.Path, log, logger.MapGormLogLevel(cfg.Log.Level))
		if err != nil {
			log.Fatal("Failed to open journal database", zap.Error(err))
		}
		defer db.Close()
		journal = persistence.NewGormSyncJournal(db.DB)
	}

	// Reconciler
	resolver := syncapp.NewLineItemResolver(ledgerClient, cfg.Ledger.SalePriceTypeID)
	reconciler := syncapp.NewReconciler(
		feed, ledgerClient, store, journal, resolver, state,
		syncapp.Config{
			Lookback:  cfg.Sync.Lookback(),
			NotBefore: cfg.Sync.NotBefore,
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ops HTTP server (optional)
	var srv *http.Server
	if cfg.HTTP.Enabled {
		handler := ops.NewHandler(reconciler, journal, log)
		srv = ops.NewServer(cfg.HTTP, cfg.App.Env, handler, log)
		go func() {
			log.Info("Ops HTTP server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Ops HTTP server failed", zap.Error(err))
			}
		}()
	}

	// Run the sync loop until a shutdown signal arrives
	loop := scheduler.NewTickLoop(cfg.Sync.PollInterval, reconciler.Tick, log)
	loop.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Ops HTTP server shutdown failed", zap.Error(err))
		}
	}

	log.Info("Order sync daemon exited gracefully")
}

// ledgerStateIDs converts the config state map, keyed by state name, into
// the typed map the ledger client expects. Keys arrive lowercased from the
// config layer.
func ledgerStateIDs(states map[string]string) map[domain.DocumentState]string {
	out := make(map[domain.DocumentState]string, len(states))
	for name, id := range states {
		out[domain.DocumentState(strings.ToUpper(name))] = id
	}
	return out
}
