package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/dms/backend/internal/application/catalog"
	collectionapp "github.com/dms/backend/internal/application/collection"
	ledgerapp "github.com/dms/backend/internal/application/ledger"
	partnerapp "github.com/dms/backend/internal/application/partner"
	tradeapp "github.com/dms/backend/internal/application/trade"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/infrastructure/auth"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/event"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/dms/backend/internal/infrastructure/scheduler"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config.toml (default: ./config.toml or /app/config.toml)")
	reconcileOnce := flag.Bool("reconcile", false, "Run the ledger reconcile job once and exit")
	issueToken := flag.String("issue-token", "", "Print an access token for role admin|salesman|customer and exit")
	profileID := flag.String("profile", "", "Salesman or customer id for -issue-token")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		if err := printToken(cfg.JWT, *issueToken, *profileID); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log, *reconcileOnce); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, reconcileOnce bool) error {
	log.Info("Starting DMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled, log); err != nil {
		return err
	}
	log.Info("Database connected")

	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis, cfg.Ledger,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Redis.Required),
	).CreateLocker()
	if err != nil {
		return err
	}
	defer func() { _ = closeLocker() }()

	metrics, err := telemetry.NewLedgerMetrics(providers.Meter(telemetry.TracerName))
	if err != nil {
		return err
	}

	unit := persistence.NewGormUnitOfWork(db.DB, locker, persistence.UnitOfWorkConfig{
		Timeout:         cfg.Ledger.StoreTimeout,
		MaxRetries:      uint(cfg.Ledger.MaxRetries),
		InitialInterval: cfg.Ledger.RetryInitialInterval,
		MaxInterval:     cfg.Ledger.RetryMaxInterval,
	}, log)

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	salesmanRepo := persistence.NewGormSalesmanRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	reconciler := ledgerapp.NewReconciler(unit, customerRepo, metrics, log)
	if reconcileOnce {
		report, err := reconciler.ReconcileAll(ctx, cfg.Ledger.ReconcileRepair)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		log.Info("Reconcile finished",
			zap.Int("checked", report.Checked),
			zap.Int("drifted", len(report.Drifted)),
			zap.Int("repaired", report.Repaired),
		)
		return nil
	}

	eventBus := event.NewSyncEventBus(log)
	eventBus.Subscribe(tradeapp.NewDeliveryReconciler(unit, metrics, log))

	orderService := tradeapp.NewOrderService(unit, orderRepo, customerRepo, productRepo, metrics, log)
	orderService.SetEventPublisher(eventBus)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
		JWT:            jwtService,
		Meter:          providers.Meter("http.server"),
		TracingEnabled: providers.Enabled(),
		HTTP:           cfg.HTTP,
	}, router.Handlers{
		Health:     handler.NewHealthHandler(cfg.App.Name, version, db, log),
		Customer:   handler.NewCustomerHandler(partnerapp.NewCustomerService(unit, customerRepo, salesmanRepo, log), log),
		Salesman:   handler.NewSalesmanHandler(partnerapp.NewSalesmanService(salesmanRepo, log), log),
		Catalog:    handler.NewCatalogHandler(catalogapp.NewService(companyRepo, productRepo, log), log),
		Ledger:     handler.NewLedgerHandler(ledgerapp.NewService(unit, entryRepo, customerRepo, reconciler, metrics, log), log),
		Collection: handler.NewCollectionHandler(collectionapp.NewService(unit, collectionRepo, customerRepo, metrics, log), log),
		Order:      handler.NewOrderHandler(orderService, log),
	})

	var nightly *scheduler.DailyScheduler
	if cfg.Ledger.ReconcileSchedule != "" {
		hour, minute, err := scheduler.ParseSchedule(cfg.Ledger.ReconcileSchedule)
		if err != nil {
			return fmt.Errorf("ledger.reconcile_schedule: %w", err)
		}
		nightly = scheduler.NewDailyScheduler(scheduler.DailyConfig{Name: "ledger_reconcile", Hour: hour, Minute: minute},
			func(ctx context.Context) error {
				_, err := reconciler.ReconcileAll(ctx, cfg.Ledger.ReconcileRepair)
				return err
			}, log)
		if err := nightly.Start(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if nightly != nil {
		_ = nightly.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// printToken issues a token for bootstrapping clients before an identity
// provider is wired in front of the API
func printToken(cfg config.JWTConfig, role, profile string) error {
	r, err := identity.ParseRole(role)
	if err != nil {
		return err
	}
	var pid uuid.UUID
	if profile != "" {
		if pid, err = uuid.Parse(profile); err != nil {
			return fmt.Errorf("invalid -profile: %w", err)
		}
	}
	p, err := identity.NewPrincipal(uuid.New(), "cli-"+string(r), r, pid)
	if err != nil {
		return err
	}
	token, expires, err := auth.NewJWTService(cfg).GenerateToken(p)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", expires.Format(time.RFC3339))
	return nil
}
