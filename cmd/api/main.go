package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/cashier"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/taxrates"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/discount"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/payment"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/tax"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/fiscalgw"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/memory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/metrics"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/postgres"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/queue"
	httpRouter "github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/interfaces/http"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/config"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
)

// txRunner lo implementan postgres.TxRunner y memory.Store.
type txRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Store:   cfg.Store.State,
	})
	log.Info().Str("env", cfg.App.Env).Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Persistencia: PostgreSQL si está configurado, si no memoria (desarrollo)
	var (
		tx       txRunner
		repos    repository.TxRepos
		rateRepo repository.TaxRateRepository
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		tx = postgres.NewTxRunner(pool)
		repos = postgres.NewTxRepos(pool)
		rateRepo = postgres.NewTaxRateRepository(pool)
	} else {
		log.Warn().Msg("sin base de datos configurada: almacenamiento en memoria")
		store := memory.NewStore()
		tx = store
		repos = store.Repos()
		rateRepo = store.TaxRates()
	}

	// Cola de emisión: Redis si está configurado
	var emissionQueue fiscal.Queue
	if cfg.Redis.Addr != "" {
		rq := queue.NewRedisQueue(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.App.Name)
		if err := rq.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rq.Close()
		n, err := rq.Recover(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("recuperar tareas de emisión")
		}
		if n > 0 {
			log.Info().Int("count", n).Msg("tareas de emisión recuperadas")
		}
		emissionQueue = rq
	} else {
		emissionQueue = queue.NewMemoryQueue(1024)
	}

	var gateway fiscal.Gateway
	if cfg.Fiscal.GatewayURL != "" {
		gateway = fiscalgw.NewHTTPGateway(cfg.Fiscal.GatewayURL, cfg.Fiscal.GatewayToken)
	} else {
		log.Warn().Msg("sin gateway fiscal configurado: las ventas se autorizan localmente")
		gateway = fiscalgw.LocalGateway{}
	}
	if cfg.Fiscal.CallbackSecret == "" {
		log.Warn().Msg("FISCAL_CALLBACK_SECRET vacío: el callback fiscal rechazará todas las solicitudes")
	}

	recorder := metrics.NewRecorder("pos")

	// Casos de uso
	policy := discount.NewPolicy(discount.Limits{
		entity.RoleCashier: cfg.Discount.Cashier,
		entity.RoleManager: cfg.Discount.Manager,
		entity.RoleAdmin:   cfg.Discount.Admin,
	})
	settings := sales.Settings{
		TenderTolerance: cfg.Payment.TenderTolerance,
		Terms: payment.Terms{
			BoletoDueDays:         cfg.Payment.BoletoDueDays,
			CrediarioIntervalDays: cfg.Payment.CrediarioIntervalDays,
			MaxInstallments:       cfg.Payment.MaxInstallments,
		},
	}
	realizeSaleUC := sales.NewRealizeSaleUseCase(tx, policy, emissionQueue, recorder, settings, log)
	cancelSaleUC := sales.NewCancelSaleUseCase(tx, log)
	saleQueryUC := sales.NewQueryUseCase(repos.Sales, repos.Receivables)
	cashierUC := cashier.NewUseCase(tx, repos.CashSessions, log)
	stockEntryUC := inventory.NewStockEntryUseCase(tx, tax.NewInterstateCalculator(cfg.Store.ICMSInternalRate), cfg.Store.State, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Products)
	taxRatesUC := taxrates.NewUseCase(rateRepo)
	callbackUC := fiscal.NewCallbackUseCase(repos.Sales, recorder, log)

	// Emisión fiscal fuera de banda
	var workers sync.WaitGroup
	for i := 0; i < max(cfg.Fiscal.Workers, 1); i++ {
		w := fiscal.NewEmissionWorker(emissionQueue, repos.Sales, gateway, callbackUC, recorder, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			w.Run(ctx)
		}()
	}
	sweeper := fiscal.NewSweeper(repos.Sales, emissionQueue, time.Duration(cfg.Fiscal.SweepInterval)*time.Second, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		sweeper.Run(ctx)
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DD Cosméticos PDV API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", recorder.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Cashier:        cashierUC,
		RealizeSale:    realizeSaleUC,
		CancelSale:     cancelSaleUC,
		SaleQuery:      saleQueryUC,
		StockEntry:     stockEntryUC,
		Replenishment:  replenishmentUC,
		TaxRates:       taxRatesUC,
		FiscalCallback: callbackUC,
		JWTSecret:      cfg.JWT.Secret,
		FiscalSecret:   cfg.Fiscal.CallbackSecret,
	})

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
	stop()
	workers.Wait()

	log.Info().Msg("aplicación detenida")
}
