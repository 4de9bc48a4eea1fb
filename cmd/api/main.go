// @title          Stock Ledger API
// @version        1.0
// @description    Libro de movimientos de stock y estimación de demanda.
// @BasePath       /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/stock-ledger/docs"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/telemetry"
)

// storage puertos del libro según LEDGER_STORE.
type storage struct {
	txRunner  inventory.TxRunner
	catalog   repository.ProductRepository
	movRepo   repository.StockMovementRepository
	stockRepo repository.StockRepository
	close     func()
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
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	maxRetries := uint(cfg.Ledger.MaxRetries)
	ledgerUC := inventory.NewLedgerUseCase(store.txRunner, store.catalog, store.movRepo, store.stockRepo, inventory.LedgerOptions{
		MaxRetries: &maxRetries,
		Logger:     log.Zerolog(),
	})
	demandUC := inventory.NewDemandUseCase(store.catalog, store.movRepo, cfg.Ledger.DemandWindowDays, nil)
	replenishmentUC := inventory.NewReplenishmentUseCase(ledgerUC, demandUC)
	kardexUC := inventory.NewKardexUseCase(ledgerUC, infrapdf.NewMarotoKardexGenerator(cfg.App.Name))
	exportUC := inventory.NewExportUseCase(store.catalog, store.movRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.TracingMiddleware())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Ledger.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledgerUC,
		Demand:        demandUC,
		Replenishment: replenishmentUC,
		Kardex:        kardexUC,
		Export:        exportUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		s := memory.NewStore(memory.WithLockTimeout(time.Duration(cfg.Ledger.MemoryLockTimeout) * time.Millisecond))
		products := memory.ParseProducts(cfg.Ledger.SeedProducts)
		for _, p := range products {
			s.AddProduct(p)
		}
		log.Warn().Int("products", len(products)).Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:  memory.NewTxRunner(s),
			catalog:   memory.NewProductRepository(s),
			movRepo:   memory.NewMovementRepository(s),
			stockRepo: memory.NewStockRepository(s),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	catalog := postgres.NewProductRepository(pool)
	if err := seedCatalog(ctx, catalog, memory.ParseProducts(cfg.Ledger.SeedProducts), log); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		catalog:   catalog,
		movRepo:   postgres.NewStockMovementRepository(pool),
		stockRepo: postgres.NewStockRepository(pool),
		close:     pool.Close,
	}, nil
}

// seedCatalog inserta los productos que aún no existen; los existentes no se tocan.
func seedCatalog(ctx context.Context, catalog *postgres.ProductRepo, products []entity.Product, log *logger.Logger) error {
	created := 0
	for i := range products {
		err := catalog.Create(ctx, &products[i])
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Info().Int("products", created).Msg("catálogo inicial cargado")
	}
	return nil
}
