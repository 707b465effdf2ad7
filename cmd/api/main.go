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

	appledger "github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
	"github.com/jhoicas/equipment-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/equipment-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/equipment-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/equipment-ledger/internal/interfaces/http"
	"github.com/jhoicas/equipment-ledger/pkg/config"
	"github.com/jhoicas/equipment-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Ledger.StoreDriver).
		Dur("lock_timeout", cfg.Ledger.LockTimeout).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner appledger.TxRunner
		repo     repository.StockRecordRepository
		catalog  repository.EquipmentCatalog
	)
	switch cfg.Ledger.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore(cfg.Ledger.LockTimeout)
		txRunner, repo, catalog = store, store, memory.NewEquipmentCatalog()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
		repo = postgres.NewStockRecordRepository(pool)
		catalog = postgres.NewEquipmentCatalogRepository(pool)
	}

	ledgerUC := appledger.NewUseCase(txRunner, repo, log)
	queryUC := appledger.NewQueryUseCase(repo, catalog, infrapdf.NewStockReportGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs (solo si existe el archivo)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger: ledgerUC,
		Query:  queryUC,
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

	log.Info().Msg("aplicación detenida")
}
