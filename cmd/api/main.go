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

	"github.com/jhoicas/Comanda-api/internal/application/auth"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	infraai "github.com/jhoicas/Comanda-api/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/Comanda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Comanda-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Comanda-api/internal/interfaces/http"
	"github.com/jhoicas/Comanda-api/pkg/config"
	"github.com/jhoicas/Comanda-api/pkg/logger"
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
		Str("currency", cfg.Currency.Code).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas). Las mutaciones usan repos atados
	// a la transacción vía TxRunner.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	recordRepo := postgres.NewStockRecordRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	valuationRepo := postgres.NewValuationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// El motor de costeo redondea al número de subunidades de la moneda.
	engine := costing.NewEngine(int32(cfg.Currency.Decimals))

	resolver := inventory.NewResolver(recipeRepo)
	receivingUC := inventory.NewReceivingUseCase(txRunner, productRepo, locationRepo, engine, log)
	deductionUC := inventory.NewDeductionUseCase(txRunner, resolver, productRepo, locationRepo, engine, log)
	adjustUC := inventory.NewAdjustmentUseCase(txRunner, productRepo, locationRepo, engine, log)
	transferUC := inventory.NewTransferUseCase(txRunner, productRepo, locationRepo, engine, log)
	queryUC := inventory.NewStockQueryUseCase(recordRepo, movRepo)
	reconcileUC := inventory.NewReconcileUseCase(recordRepo, movRepo, engine)

	pdfGenerator := infrapdf.NewMarotoReportGenerator()
	valuationUC := inventory.NewValuationUseCase(valuationRepo, pdfGenerator)

	anthropicSvc := infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)

	authUC := auth.NewAuthUseCase(userRepo, locationRepo, auth.JWTConfig{
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

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Comanda API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ReceivingUC: receivingUC,
		DeductionUC: deductionUC,
		AdjustUC:    adjustUC,
		TransferUC:  transferUC,
		ValuationUC: valuationUC,
		QueryUC:     queryUC,
		ReconcileUC: reconcileUC,
		ScanService: anthropicSvc,
		JWTSecret:   cfg.JWT.Secret,
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
