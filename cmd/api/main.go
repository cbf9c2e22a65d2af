package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/auth"
	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/application/orders"
	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/taller-api/internal/interfaces/http"
	"github.com/jhoicas/taller-api/pkg/clock"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	entryRepo := postgres.NewAccountEntryRepository(pool)
	cashRepo := postgres.NewCashMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clk := clock.Real{}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(productRepo, movementRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	vehicleUC := usecase.NewVehicleUseCase(vehicleRepo, customerRepo)

	stockUC := stock.NewLedgerUseCase(txRunner, productRepo, movementRepo, clk)
	financeUC := finance.NewPosterUseCase(txRunner, entryRepo, cashRepo, clk, finance.Policy{
		TermDays:        cfg.Finance.TermDays,
		LateFeeDailyPct: decimal.NewFromFloat(cfg.Finance.LateFeeDailyPct),
		LateFeeMaxPct:   decimal.NewFromFloat(cfg.Finance.LateFeeMaxPct),
	})
	orderUC := orders.NewUseCase(txRunner, orderRepo, productRepo, customerRepo, vehicleRepo, clk,
		orders.QuotePolicy{ValidDays: cfg.Quotes.ValidDays})
	orchestrator := orders.NewOrchestrator(txRunner, orderRepo, stockUC, financeUC, clk, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    productUC,
		CustomerUC:   customerUC,
		VehicleUC:    vehicleUC,
		OrderUC:      orderUC,
		Orchestrator: orchestrator,
		StockUC:      stockUC,
		FinanceUC:    financeUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
