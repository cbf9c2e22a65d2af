package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/auth"
	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/application/orders"
	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	CustomerUC   *usecase.CustomerUseCase
	VehicleUC    *usecase.VehicleUseCase
	OrderUC      *orders.UseCase
	Orchestrator *orders.Orchestrator
	StockUC      *stock.LedgerUseCase
	FinanceUC    *finance.PosterUseCase
	JWTSecret    string
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

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Stock: libro de movimientos (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Post("/movements", stockHandler.RegisterMovement)
	stockGroup.Get("/products/:id", stockHandler.CurrentStock)
	stockGroup.Get("/products/:id/movements", stockHandler.ListMovements)

	// Customers y sus vehículos (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	vehicleHandler := NewVehicleHandler(deps.VehicleUC)
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Orchestrator)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", RequireRole(entity.RoleAdmin), customerHandler.Delete)
	customers.Get("/:id/vehicles", vehicleHandler.ListByCustomer)
	customers.Get("/:id/orders", orderHandler.ListByCustomer)

	vehicles := protected.Group("/vehicles")
	vehicles.Post("/", vehicleHandler.Create)
	vehicles.Get("/:id", vehicleHandler.GetByID)
	vehicles.Put("/:id", vehicleHandler.Update)
	vehicles.Delete("/:id", RequireRole(entity.RoleAdmin), vehicleHandler.Delete)

	// Orders: ventas, cotizaciones y órdenes de servicio (protegido)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id/lines", orderHandler.UpdateLines)
	ordersGroup.Post("/:id/transition", orderHandler.Transition)

	// Finance: cuentas por cobrar/pagar y caja (protegido)
	financeGroup := protected.Group("/finance")
	financeHandler := NewFinanceHandler(deps.FinanceUC)
	financeGroup.Get("/entries", financeHandler.ListEntries)
	financeGroup.Get("/entries/:id", financeHandler.GetEntry)
	financeGroup.Post("/entries/:id/settle", financeHandler.Settle)
	financeGroup.Post("/entries/:id/void", RequireRole(entity.RoleAdmin), financeHandler.Void)
	financeGroup.Post("/cash", financeHandler.RegisterCashMovement)
	financeGroup.Get("/cash", financeHandler.ListCashMovements)
}
