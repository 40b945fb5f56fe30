package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/cashier"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/inventory"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/sales"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/taxrates"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Cashier        *cashier.UseCase
	RealizeSale    *sales.RealizeSaleUseCase
	CancelSale     *sales.CancelSaleUseCase
	SaleQuery      *sales.QueryUseCase
	StockEntry     *inventory.StockEntryUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	TaxRates       *taxrates.UseCase
	FiscalCallback *fiscal.CallbackUseCase
	JWTSecret      string
	FiscalSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Webhook del gateway fiscal (secreto compartido, sin JWT)
	fiscalHandler := NewFiscalHandler(deps.FiscalCallback, deps.FiscalSecret)
	api.Post("/fiscal/callback", fiscalHandler.Callback)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleCashier, entity.RoleManager, entity.RoleAdmin)
	supervisor := RequireRole(entity.RoleManager, entity.RoleAdmin)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Caja
	sessions := protected.Group("/cash-sessions", anyRole)
	sessionHandler := NewCashSessionHandler(deps.Cashier)
	sessions.Post("/", sessionHandler.Open)
	sessions.Get("/current", sessionHandler.Current)
	sessions.Post("/current/movements", sessionHandler.RecordMovement)
	sessions.Post("/current/close", sessionHandler.Close)

	// Ventas
	salesGroup := protected.Group("/sales", anyRole)
	saleHandler := NewSaleHandler(deps.RealizeSale, deps.CancelSale, deps.SaleQuery)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/split", saleHandler.Split)
	salesGroup.Post("/:id/cancel", supervisor, saleHandler.Cancel)

	// Inventario
	invGroup := protected.Group("/inventory", anyRole)
	inventoryHandler := NewInventoryHandler(deps.StockEntry, deps.Replenishment)
	invGroup.Post("/stock-entries", supervisor, inventoryHandler.RegisterStockEntry)
	invGroup.Get("/replenishment", inventoryHandler.GetReplenishmentList)

	// Impuestos
	taxGroup := protected.Group("/tax", anyRole)
	taxHandler := NewTaxHandler(deps.StockEntry, deps.TaxRates)
	taxGroup.Post("/icms-st", taxHandler.SubstitutionTax)
	taxGroup.Get("/reform-rates", taxHandler.ListReformRates)
	taxGroup.Post("/reform-rates", adminOnly, taxHandler.CreateReformRate)
}
