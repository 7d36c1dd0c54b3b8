package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comanda-api/internal/application/auth"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/application/ports"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ReceivingUC *inventory.ReceivingUseCase
	DeductionUC *inventory.DeductionUseCase
	AdjustUC    *inventory.AdjustmentUseCase
	TransferUC  *inventory.TransferUseCase
	ValuationUC *inventory.ValuationUseCase
	QueryUC     *inventory.StockQueryUseCase
	ReconcileUC *inventory.ReconcileUseCase
	ScanService ports.BillScanService
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Conteo físico por QR (token de conteo, no token de sesión)
	inventoryHandler := NewInventoryHandler(deps.ReceivingUC, deps.DeductionUC, deps.AdjustUC, deps.TransferUC)
	counts := api.Group("/inventory/counts", CountTokenMiddleware(deps.JWTSecret))
	counts.Post("/", inventoryHandler.ApplyCountByToken)

	// Rutas protegidas (requieren Bearer Token de sesión)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Emisión del token de conteo (solo admin y bodega)
	protected.Post("/auth/count-token",
		RequireRoles(entity.RoleAdmin, entity.RoleBodega), authHandler.IssueCountToken)

	// Mutaciones de inventario
	invGroup := protected.Group("/inventory")
	invGroup.Post("/receipts", inventoryHandler.ReceivePurchase)
	invGroup.Post("/sales", inventoryHandler.CloseSale)
	invGroup.Post("/sales/import", inventoryHandler.ImportSales)
	invGroup.Post("/adjustments", inventoryHandler.ApplyAdjustment)
	invGroup.Post("/waste", inventoryHandler.RegisterWaste)
	invGroup.Post("/transfers", inventoryHandler.Transfer)

	// Escaneo de facturas (OCR); nunca dentro de una transacción
	scanHandler := NewScanHandler(deps.ScanService)
	invGroup.Post("/receipts/scan", scanHandler.ScanBill)

	// Consultas de stock, libro y reconciliación
	valuationHandler := NewValuationHandler(deps.ValuationUC, deps.QueryUC, deps.ReconcileUC)
	stock := protected.Group("/stock")
	stock.Get("/:location_id", valuationHandler.ListStock)
	stock.Get("/:location_id/movements", valuationHandler.ListMovements)
	stock.Get("/:location_id/:product_id", valuationHandler.GetStock)
	stock.Get("/:location_id/:product_id/reconcile", valuationHandler.Reconcile)
	protected.Get("/movements/:reference_id", valuationHandler.GetMovementsByReference)

	// Reportes
	reports := protected.Group("/reports")
	reports.Get("/valuation", valuationHandler.GetValuation)
	reports.Get("/valuation/pdf", valuationHandler.ExportValuationPDF)
	reports.Get("/low-stock", valuationHandler.GetLowStock)
	reports.Get("/negative-stock", valuationHandler.GetNegativeStock)
}
