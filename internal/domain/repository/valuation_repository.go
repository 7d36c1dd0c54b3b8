package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// LocationValuationResult es la valorización agregada de una ubicación.
type LocationValuationResult struct {
	LocationID   string
	LocationCode string
	LocationName string
	ItemCount    int64
	TotalValue   decimal.Decimal // Σ quantity × avg_cost
}

// LowStockResult es un SKU en o bajo su umbral mínimo.
type LowStockResult struct {
	ProductID   string
	SKU         string
	ProductName string
	LocationID  string
	Quantity    decimal.Decimal
	MinQty      decimal.Decimal
}

// NegativeStockResult es un registro con cantidad bajo cero (estado de
// advertencia pendiente de corrección operativa).
type NegativeStockResult struct {
	ProductID   string
	SKU         string
	ProductName string
	LocationID  string
	Quantity    decimal.Decimal
	AvgCost     decimal.Decimal
}

// ValuationRepository define el puerto de solo lectura para los reportes de
// valorización. Lecturas snapshot sin locks; nunca bloquean a los escritores.
type ValuationRepository interface {
	ValuationByLocation(ctx context.Context) ([]LocationValuationResult, error)
	LowStock(ctx context.Context) ([]LowStockResult, error)
	NegativeStock(ctx context.Context) ([]NegativeStockResult, error)
}
