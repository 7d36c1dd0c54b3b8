package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BomLine es una línea de consumo de la receta: cuánto de qué insumo, y desde
// qué ubicación, descuenta la venta de una unidad del plato.
type BomLine struct {
	IngredientProductID string
	LocationID          string
	QuantityPerUnit     decimal.Decimal
	Unit                string
}

// Recipe (BOM) asocia un producto vendible del menú con sus líneas de consumo.
// Es de solo lectura al momento del descargue; se edita por fuera del motor.
type Recipe struct {
	MenuProductID   string
	MenuProductName string
	Lines           []BomLine
	UpdatedAt       time.Time
}
