package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación de productos: vendible (carta), materia prima o empaque.
const (
	ProductKindSellable  = "SELLABLE"
	ProductKindRaw       = "RAW"
	ProductKindPackaging = "PACKAGING"
)

// Product representa un producto o SKU del restaurante.
// La identidad (SKU, unidad) es inmutable; precio y umbrales se administran fuera
// del motor de inventario. El costo promedio vive por ubicación en StockRecord,
// nunca en el producto.
type Product struct {
	ID             string
	SKU            string // código único
	Name           string
	Kind           string          // SELLABLE | RAW | PACKAGING
	UnitMeasure    string          // unidad base: und, kg, g, lt, ml
	AltUnitMeasure string          // unidad alterna opcional (ej. caja)
	AltUnitFactor  decimal.Decimal // unidades base por unidad alterna (0 = sin unidad alterna)
	ReorderPoint   decimal.Decimal
	MinQty         decimal.Decimal // umbral para reporte de stock bajo (0 = sin umbral)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
