package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeReceipt     = "RECEIPT"      // entrada por compra
	MovementTypeDeduction   = "DEDUCTION"    // descargue por venta/consumo (receta)
	MovementTypeAdjustment  = "ADJUSTMENT"   // conteo físico / corrección manual
	MovementTypeTransferOut = "TRANSFER_OUT" // salida por traslado
	MovementTypeTransferIn  = "TRANSFER_IN"  // entrada por traslado
	MovementTypeWaste       = "WASTE"        // merma / desperdicio
)

// StockMovement es un hecho inmutable del libro de movimientos: todo evento que
// afecta cantidad o costo queda registrado aquí junto con el estado resultante
// del StockRecord. Es la única pista de auditoría y la fuente desde la cual el
// estado puede reconstruirse (replay).
type StockMovement struct {
	ID                 string
	ProductID          string
	LocationID         string
	Type               string
	QuantityDelta      decimal.Decimal // con signo
	UnitCostAtMovement decimal.Decimal // costo usado/producido por este movimiento
	ResultingQuantity  decimal.Decimal
	ResultingAvgCost   decimal.Decimal
	ReferenceID        string // orden de compra, venta, documento de ajuste, traslado
	ReasonCode         string // solo ajustes/mermas: COUNT, DAMAGE, EXPIRED, ...
	Note               string
	Timestamp          time.Time
	Actor              string // UserID o identificador del canal (ej. token QR)
}
