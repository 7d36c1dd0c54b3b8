// Package costing implementa el motor de costo promedio ponderado (WAC) como
// servicio de dominio puro: sin I/O, sin estado. La fórmula de costeo existe
// únicamente aquí; todos los coordinadores de mutación la invocan igual.
package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/domain"
)

// Tipos de movimiento que el motor sabe costear. Coinciden con los tipos del
// libro de movimientos (entity.MovementType*).
const (
	TypeReceipt     = "RECEIPT"
	TypeDeduction   = "DEDUCTION"
	TypeAdjustment  = "ADJUSTMENT"
	TypeTransferOut = "TRANSFER_OUT"
	TypeTransferIn  = "TRANSFER_IN"
	TypeWaste       = "WASTE"
)

// State es el estado actual de un StockRecord visto por el motor.
type State struct {
	Quantity decimal.Decimal
	AvgCost  decimal.Decimal
}

// Movement es el evento entrante a costear.
//   - RECEIPT / TRANSFER_IN: QuantityDelta > 0 y UnitCost != nil (>= 0).
//   - DEDUCTION / WASTE / TRANSFER_OUT: QuantityDelta < 0, sin UnitCost.
//   - ADJUSTMENT: QuantityDelta con signo (actual - current); CostOverride
//     opcional para corrección manual de costo.
type Movement struct {
	Type          string
	QuantityDelta decimal.Decimal
	UnitCost      *decimal.Decimal
	CostOverride  *decimal.Decimal
}

// Result es el estado resultante más el costo unitario usado/producido por el
// movimiento (el que queda escrito en el libro).
type Result struct {
	Quantity           decimal.Decimal
	AvgCost            decimal.Decimal
	UnitCostAtMovement decimal.Decimal
}

// Engine aplica movimientos sobre un estado. CostPlaces es la precisión de la
// moneda en decimales (0 para monedas sin subunidad, ej. COP sin centavos).
// El redondeo de la división del promedio es half-even (RoundBank) para evitar
// deriva acumulada a lo largo de miles de movimientos.
type Engine struct {
	costPlaces int32
}

// NewEngine construye el motor con la precisión de la moneda.
func NewEngine(costPlaces int32) Engine {
	return Engine{costPlaces: costPlaces}
}

// Apply calcula el nuevo (cantidad, costo promedio) a partir del estado actual
// y el movimiento entrante. Es una función pura: no muta sus argumentos.
func (e Engine) Apply(current State, mv Movement) (Result, error) {
	switch mv.Type {
	case TypeReceipt, TypeTransferIn:
		return e.applyReceipt(current, mv)
	case TypeDeduction, TypeWaste, TypeTransferOut:
		return e.applyDeduction(current, mv)
	case TypeAdjustment:
		return e.applyAdjustment(current, mv)
	default:
		return Result{}, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, mv.Type)
	}
}

// applyReceipt mezcla el costo entrante con el promedio actual.
// La porción negativa de la cantidad actual se trata como base de costo cero:
// si la cantidad está bajo cero al recibir, el promedio resultante es el costo
// de la entrada (no hay existencia valorizada con la cual mezclar).
func (e Engine) applyReceipt(current State, mv Movement) (Result, error) {
	if !mv.QuantityDelta.IsPositive() {
		return Result{}, fmt.Errorf("%w: entrada con cantidad no positiva", domain.ErrInvalidInput)
	}
	if mv.UnitCost == nil || mv.UnitCost.IsNegative() {
		return Result{}, fmt.Errorf("%w: entrada sin costo unitario válido", domain.ErrInvalidInput)
	}
	unitCost := mv.UnitCost.RoundBank(e.costPlaces)

	baseline := current.Quantity
	if baseline.IsNegative() {
		baseline = decimal.Zero
	}
	// denom = baseline + delta > 0 siempre (delta > 0, baseline >= 0).
	denom := baseline.Add(mv.QuantityDelta)
	num := baseline.Mul(current.AvgCost).Add(mv.QuantityDelta.Mul(unitCost))
	newAvg := num.Div(denom).RoundBank(e.costPlaces)

	return Result{
		Quantity:           current.Quantity.Add(mv.QuantityDelta),
		AvgCost:            newAvg,
		UnitCostAtMovement: unitCost,
	}, nil
}

// applyDeduction descuenta cantidad sin tocar el costo promedio. La valoración
// del movimiento usa el costo vigente al momento del descargue, no se recalcula.
// La cantidad resultante puede quedar negativa; eso se marca, nunca se bloquea.
func (e Engine) applyDeduction(current State, mv Movement) (Result, error) {
	if !mv.QuantityDelta.IsNegative() {
		return Result{}, fmt.Errorf("%w: descargue con cantidad no negativa", domain.ErrInvalidInput)
	}
	if mv.UnitCost != nil {
		return Result{}, fmt.Errorf("%w: descargue no admite costo unitario", domain.ErrInvalidInput)
	}
	return Result{
		Quantity:           current.Quantity.Add(mv.QuantityDelta),
		AvgCost:            current.AvgCost,
		UnitCostAtMovement: current.AvgCost,
	}, nil
}

// applyAdjustment aplica el delta de un conteo físico. El costo promedio no
// cambia salvo que venga CostOverride (corrección manual de costo); un delta
// cero con override es una corrección de costo pura y es válida.
func (e Engine) applyAdjustment(current State, mv Movement) (Result, error) {
	newAvg := current.AvgCost
	if mv.CostOverride != nil {
		if mv.CostOverride.IsNegative() {
			return Result{}, fmt.Errorf("%w: costo de ajuste negativo", domain.ErrInvalidInput)
		}
		newAvg = mv.CostOverride.RoundBank(e.costPlaces)
	}
	return Result{
		Quantity:           current.Quantity.Add(mv.QuantityDelta),
		AvgCost:            newAvg,
		UnitCostAtMovement: newAvg,
	}, nil
}
