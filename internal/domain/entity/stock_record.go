package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord es la unidad de estado mutable del inventario: cantidad y costo
// promedio ponderado de un producto en una ubicación.
//
// Invariantes:
//   - Quantity puede ser negativa (venta con inventario desactualizado).
//   - AvgCost nunca es negativo. Es cero solo si nunca hubo un movimiento con
//     costo; una vez fijado, persiste aunque la cantidad vuelva a cero, y se
//     reutiliza si la cantidad sube sin información de costo nueva.
//   - Se crea de forma perezosa con el primer movimiento del par (producto,
//     ubicación); nunca se borra, solo se lleva a cero.
type StockRecord struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	AvgCost    decimal.Decimal
	UpdatedAt  time.Time
}

// IsNegative indica si el registro quedó con cantidad bajo cero (estado de
// advertencia, nunca de bloqueo).
func (s *StockRecord) IsNegative() bool {
	return s.Quantity.IsNegative()
}

// Value devuelve la valorización del registro (cantidad × costo promedio).
func (s *StockRecord) Value() decimal.Decimal {
	return s.Quantity.Mul(s.AvgCost)
}
