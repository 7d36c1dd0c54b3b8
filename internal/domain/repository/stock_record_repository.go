package repository

import (
	"context"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
)

// StockRecordRepository define el puerto de lectura/escritura del estado de
// stock por (producto, ubicación). Las mutaciones siempre pasan por
// GetForUpdate dentro de la transacción del coordinador.
type StockRecordRepository interface {
	// Get devuelve el registro, o uno en cero si el par nunca ha tenido movimientos.
	Get(ctx context.Context, productID, locationID string) (*entity.StockRecord, error)
	// GetForUpdate crea el registro de forma perezosa si no existe y bloquea la
	// fila (SELECT FOR UPDATE) por el resto de la transacción.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockRecord, error)
	// Save persiste cantidad y costo promedio del registro ya bloqueado.
	Save(ctx context.Context, record *entity.StockRecord) error
	// ListByLocation lista los registros de una ubicación (lectura sin locks).
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockRecord, error)
}
