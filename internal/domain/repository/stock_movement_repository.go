package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos.
// El libro es append-only: no existen Update ni Delete.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByRecord devuelve los movimientos de un (producto, ubicación) en orden
	// cronológico ascendente; es la entrada del replay de reconciliación.
	ListByRecord(ctx context.Context, productID, locationID string) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
	ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
