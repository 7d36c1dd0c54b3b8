package repository

import (
	"context"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
)

// ProductRepository define el puerto de consulta de productos.
// El motor de inventario solo lee; el CRUD de productos vive fuera del core.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// LocationRepository define el puerto de consulta de ubicaciones (conjunto fijo).
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
