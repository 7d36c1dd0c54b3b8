package repository

import (
	"context"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
)

// RecipeRepository define el puerto de lectura de recetas (BOM).
// Las recetas se editan fuera del motor; aquí son solo lectura.
type RecipeRepository interface {
	// GetByMenuProduct devuelve la receta del plato, o nil si no existe
	// (línea sin receta = "unmatched", condición esperada, no error).
	GetByMenuProduct(ctx context.Context, menuProductID string) (*entity.Recipe, error)
	// ListAll devuelve todas las recetas con el nombre del plato, para la
	// resolución difusa por nombre de las ventas importadas.
	ListAll(ctx context.Context) ([]*entity.Recipe, error)
}
