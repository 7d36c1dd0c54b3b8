package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository sobre PostgreSQL (usable con pool o tx).
// Las recetas son solo lectura para el motor de inventario.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador de recetas. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetByMenuProduct devuelve la receta del plato con sus líneas de consumo,
// o nil si el plato no tiene receta registrada.
func (r *RecipeRepo) GetByMenuProduct(ctx context.Context, menuProductID string) (*entity.Recipe, error) {
	query := `
		SELECT r.menu_product_id, p.name, r.updated_at
		FROM recipes r
		JOIN products p ON p.id = r.menu_product_id
		WHERE r.menu_product_id = $1`
	recipes, err := r.collectHeaders(ctx, query, menuProductID)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	if err := r.loadLines(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes[0], nil
}

// ListAll devuelve todas las recetas con nombre del plato y líneas, para la
// resolución por nombre de ventas importadas.
func (r *RecipeRepo) ListAll(ctx context.Context) ([]*entity.Recipe, error) {
	query := `
		SELECT r.menu_product_id, p.name, r.updated_at
		FROM recipes r
		JOIN products p ON p.id = r.menu_product_id
		ORDER BY p.name`
	recipes, err := r.collectHeaders(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepo) collectHeaders(ctx context.Context, query string, args ...any) ([]*entity.Recipe, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*entity.Recipe
	for rows.Next() {
		var rec entity.Recipe
		if err := rows.Scan(&rec.MenuProductID, &rec.MenuProductName, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, &rec)
	}
	return recipes, rows.Err()
}

func (r *RecipeRepo) loadLines(ctx context.Context, recipes []*entity.Recipe) error {
	query := `
		SELECT ingredient_product_id, location_id, quantity_per_unit, unit
		FROM bom_lines
		WHERE menu_product_id = $1
		ORDER BY location_id, ingredient_product_id`
	for _, rec := range recipes {
		rows, err := r.q.Query(ctx, query, rec.MenuProductID)
		if err != nil {
			return fmt.Errorf("list bom lines: %w", err)
		}
		rec.Lines, err = collectBomLines(rows)
		if err != nil {
			return err
		}
	}
	return nil
}

func collectBomLines(rows pgx.Rows) ([]entity.BomLine, error) {
	defer rows.Close()
	var lines []entity.BomLine
	for rows.Next() {
		var line entity.BomLine
		if err := rows.Scan(&line.IngredientProductID, &line.LocationID, &line.QuantityPerUnit, &line.Unit); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
