package inventory

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// RecipeResolver mapea un plato vendido a su receta. Dos estrategias detrás de
// un mismo contrato: búsqueda exacta por ID (ventas POS) y búsqueda difusa por
// nombre (ventas importadas de planilla u OCR). Un resultado nil significa
// "unmatched": condición esperada y recuperable, nunca un error.
type RecipeResolver interface {
	ResolveByID(ctx context.Context, menuProductID string) (*entity.Recipe, error)
	ResolveByName(ctx context.Context, rawName string) (*entity.Recipe, error)
}

// Resolver implementación sobre el repositorio de recetas.
type Resolver struct {
	recipeRepo repository.RecipeRepository
}

// NewResolver construye el resolutor.
func NewResolver(recipeRepo repository.RecipeRepository) *Resolver {
	return &Resolver{recipeRepo: recipeRepo}
}

var _ RecipeResolver = (*Resolver)(nil)

// ResolveByID busca la receta por el ID exacto del plato.
func (r *Resolver) ResolveByID(ctx context.Context, menuProductID string) (*entity.Recipe, error) {
	return r.recipeRepo.GetByMenuProduct(ctx, menuProductID)
}

// ResolveByName busca por nombre normalizado (minúsculas, sin tildes, espacios
// colapsados). Primero igualdad exacta; si no, contención con candidato único.
// Empates o ausencia de coincidencia devuelven nil: se prefiere no descargar
// antes que descargar el ingrediente equivocado.
func (r *Resolver) ResolveByName(ctx context.Context, rawName string) (*entity.Recipe, error) {
	needle := normalizeName(rawName)
	if needle == "" {
		return nil, nil
	}
	recipes, err := r.recipeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var exact *entity.Recipe
	exactCount := 0
	var partial *entity.Recipe
	partialCount := 0
	for _, rec := range recipes {
		name := normalizeName(rec.MenuProductName)
		if name == needle {
			exact = rec
			exactCount++
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			partial = rec
			partialCount++
		}
	}
	if exactCount == 1 {
		return exact, nil
	}
	if exactCount == 0 && partialCount == 1 {
		return partial, nil
	}
	// Empate o sin coincidencia: unmatched.
	return nil, nil
}

// normalizeName normaliza para comparación: minúsculas, sin marcas diacríticas
// (NFD → quitar Mn → NFC), espacios internos colapsados.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(chain, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}
