package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT id, code, name, created_at FROM locations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByCode obtiene una ubicación por su código (MAIN, BAR, ...).
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	query := `SELECT id, code, name, created_at FROM locations WHERE code = $1`
	return r.getOne(ctx, query, code)
}

// List lista todas las ubicaciones ordenadas por código.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	query := `SELECT id, code, name, created_at FROM locations ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func (r *LocationRepo) getOne(ctx context.Context, query string, arg any) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, query, arg).Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}
