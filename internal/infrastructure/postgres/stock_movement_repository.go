package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, location_id, type, quantity_delta, unit_cost_at_movement,
		resulting_quantity, resulting_avg_cost, reference_id, reason_code, note, ts, actor`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro no se actualiza ni borra.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento del libro.
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.Timestamp.IsZero() {
		movement.Timestamp = time.Now().UTC()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.LocationID, movement.Type,
		movement.QuantityDelta, movement.UnitCostAtMovement,
		movement.ResultingQuantity, movement.ResultingAvgCost,
		nullIfEmpty(movement.ReferenceID), nullIfEmpty(movement.ReasonCode),
		nullIfEmpty(movement.Note), movement.Timestamp, nullIfEmpty(movement.Actor),
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByRecord lista los movimientos de un (producto, ubicación) en orden
// cronológico ascendente, entrada del replay de reconciliación.
func (r *StockMovementRepo) ListByRecord(ctx context.Context, productID, locationID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND location_id = $2
		ORDER BY ts ASC, id ASC`
	rows, err := r.q.Query(ctx, query, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list by record: %w", err)
	}
	return collectMovements(rows)
}

// ListByReference lista los movimientos generados por un mismo documento
// (compra, venta, traslado).
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_id = $1
		ORDER BY ts ASC, id ASC`
	rows, err := r.q.Query(ctx, query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list by reference: %w", err)
	}
	return collectMovements(rows)
}

// ListByLocation lista movimientos de una ubicación en un rango de fechas.
func (r *StockMovementRepo) ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE location_id = $1`
	args := []any{locationID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND ts >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND ts <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by location: %w", err)
	}
	return collectMovements(rows)
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var referenceID, reasonCode, note, actor *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.LocationID, &m.Type,
		&m.QuantityDelta, &m.UnitCostAtMovement,
		&m.ResultingQuantity, &m.ResultingAvgCost,
		&referenceID, &reasonCode, &note, &m.Timestamp, &actor,
	)
	if err != nil {
		return nil, err
	}
	m.ReferenceID = deref(referenceID)
	m.ReasonCode = deref(reasonCode)
	m.Note = deref(note)
	m.Actor = deref(actor)
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
