package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de registros de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// Get obtiene el registro de stock de un producto en una ubicación. Si el par
// nunca ha tenido movimientos devuelve un registro en cero, sin crearlo.
func (r *StockRecordRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, location_id, quantity, avg_cost, updated_at
		FROM stock_records WHERE product_id = $1 AND location_id = $2`
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID, locationID).Scan(
		&s.ProductID, &s.LocationID, &s.Quantity, &s.AvgCost, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{
				ProductID:  productID,
				LocationID: locationID,
				Quantity:   decimal.Zero,
				AvgCost:    decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &s, nil
}

// GetForUpdate crea el registro si no existe y bloquea la fila (SELECT FOR UPDATE).
// El lock se mantiene hasta el Commit o Rollback de la transacción.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	// Creación perezosa: la fila debe existir para poder bloquearla.
	insert := `
		INSERT INTO stock_records (product_id, location_id, quantity, avg_cost, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, locationID); err != nil {
		return nil, fmt.Errorf("create stock record: %w", err)
	}

	query := `
		SELECT product_id, location_id, quantity, avg_cost, updated_at
		FROM stock_records WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID, locationID).Scan(
		&s.ProductID, &s.LocationID, &s.Quantity, &s.AvgCost, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock record for update: %w", err)
	}
	return &s, nil
}

// Save persiste cantidad y costo promedio del registro ya bloqueado.
func (r *StockRecordRepo) Save(ctx context.Context, record *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity = $3, avg_cost = $4, updated_at = now()
		WHERE product_id = $1 AND location_id = $2`
	tag, err := r.q.Exec(ctx, query, record.ProductID, record.LocationID, record.Quantity, record.AvgCost)
	if err != nil {
		return fmt.Errorf("save stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save stock record: fila no existe (%s, %s)", record.ProductID, record.LocationID)
	}
	return nil
}

// ListByLocation lista los registros de una ubicación ordenados por producto.
func (r *StockRecordRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT product_id, location_id, quantity, avg_cost, updated_at
		FROM stock_records
		WHERE location_id = $1
		ORDER BY product_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var records []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.AvgCost, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, &s)
	}
	return records, rows.Err()
}
