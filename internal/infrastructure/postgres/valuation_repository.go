package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

var _ repository.ValuationRepository = (*ValuationRepo)(nil)

// ValuationRepo implementación de los reportes de valorización sobre PostgreSQL.
// Lecturas snapshot agregadas en SQL, sin locks sobre stock_records.
type ValuationRepo struct {
	q Querier
}

// NewValuationRepository construye el adaptador de reportes. Pasar pool o tx (Querier).
func NewValuationRepository(q Querier) *ValuationRepo {
	return &ValuationRepo{q: q}
}

// ValuationByLocation devuelve la valorización agregada por ubicación.
// Las ubicaciones sin registros aparecen con cero ítems y valor cero.
func (r *ValuationRepo) ValuationByLocation(ctx context.Context) ([]repository.LocationValuationResult, error) {
	query := `
		SELECT l.id, l.code, l.name,
			COUNT(s.product_id) AS item_count,
			COALESCE(SUM(s.quantity * s.avg_cost), 0) AS total_value
		FROM locations l
		LEFT JOIN stock_records s ON s.location_id = l.id
		GROUP BY l.id, l.code, l.name
		ORDER BY l.code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("valuation by location: %w", err)
	}
	defer rows.Close()

	var results []repository.LocationValuationResult
	for rows.Next() {
		var v repository.LocationValuationResult
		if err := rows.Scan(&v.LocationID, &v.LocationCode, &v.LocationName, &v.ItemCount, &v.TotalValue); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

// LowStock devuelve los SKU cuya cantidad está en o bajo su umbral mínimo.
// Los productos sin umbral (min_qty = 0) no se reportan.
func (r *ValuationRepo) LowStock(ctx context.Context) ([]repository.LowStockResult, error) {
	query := `
		SELECT s.product_id, p.sku, p.name, s.location_id, s.quantity, p.min_qty
		FROM stock_records s
		JOIN products p ON p.id = s.product_id
		WHERE p.min_qty > 0 AND s.quantity <= p.min_qty
		ORDER BY s.location_id, p.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	var results []repository.LowStockResult
	for rows.Next() {
		var v repository.LowStockResult
		if err := rows.Scan(&v.ProductID, &v.SKU, &v.ProductName, &v.LocationID, &v.Quantity, &v.MinQty); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

// NegativeStock devuelve los registros con cantidad bajo cero.
func (r *ValuationRepo) NegativeStock(ctx context.Context) ([]repository.NegativeStockResult, error) {
	query := `
		SELECT s.product_id, p.sku, p.name, s.location_id, s.quantity, s.avg_cost
		FROM stock_records s
		JOIN products p ON p.id = s.product_id
		WHERE s.quantity < 0
		ORDER BY s.location_id, p.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("negative stock: %w", err)
	}
	defer rows.Close()

	var results []repository.NegativeStockResult
	for rows.Next() {
		var v repository.NegativeStockResult
		if err := rows.Scan(&v.ProductID, &v.SKU, &v.ProductName, &v.LocationID, &v.Quantity, &v.AvgCost); err != nil {
			return nil, fmt.Errorf("scan negative stock: %w", err)
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
