package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los conflictos transitorios (serialización, deadlock, lock timeout) se
// traducen a domain.ErrTxConflict para que el coordinador reintente.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recordRepo := NewStockRecordRepository(tx)
	movRepo := NewStockMovementRepository(tx)

	if err := fn(recordRepo, movRepo); err != nil {
		return mapTxConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		if mapped := mapTxConflict(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
