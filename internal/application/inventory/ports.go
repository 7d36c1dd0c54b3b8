package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el StockRecord y su asiento en
// el libro se escriben juntos o no se escriben.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// maxTxAttempts intentos totales ante ErrTxConflict (deadlock, serialización,
// timeout de lock) antes de propagar el error al caller.
const maxTxAttempts = 3

// runWithRetry reintenta la mutación completa un número acotado de veces
// cuando el conflicto es transitorio. Cualquier otro error se propaga directo.
func runWithRetry(ctx context.Context, runner TxRunner, fn func(
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = runner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return err
}

// rowKey identifica la fila (ubicación, producto) para el orden de locks.
type rowKey struct {
	LocationID string
	ProductID  string
}

// sortRowKeys ordena por (ubicación, producto). Toda operación que toca varias
// filas adquiere sus locks en este orden fijo para evitar deadlocks entre
// mutaciones multi-fila concurrentes.
func sortRowKeys(keys []rowKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].LocationID != keys[j].LocationID {
			return keys[i].LocationID < keys[j].LocationID
		}
		return keys[i].ProductID < keys[j].ProductID
	})
}
