package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Comanda-api/internal/domain"
)

// Querier abstrae pool y tx: los repositorios funcionan igual con cualquiera
// de los dos. pgxpool.Pool y pgx.Tx lo implementan.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Códigos de PostgreSQL que señalan conflicto transitorio de concurrencia:
// serialización (40001), deadlock (40P01) y timeout de lock (55P03).
var txConflictCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// mapTxConflict traduce los conflictos transitorios a domain.ErrTxConflict
// para que el coordinador pueda reintentar la mutación completa.
func mapTxConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := txConflictCodes[pgErr.Code]; ok {
			return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
		}
	}
	return err
}
