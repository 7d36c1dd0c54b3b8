package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/pkg/logger"
)

func newAdjustmentUC(store *memStore) *inventory.AdjustmentUseCase {
	return inventory.NewAdjustmentUseCase(
		&memTxRunner{store: store},
		newMemProductRepo("arroz"),
		newMemLocationRepo("MAIN"),
		costing.NewEngine(0),
		logger.Nop(),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo físico / corrección manual
// ──────────────────────────────────────────────────────────────────────────────

// El conteo reporta la cantidad real; el delta sale de comparar contra el
// registro vigente dentro de la transacción. El promedio no cambia.
func TestApplyCount_DeltaContraVigente(t *testing.T) {
	store := newMemStore()
	store.seed("arroz", "MAIN", dec("12"), dec("1000"))
	uc := newAdjustmentUC(store)

	out, err := uc.ApplyCount(context.Background(), "bodega-1", dto.AdjustmentRequest{
		ProductID:      "arroz",
		LocationID:     "MAIN",
		ActualQuantity: dec("9"),
		ReasonCode:     "COUNT",
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityDelta.Equal(dec("-3")), "9 contados contra 12 en libro: delta -3, fue %s", out.QuantityDelta)
	assert.True(t, out.ResultingQuantity.Equal(dec("9")))
	assert.True(t, out.ResultingAvgCost.Equal(dec("1000")), "el conteo no toca el promedio")

	movs := store.movementsByType(entity.MovementTypeAdjustment)
	require.Len(t, movs, 1)
	assert.Equal(t, "COUNT", movs[0].ReasonCode)
	assert.True(t, movs[0].QuantityDelta.Equal(dec("-3")))
	assert.True(t, movs[0].UnitCostAtMovement.Equal(dec("1000")),
		"el asiento guarda el promedio resultante para el replay")
}

// Conteo que coincide con el registro: delta cero, el asiento queda igual como
// constancia del conteo.
func TestApplyCount_SinDiferencia(t *testing.T) {
	store := newMemStore()
	store.seed("arroz", "MAIN", dec("12"), dec("1000"))
	uc := newAdjustmentUC(store)

	out, err := uc.ApplyCount(context.Background(), "bodega-1", dto.AdjustmentRequest{
		ProductID: "arroz", LocationID: "MAIN", ActualQuantity: dec("12"), ReasonCode: "COUNT",
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityDelta.IsZero())
	assert.Equal(t, 1, store.movementCount(), "el conteo sin diferencia también deja asiento")
}

// Override de costo: corrección manual del promedio, con o sin cambio de
// cantidad.
func TestApplyCount_OverrideDeCosto(t *testing.T) {
	store := newMemStore()
	store.seed("arroz", "MAIN", dec("10"), dec("1000"))
	uc := newAdjustmentUC(store)

	out, err := uc.ApplyCount(context.Background(), "admin", dto.AdjustmentRequest{
		ProductID:      "arroz",
		LocationID:     "MAIN",
		ActualQuantity: dec("10"),
		ReasonCode:     "COST_FIX",
		CostOverride:   decPtr("1150"),
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityDelta.IsZero())
	assert.True(t, out.ResultingAvgCost.Equal(dec("1150")))

	rec := store.record("arroz", "MAIN")
	assert.True(t, rec.AvgCost.Equal(dec("1150")))
}

// Primer movimiento de un par puede ser un conteo: el registro se crea
// perezoso en cero y el delta es la cantidad contada.
func TestApplyCount_CreaRegistroPerezoso(t *testing.T) {
	store := newMemStore()
	uc := newAdjustmentUC(store)

	out, err := uc.ApplyCount(context.Background(), "bodega-1", dto.AdjustmentRequest{
		ProductID: "arroz", LocationID: "MAIN", ActualQuantity: dec("7"), ReasonCode: "COUNT",
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityDelta.Equal(dec("7")))
	assert.True(t, out.ResultingQuantity.Equal(dec("7")))
	assert.True(t, out.ResultingAvgCost.IsZero(), "sin información de costo el promedio queda en cero")
}

// Validaciones: motivo obligatorio, override no negativo, catálogo existente.
func TestApplyCount_Validaciones(t *testing.T) {
	store := newMemStore()
	uc := newAdjustmentUC(store)
	ctx := context.Background()

	_, err := uc.ApplyCount(ctx, "x", dto.AdjustmentRequest{
		ProductID: "arroz", LocationID: "MAIN", ActualQuantity: dec("5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin código de motivo")

	_, err = uc.ApplyCount(ctx, "x", dto.AdjustmentRequest{
		ProductID: "arroz", LocationID: "MAIN", ActualQuantity: dec("5"),
		ReasonCode: "COUNT", CostOverride: decPtr("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "override negativo")

	_, err = uc.ApplyCount(ctx, "x", dto.AdjustmentRequest{
		ProductID: "quinua", LocationID: "MAIN", ActualQuantity: dec("5"), ReasonCode: "COUNT",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 0, store.movementCount())
}

// Ante conflicto transitorio el conteo se reintenta; el delta se recalcula en
// cada intento contra la fila recién bloqueada.
func TestApplyCount_ReintentaTrasConflicto(t *testing.T) {
	store := newMemStore()
	store.seed("arroz", "MAIN", dec("12"), dec("1000"))
	runner := &conflictTxRunner{inner: memTxRunner{store: store}, failures: 1}
	uc := inventory.NewAdjustmentUseCase(
		runner, newMemProductRepo("arroz"), newMemLocationRepo("MAIN"),
		costing.NewEngine(0), logger.Nop(),
	)

	out, err := uc.ApplyCount(context.Background(), "bodega-1", dto.AdjustmentRequest{
		ProductID: "arroz", LocationID: "MAIN", ActualQuantity: dec("10"), ReasonCode: "COUNT",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, runner.attempts)
	assert.True(t, out.QuantityDelta.Equal(dec("-2")))
	assert.Equal(t, 1, store.movementCount(), "el reintento no duplica el asiento")
}
