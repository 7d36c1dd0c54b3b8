package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/pkg/logger"
)

func newReconcileUC(store *memStore) *inventory.ReconcileUseCase {
	return inventory.NewReconcileUseCase(
		&memRecordRepo{store: store},
		&memMovementRepo{store: store},
		costing.NewEngine(0),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación: replay del libro contra el estado almacenado
// ──────────────────────────────────────────────────────────────────────────────

// La historia completa (compras, ventas, conteo, traslado, merma) escrita por
// los coordinadores reproduce exactamente el registro almacenado al rehacerla
// desde cero.
func TestReconcile_ReplayReproduceElEstado(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	recUC := inventory.NewReceivingUseCase(
		&memTxRunner{store: store}, newMemProductRepo("pan"), newMemLocationRepo("MAIN", "BAR"),
		costing.NewEngine(0), logger.Nop(),
	)
	adjUC := inventory.NewAdjustmentUseCase(
		&memTxRunner{store: store}, newMemProductRepo("pan"), newMemLocationRepo("MAIN", "BAR"),
		costing.NewEngine(0), logger.Nop(),
	)
	trUC := inventory.NewTransferUseCase(
		&memTxRunner{store: store}, newMemProductRepo("pan"), newMemLocationRepo("MAIN", "BAR"),
		costing.NewEngine(0), logger.Nop(),
	)
	receta := &entity.Recipe{
		MenuProductID: "pan-solo",
		Lines: []entity.BomLine{
			{IngredientProductID: "pan", LocationID: "MAIN", QuantityPerUnit: dec("1"), Unit: "und"},
		},
	}
	dedUC := inventory.NewDeductionUseCase(
		&memTxRunner{store: store}, inventory.NewResolver(&memRecipeRepo{recipes: []*entity.Recipe{receta}}),
		newMemProductRepo("pan"), newMemLocationRepo("MAIN", "BAR"),
		costing.NewEngine(0), logger.Nop(),
	)

	// Dos compras a costos distintos, una venta, un conteo con faltante,
	// un traslado a barra y una merma.
	_, err := recUC.ReceivePurchase(ctx, "admin", dto.ReceivePurchaseRequest{
		Lines: []dto.PurchaseLineRequest{{ProductID: "pan", LocationID: "MAIN", Quantity: dec("10"), UnitCost: dec("500")}},
	})
	require.NoError(t, err)
	_, err = recUC.ReceivePurchase(ctx, "admin", dto.ReceivePurchaseRequest{
		Lines: []dto.PurchaseLineRequest{{ProductID: "pan", LocationID: "MAIN", Quantity: dec("5"), UnitCost: dec("800")}},
	})
	require.NoError(t, err)
	_, err = dedUC.CloseSale(ctx, "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{{MenuProductID: "pan-solo", QuantitySold: dec("4")}},
	})
	require.NoError(t, err)
	_, err = adjUC.ApplyCount(ctx, "bodega-1", dto.AdjustmentRequest{
		ProductID: "pan", LocationID: "MAIN", ActualQuantity: dec("10"), ReasonCode: "COUNT",
	})
	require.NoError(t, err)
	_, err = trUC.Transfer(ctx, "bodega-1", dto.TransferRequest{
		ProductID: "pan", SourceLocationID: "MAIN", DestLocationID: "BAR", Quantity: dec("3"),
	})
	require.NoError(t, err)
	_, err = dedUC.RegisterWaste(ctx, "bodega-1", dto.WasteRequest{
		ProductID: "pan", LocationID: "MAIN", Quantity: dec("1"), ReasonCode: "DAMAGE",
	})
	require.NoError(t, err)

	uc := newReconcileUC(store)
	for _, loc := range []string{"MAIN", "BAR"} {
		res, err := uc.Reconcile(ctx, "pan", loc)
		require.NoError(t, err)
		assert.True(t, res.Consistent, "replay de %s: almacenado (%s, %s) vs rehecho (%s, %s)",
			loc, res.StoredQuantity, res.StoredAvgCost, res.ReplayedQuantity, res.ReplayedAvgCost)
	}
}

// Una escritura por fuera del motor (sin asiento en el libro) se detecta como
// inconsistencia.
func TestReconcile_DetectaEscrituraHuerfana(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	recUC := inventory.NewReceivingUseCase(
		&memTxRunner{store: store}, newMemProductRepo("pan"), newMemLocationRepo("MAIN"),
		costing.NewEngine(0), logger.Nop(),
	)
	_, err := recUC.ReceivePurchase(ctx, "admin", dto.ReceivePurchaseRequest{
		Lines: []dto.PurchaseLineRequest{{ProductID: "pan", LocationID: "MAIN", Quantity: dec("10"), UnitCost: dec("500")}},
	})
	require.NoError(t, err)

	// Manipulación directa del registro, sin pasar por un coordinador.
	store.seed("pan", "MAIN", dec("12"), dec("500"))

	res, err := newReconcileUC(store).Reconcile(ctx, "pan", "MAIN")
	require.NoError(t, err)
	assert.False(t, res.Consistent)
	assert.True(t, res.StoredQuantity.Equal(dec("12")))
	assert.True(t, res.ReplayedQuantity.Equal(dec("10")))
}

// Par sin movimientos: replay y almacenado coinciden en cero.
func TestReconcile_ParVacio(t *testing.T) {
	store := newMemStore()
	res, err := newReconcileUC(store).Reconcile(context.Background(), "pan", "MAIN")
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 0, res.MovementCount)
	assert.True(t, res.StoredQuantity.IsZero())
	assert.True(t, res.ReplayedQuantity.IsZero())
}

// El replay en frío de un libro construido a mano aplica cada tipo de asiento
// con su regla de costo: entradas con su costo, ajustes como override,
// descargues sin costo.
func TestReplay_AplicaCadaTipoDeAsiento(t *testing.T) {
	uc := inventory.NewReconcileUseCase(nil, nil, costing.NewEngine(0))

	movs := []*entity.StockMovement{
		{Type: entity.MovementTypeReceipt, QuantityDelta: dec("10"), UnitCostAtMovement: dec("1000")},
		{Type: entity.MovementTypeReceipt, QuantityDelta: dec("5"), UnitCostAtMovement: dec("1600")},
		{Type: entity.MovementTypeDeduction, QuantityDelta: dec("-3")},
		{Type: entity.MovementTypeAdjustment, QuantityDelta: dec("-2"), UnitCostAtMovement: dec("1200")},
		{Type: entity.MovementTypeTransferOut, QuantityDelta: dec("-4")},
		{Type: entity.MovementTypeWaste, QuantityDelta: dec("-1")},
	}
	state, err := uc.Replay(movs)
	require.NoError(t, err)
	assert.True(t, state.Quantity.Equal(dec("5")), "10+5-3-2-4-1 = 5, fue %s", state.Quantity)
	assert.True(t, state.AvgCost.Equal(dec("1200")), "promedio final 1200, fue %s", state.AvgCost)

	state, err = uc.Replay(nil)
	require.NoError(t, err)
	assert.True(t, state.Quantity.Equal(decimal.Zero))
}
