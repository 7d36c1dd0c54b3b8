package inventory_test

import (
	"context"
	"errors"
	"sync"
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

// Receta de prueba: una hamburguesa consume carne de cocina y pan de bodega.
func hamburguesa() *entity.Recipe {
	return &entity.Recipe{
		MenuProductID:   "hamburguesa",
		MenuProductName: "Hamburguesa Clásica",
		Lines: []entity.BomLine{
			{IngredientProductID: "carne", LocationID: "KITCHEN", QuantityPerUnit: dec("0.2"), Unit: "kg"},
			{IngredientProductID: "pan", LocationID: "MAIN", QuantityPerUnit: dec("1"), Unit: "und"},
		},
	}
}

func newDeductionUC(store *memStore, recipes ...*entity.Recipe) *inventory.DeductionUseCase {
	return inventory.NewDeductionUseCase(
		&memTxRunner{store: store},
		inventory.NewResolver(&memRecipeRepo{recipes: recipes}),
		newMemProductRepo("carne", "pan"),
		newMemLocationRepo("MAIN", "KITCHEN"),
		costing.NewEngine(0),
		logger.Nop(),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre de venta (descargue por receta)
// ──────────────────────────────────────────────────────────────────────────────

// Venta de 3 hamburguesas: descuenta 0.6 kg de carne y 3 panes, un asiento por
// ingrediente, sin tocar el costo promedio de ninguno.
func TestCloseSale_DescargaPorReceta(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	store.seed("pan", "MAIN", dec("40"), dec("500"))
	uc := newDeductionUC(store, hamburguesa())

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		SaleID: "VTA-100",
		Lines:  []dto.SaleLineRequest{{MenuProductID: "hamburguesa", QuantitySold: dec("3")}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.False(t, out.Lines[0].Unmatched)
	require.Len(t, out.Lines[0].Warnings, 2)
	for _, w := range out.Lines[0].Warnings {
		assert.True(t, w.Deducted)
		assert.False(t, w.ResultingNegative)
	}

	carne := store.record("carne", "KITCHEN")
	assert.True(t, carne.Quantity.Equal(dec("4.4")), "5 - 3*0.2 = 4.4, fue %s", carne.Quantity)
	assert.True(t, carne.AvgCost.Equal(dec("20000")), "el descargue no toca el promedio")
	pan := store.record("pan", "MAIN")
	assert.True(t, pan.Quantity.Equal(dec("37")))
	assert.True(t, pan.AvgCost.Equal(dec("500")))
	assert.Equal(t, 2, store.movementCount())
}

// Línea sin receta: unmatched, no se descuenta nada y el cierre no falla.
func TestCloseSale_SinRecetaEsUnmatched(t *testing.T) {
	store := newMemStore()
	uc := newDeductionUC(store)

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{{MenuProductID: "plato-fantasma", QuantitySold: dec("1")}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Unmatched)
	assert.Empty(t, out.Lines[0].Warnings)
	assert.Equal(t, 0, store.movementCount())
}

// Línea inválida (sin ID o cantidad no positiva) también resuelve a unmatched.
func TestCloseSale_LineaInvalidaEsUnmatched(t *testing.T) {
	store := newMemStore()
	uc := newDeductionUC(store, hamburguesa())

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{
			{MenuProductID: "", QuantitySold: dec("1")},
			{MenuProductID: "hamburguesa", QuantitySold: dec("0")},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Lines[0].Unmatched)
	assert.True(t, out.Lines[1].Unmatched)
	assert.Equal(t, 0, store.movementCount())
}

// El descargue puede dejar cantidad negativa: se marca en la advertencia y el
// promedio queda intacto para valorizar la deuda.
func TestCloseSale_StockNegativoSeMarcaNoSeBloquea(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("0.1"), dec("20000"))
	store.seed("pan", "MAIN", dec("1"), dec("500"))
	uc := newDeductionUC(store, hamburguesa())

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{{MenuProductID: "hamburguesa", QuantitySold: dec("2")}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines[0].Warnings, 2)

	negativos := 0
	for _, w := range out.Lines[0].Warnings {
		assert.True(t, w.Deducted, "negativo se marca, nunca se bloquea")
		if w.ResultingNegative {
			negativos++
		}
	}
	assert.Equal(t, 2, negativos, "carne y pan quedan bajo cero")

	carne := store.record("carne", "KITCHEN")
	assert.True(t, carne.Quantity.Equal(dec("-0.3")))
	assert.True(t, carne.AvgCost.Equal(dec("20000")), "el promedio sobrevive al negativo")
}

// Un fallo de transacción durante el descargue nunca tumba el cierre de venta:
// la línea completa se revierte y vuelve como advertencias no descargadas.
func TestCloseSale_FalloDeTxEsAdvertenciaNoError(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	store.seed("pan", "MAIN", dec("40"), dec("500"))
	store.appendErr = errors.New("fallo de escritura")
	uc := newDeductionUC(store, hamburguesa())

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{{MenuProductID: "hamburguesa", QuantitySold: dec("1")}},
	})
	require.NoError(t, err, "el cierre de venta no falla por stock")
	require.Len(t, out.Lines, 1)
	assert.False(t, out.Lines[0].Unmatched)
	require.Len(t, out.Lines[0].Warnings, 2)
	for _, w := range out.Lines[0].Warnings {
		assert.False(t, w.Deducted)
		assert.NotEmpty(t, w.Detail)
	}

	carne := store.record("carne", "KITCHEN")
	assert.True(t, carne.Quantity.Equal(dec("5")), "la línea fallida se revierte completa")
	assert.Equal(t, 0, store.movementCount())
}

// Un fallo leyendo la receta (base de recetas caída) tampoco tumba el cierre:
// la línea queda unmatched con el detalle del error, nada se descuenta.
func TestCloseSale_FalloDeResolucionEsAdvertencia(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	uc := inventory.NewDeductionUseCase(
		&memTxRunner{store: store},
		&failResolver{err: errors.New("base de recetas caída")},
		newMemProductRepo("carne", "pan"),
		newMemLocationRepo("MAIN", "KITCHEN"),
		costing.NewEngine(0),
		logger.Nop(),
	)

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{{MenuProductID: "hamburguesa", QuantitySold: dec("1")}},
	})
	require.NoError(t, err, "el cierre de venta no falla por la resolución")
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Unmatched)
	require.Len(t, out.Lines[0].Warnings, 1)
	assert.False(t, out.Lines[0].Warnings[0].Deducted)
	assert.Contains(t, out.Lines[0].Warnings[0].Detail, "base de recetas caída")
	assert.Equal(t, 0, store.movementCount())
}

// El fallo de resolución de una línea no arrastra a las demás: las siguientes
// se resuelven y descargan normalmente.
func TestCloseSale_FalloDeResolucionNoArrastraOtrasLineas(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	store.seed("pan", "MAIN", dec("40"), dec("500"))
	uc := inventory.NewDeductionUseCase(
		&memTxRunner{store: store},
		&failResolver{
			inner: inventory.NewResolver(&memRecipeRepo{recipes: []*entity.Recipe{hamburguesa()}}),
			only:  "plato-averiado",
			err:   errors.New("timeout"),
		},
		newMemProductRepo("carne", "pan"),
		newMemLocationRepo("MAIN", "KITCHEN"),
		costing.NewEngine(0),
		logger.Nop(),
	)

	out, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
		Lines: []dto.SaleLineRequest{
			{MenuProductID: "plato-averiado", QuantitySold: dec("1")},
			{MenuProductID: "hamburguesa", QuantitySold: dec("1")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	assert.True(t, out.Lines[0].Unmatched)
	assert.False(t, out.Lines[1].Unmatched, "la segunda línea se descarga normal")

	pan := store.record("pan", "MAIN")
	assert.True(t, pan.Quantity.Equal(dec("39")))
}

// Misma regla para ventas importadas: el fallo de resolución por nombre es una
// advertencia de la fila, nunca un error del import.
func TestImportSales_FalloDeResolucionEsAdvertencia(t *testing.T) {
	store := newMemStore()
	uc := inventory.NewDeductionUseCase(
		&memTxRunner{store: store},
		&failResolver{err: errors.New("base de recetas caída")},
		newMemProductRepo("carne", "pan"),
		newMemLocationRepo("MAIN", "KITCHEN"),
		costing.NewEngine(0),
		logger.Nop(),
	)

	out, err := uc.ImportSales(context.Background(), "admin", dto.ImportSalesRequest{
		Lines: []dto.ImportedSaleLineRequest{{RawName: "hamburguesa clasica", QuantitySold: dec("1")}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Unmatched)
	require.Len(t, out.Lines[0].Warnings, 1)
	assert.NotEmpty(t, out.Lines[0].Warnings[0].Detail)
	assert.Equal(t, 0, store.movementCount())
}

// Descargues concurrentes sobre el mismo registro: N ventas de una unidad
// sobre 100 dejan exactamente 100-N, sin perder ni duplicar descuentos.
func TestCloseSale_DescarguesConcurrentes(t *testing.T) {
	const ventas = 25
	store := newMemStore()
	store.seed("pan", "MAIN", dec("100"), dec("500"))
	receta := &entity.Recipe{
		MenuProductID: "pan-solo",
		Lines: []entity.BomLine{
			{IngredientProductID: "pan", LocationID: "MAIN", QuantityPerUnit: dec("1"), Unit: "und"},
		},
	}
	uc := newDeductionUC(store, receta)

	var wg sync.WaitGroup
	for i := 0; i < ventas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CloseSale(context.Background(), "mesero-1", dto.CloseSaleRequest{
				Lines: []dto.SaleLineRequest{{MenuProductID: "pan-solo", QuantitySold: dec("1")}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec := store.record("pan", "MAIN")
	assert.True(t, rec.Quantity.Equal(dec("75")), "100 - 25 = 75, fue %s", rec.Quantity)
	assert.True(t, rec.AvgCost.Equal(dec("500")))
	assert.Equal(t, ventas, store.movementCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas importadas (resolución por nombre)
// ──────────────────────────────────────────────────────────────────────────────

// La planilla trae nombres crudos: los que resuelven descuentan, los que no
// quedan unmatched sin afectar al resto.
func TestImportSales_ResuelvePorNombre(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	store.seed("pan", "MAIN", dec("40"), dec("500"))
	uc := newDeductionUC(store, hamburguesa())

	out, err := uc.ImportSales(context.Background(), "admin", dto.ImportSalesRequest{
		Lines: []dto.ImportedSaleLineRequest{
			{RawName: "hamburguesa clasica", QuantitySold: dec("2")},
			{RawName: "ceviche mixto", QuantitySold: dec("1")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)

	assert.False(t, out.Lines[0].Unmatched, "el nombre sin tildes resuelve igual")
	assert.Equal(t, "hamburguesa", out.Lines[0].MenuProductID)
	assert.True(t, out.Lines[1].Unmatched)
	assert.Equal(t, "ceviche mixto", out.Lines[1].RawName)

	pan := store.record("pan", "MAIN")
	assert.True(t, pan.Quantity.Equal(dec("38")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Mermas
// ──────────────────────────────────────────────────────────────────────────────

// La merma descuenta al promedio vigente y deja asiento WASTE con motivo.
func TestRegisterWaste_DescargaConMotivo(t *testing.T) {
	store := newMemStore()
	store.seed("carne", "KITCHEN", dec("5"), dec("20000"))
	uc := newDeductionUC(store)

	out, err := uc.RegisterWaste(context.Background(), "bodega-1", dto.WasteRequest{
		ProductID:  "carne",
		LocationID: "KITCHEN",
		Quantity:   dec("0.5"),
		ReasonCode: "EXPIRED",
		Note:       "vencida en nevera 2",
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityDelta.Equal(dec("-0.5")))
	assert.True(t, out.ResultingQuantity.Equal(dec("4.5")))
	assert.True(t, out.ResultingAvgCost.Equal(dec("20000")))

	movs := store.movementsByType(entity.MovementTypeWaste)
	require.Len(t, movs, 1)
	assert.Equal(t, "EXPIRED", movs[0].ReasonCode)
	assert.Equal(t, "vencida en nevera 2", movs[0].Note)
	assert.Equal(t, "bodega-1", movs[0].Actor)
	assert.True(t, movs[0].UnitCostAtMovement.Equal(dec("20000")))
}

// A diferencia del cierre de venta, la merma sí propaga sus errores: es un
// formulario que puede rechazarse.
func TestRegisterWaste_PropagaErrores(t *testing.T) {
	store := newMemStore()
	uc := newDeductionUC(store)
	ctx := context.Background()

	_, err := uc.RegisterWaste(ctx, "bodega-1", dto.WasteRequest{
		ProductID: "carne", LocationID: "KITCHEN", Quantity: dec("0"), ReasonCode: "DAMAGE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")

	_, err = uc.RegisterWaste(ctx, "bodega-1", dto.WasteRequest{
		ProductID: "trufa", LocationID: "KITCHEN", Quantity: dec("1"), ReasonCode: "DAMAGE",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	store.appendErr = errors.New("fallo de escritura")
	_, err = uc.RegisterWaste(ctx, "bodega-1", dto.WasteRequest{
		ProductID: "carne", LocationID: "KITCHEN", Quantity: dec("1"), ReasonCode: "DAMAGE",
	})
	require.Error(t, err, "el fallo de tx sí se propaga en mermas")
	assert.Equal(t, 0, store.movementCount())
}
