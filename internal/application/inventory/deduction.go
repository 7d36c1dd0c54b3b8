package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
	"github.com/jhoicas/Comanda-api/pkg/logger"
)

// DeductionUseCase coordina el descargue de inventario por receta al cerrar
// una venta, y las mermas. Reglas de oro del flujo de sala:
//   - Una línea sin receta queda "unmatched": no se descuenta nada y se
//     devuelve para creación manual del BOM. No es un error.
//   - El descargue puede dejar cantidad negativa; se marca, nunca se bloquea.
//   - Un fallo de descargue o de resolución jamás se propaga como fallo del
//     cierre de venta: se revierte la línea completa, se loguea y se devuelve
//     como advertencia.
type DeductionUseCase struct {
	txRunner     TxRunner
	resolver     RecipeResolver
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	engine       costing.Engine
	log          *logger.Logger
}

// NewDeductionUseCase construye el coordinador de descargue.
func NewDeductionUseCase(
	txRunner TxRunner,
	resolver RecipeResolver,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	engine costing.Engine,
	log *logger.Logger,
) *DeductionUseCase {
	return &DeductionUseCase{
		txRunner:     txRunner,
		resolver:     resolver,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		engine:       engine,
		log:          log,
	}
}

// CloseSale descarga el inventario de una venta cerrada en el POS. La
// resolución es por ID exacto del plato. Cada línea de venta se confirma en su
// propia transacción: el fallo de una no revierte las demás ni la venta.
func (uc *DeductionUseCase) CloseSale(
	ctx context.Context,
	actorID string,
	in dto.CloseSaleRequest,
) (*dto.CloseSaleResponse, error) {
	saleID := in.SaleID
	if saleID == "" {
		saleID = uuid.New().String()
	}
	outcomes := make([]dto.SaleLineOutcome, 0, len(in.Lines))
	for _, line := range in.Lines {
		outcome := dto.SaleLineOutcome{MenuProductID: line.MenuProductID}
		if line.MenuProductID == "" || !line.QuantitySold.IsPositive() {
			outcome.Unmatched = true
			outcomes = append(outcomes, outcome)
			continue
		}
		recipe, err := uc.resolver.ResolveByID(ctx, line.MenuProductID)
		if err != nil {
			// Un fallo leyendo la receta tampoco tumba el cierre: la línea
			// queda sin descargar y se reporta como advertencia.
			uc.resolveFailure(&outcome, saleID, err)
			outcomes = append(outcomes, outcome)
			continue
		}
		uc.deductLine(ctx, actorID, saleID, recipe, line.QuantitySold, &outcome)
		outcomes = append(outcomes, outcome)
	}
	return &dto.CloseSaleResponse{SaleID: saleID, Lines: outcomes}, nil
}

// ImportSales descarga ventas importadas (planilla / texto OCR) resolviendo la
// receta por coincidencia difusa de nombre. Empates resuelven a unmatched.
func (uc *DeductionUseCase) ImportSales(
	ctx context.Context,
	actorID string,
	in dto.ImportSalesRequest,
) (*dto.CloseSaleResponse, error) {
	refID := in.ReferenceID
	if refID == "" {
		refID = uuid.New().String()
	}
	outcomes := make([]dto.SaleLineOutcome, 0, len(in.Lines))
	for _, line := range in.Lines {
		outcome := dto.SaleLineOutcome{RawName: line.RawName}
		if !line.QuantitySold.IsPositive() {
			outcome.Unmatched = true
			outcomes = append(outcomes, outcome)
			continue
		}
		recipe, err := uc.resolver.ResolveByName(ctx, line.RawName)
		if err != nil {
			uc.resolveFailure(&outcome, refID, err)
			outcomes = append(outcomes, outcome)
			continue
		}
		if recipe != nil {
			outcome.MenuProductID = recipe.MenuProductID
		}
		uc.deductLine(ctx, actorID, refID, recipe, line.QuantitySold, &outcome)
		outcomes = append(outcomes, outcome)
	}
	return &dto.CloseSaleResponse{SaleID: refID, Lines: outcomes}, nil
}

// resolveFailure registra un fallo de resolución de receta como advertencia de
// la línea. La venta ya ocurrió en sala: ni siquiera una base de datos caída
// durante la resolución puede bloquear el cierre.
func (uc *DeductionUseCase) resolveFailure(outcome *dto.SaleLineOutcome, referenceID string, err error) {
	uc.log.Error().Err(err).
		Str("reference_id", referenceID).
		Str("menu_product_id", outcome.MenuProductID).
		Str("raw_name", outcome.RawName).
		Msg("resolución de receta fallida; la línea no se descuenta")
	outcome.Unmatched = true
	outcome.Warnings = []dto.DeductionWarning{{Deducted: false, Detail: err.Error()}}
}

// deductLine descarga todos los ingredientes de una línea de venta en una sola
// transacción. El error no se propaga: queda en las advertencias y en el log.
func (uc *DeductionUseCase) deductLine(
	ctx context.Context,
	actorID, referenceID string,
	recipe *entity.Recipe,
	quantitySold decimal.Decimal,
	outcome *dto.SaleLineOutcome,
) {
	if recipe == nil || len(recipe.Lines) == 0 {
		outcome.Unmatched = true
		uc.log.Warn().
			Str("reference_id", referenceID).
			Str("menu_product_id", outcome.MenuProductID).
			Str("raw_name", outcome.RawName).
			Msg("línea de venta sin receta; no se descuenta stock")
		return
	}

	// Orden fijo de locks: (ubicación, producto).
	bomLines := make([]entity.BomLine, len(recipe.Lines))
	copy(bomLines, recipe.Lines)
	sort.Slice(bomLines, func(i, j int) bool {
		if bomLines[i].LocationID != bomLines[j].LocationID {
			return bomLines[i].LocationID < bomLines[j].LocationID
		}
		return bomLines[i].IngredientProductID < bomLines[j].IngredientProductID
	})

	now := time.Now()
	warnings := make([]dto.DeductionWarning, 0, len(bomLines))
	err := runWithRetry(ctx, uc.txRunner, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error {
		warnings = warnings[:0]
		for _, bom := range bomLines {
			required := bom.QuantityPerUnit.Mul(quantitySold)
			record, err := recordRepo.GetForUpdate(ctx, bom.IngredientProductID, bom.LocationID)
			if err != nil {
				return err
			}
			res, err := uc.engine.Apply(
				costing.State{Quantity: record.Quantity, AvgCost: record.AvgCost},
				costing.Movement{Type: costing.TypeDeduction, QuantityDelta: required.Neg()},
			)
			if err != nil {
				return err
			}
			record.Quantity = res.Quantity
			record.AvgCost = res.AvgCost
			record.UpdatedAt = now
			if err := recordRepo.Save(ctx, record); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:                 uuid.New().String(),
				ProductID:          bom.IngredientProductID,
				LocationID:         bom.LocationID,
				Type:               entity.MovementTypeDeduction,
				QuantityDelta:      required.Neg(),
				UnitCostAtMovement: res.UnitCostAtMovement,
				ResultingQuantity:  res.Quantity,
				ResultingAvgCost:   res.AvgCost,
				ReferenceID:        referenceID,
				Timestamp:          now,
				Actor:              actorID,
			}
			if err := movRepo.Append(ctx, mov); err != nil {
				return err
			}
			warnings = append(warnings, dto.DeductionWarning{
				IngredientProductID: bom.IngredientProductID,
				LocationID:          bom.LocationID,
				Deducted:            true,
				ResultingNegative:   res.Quantity.IsNegative(),
			})
		}
		return nil
	})
	if err != nil {
		// La venta ya ocurrió en sala: el fallo de stock se revierte completo,
		// se registra y se muestra como advertencia, nunca como fallo del cierre.
		uc.log.Error().Err(err).
			Str("reference_id", referenceID).
			Str("menu_product_id", outcome.MenuProductID).
			Msg("descargue de venta revertido")
		outcome.Warnings = failedWarnings(bomLines, err)
		return
	}
	for _, w := range warnings {
		if w.ResultingNegative {
			uc.log.Warn().
				Str("reference_id", referenceID).
				Str("product_id", w.IngredientProductID).
				Str("location_id", w.LocationID).
				Msg("stock negativo tras descargue de venta")
		}
	}
	outcome.Warnings = warnings
}

// RegisterWaste registra una merma (variante de descargue etiquetada para
// reporte; misma regla de costo que DEDUCTION). A diferencia del cierre de
// venta, el fallo sí se propaga: la merma es un formulario que puede bloquearse.
func (uc *DeductionUseCase) RegisterWaste(
	ctx context.Context,
	actorID string,
	in dto.WasteRequest,
) (*dto.AdjustmentResponse, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: merma sin producto o ubicación", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad de merma no positiva", domain.ErrInvalidInput)
	}
	if err := checkCatalog(ctx, uc.productRepo, uc.locationRepo, in.ProductID, in.LocationID); err != nil {
		return nil, err
	}

	refID := uuid.New().String()
	now := time.Now()
	var out dto.AdjustmentResponse
	err := runWithRetry(ctx, uc.txRunner, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error {
		record, err := recordRepo.GetForUpdate(ctx, in.ProductID, in.LocationID)
		if err != nil {
			return err
		}
		res, err := uc.engine.Apply(
			costing.State{Quantity: record.Quantity, AvgCost: record.AvgCost},
			costing.Movement{Type: costing.TypeWaste, QuantityDelta: in.Quantity.Neg()},
		)
		if err != nil {
			return err
		}
		record.Quantity = res.Quantity
		record.AvgCost = res.AvgCost
		record.UpdatedAt = now
		if err := recordRepo.Save(ctx, record); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:                 uuid.New().String(),
			ProductID:          in.ProductID,
			LocationID:         in.LocationID,
			Type:               entity.MovementTypeWaste,
			QuantityDelta:      in.Quantity.Neg(),
			UnitCostAtMovement: res.UnitCostAtMovement,
			ResultingQuantity:  res.Quantity,
			ResultingAvgCost:   res.AvgCost,
			ReferenceID:        refID,
			ReasonCode:         in.ReasonCode,
			Note:               in.Note,
			Timestamp:          now,
			Actor:              actorID,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		out = dto.AdjustmentResponse{
			ReferenceID:       refID,
			QuantityDelta:     in.Quantity.Neg(),
			ResultingQuantity: res.Quantity,
			ResultingAvgCost:  res.AvgCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.ResultingQuantity.IsNegative() {
		uc.log.Warn().
			Str("product_id", in.ProductID).
			Str("location_id", in.LocationID).
			Msg("stock negativo tras merma")
	}
	return &out, nil
}

// failedWarnings marca todos los ingredientes de la línea como no descargados.
func failedWarnings(bomLines []entity.BomLine, err error) []dto.DeductionWarning {
	ws := make([]dto.DeductionWarning, 0, len(bomLines))
	for _, bom := range bomLines {
		ws = append(ws, dto.DeductionWarning{
			IngredientProductID: bom.IngredientProductID,
			LocationID:          bom.LocationID,
			Deducted:            false,
			Detail:              err.Error(),
		})
	}
	return ws
}

// checkCatalog valida existencia de producto y ubicación antes de tomar locks.
func checkCatalog(
	ctx context.Context,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	productID, locationID string,
) error {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	loc, err := locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	return nil
}
