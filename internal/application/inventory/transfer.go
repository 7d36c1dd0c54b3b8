package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
	"github.com/jhoicas/Comanda-api/pkg/logger"
)

// TransferUseCase coordina el traslado entre ubicaciones: TRANSFER_OUT en el
// origen y TRANSFER_IN en el destino con el costo promedio del origen capturado
// ANTES de aplicar la salida, todo en una sola transacción sobre ambas filas.
// Así el traslado conserva el valor total del libro: mover stock no crea ni
// destruye valor.
type TransferUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	engine       costing.Engine
	log          *logger.Logger
}

// NewTransferUseCase construye el coordinador de traslados.
func NewTransferUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	engine costing.Engine,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		engine:       engine,
		log:          log,
	}
}

// Transfer ejecuta el traslado. Rechaza origen == destino y cantidad no
// positiva antes de tomar cualquier lock. Si cualquiera de las dos patas
// falla, ambas se revierten.
func (uc *TransferUseCase) Transfer(
	ctx context.Context,
	actorID string,
	in dto.TransferRequest,
) (*dto.TransferResponse, error) {
	if in.ProductID == "" || in.SourceLocationID == "" || in.DestLocationID == "" {
		return nil, fmt.Errorf("%w: traslado incompleto", domain.ErrInvalidInput)
	}
	if in.SourceLocationID == in.DestLocationID {
		return nil, domain.ErrSameLocation
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad de traslado no positiva", domain.ErrInvalidInput)
	}
	if err := checkCatalog(ctx, uc.productRepo, uc.locationRepo, in.ProductID, in.SourceLocationID); err != nil {
		return nil, err
	}
	if loc, err := uc.locationRepo.GetByID(ctx, in.DestLocationID); err != nil {
		return nil, err
	} else if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, in.DestLocationID)
	}

	// Orden fijo de locks entre las dos filas: (ubicación, producto).
	keys := []rowKey{
		{LocationID: in.SourceLocationID, ProductID: in.ProductID},
		{LocationID: in.DestLocationID, ProductID: in.ProductID},
	}
	sortRowKeys(keys)

	refID := uuid.New().String()
	now := time.Now()
	var out dto.TransferResponse
	err := runWithRetry(ctx, uc.txRunner, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error {
		locked := make(map[string]*entity.StockRecord, 2)
		for _, k := range keys {
			record, err := recordRepo.GetForUpdate(ctx, k.ProductID, k.LocationID)
			if err != nil {
				return err
			}
			locked[k.LocationID] = record
		}
		source := locked[in.SourceLocationID]
		dest := locked[in.DestLocationID]

		// Costo del origen capturado antes de aplicar la salida.
		sourceCostBefore := source.AvgCost

		outRes, err := uc.engine.Apply(
			costing.State{Quantity: source.Quantity, AvgCost: source.AvgCost},
			costing.Movement{Type: costing.TypeTransferOut, QuantityDelta: in.Quantity.Neg()},
		)
		if err != nil {
			return err
		}
		inRes, err := uc.engine.Apply(
			costing.State{Quantity: dest.Quantity, AvgCost: dest.AvgCost},
			costing.Movement{Type: costing.TypeTransferIn, QuantityDelta: in.Quantity, UnitCost: &sourceCostBefore},
		)
		if err != nil {
			return err
		}

		source.Quantity = outRes.Quantity
		source.AvgCost = outRes.AvgCost
		source.UpdatedAt = now
		dest.Quantity = inRes.Quantity
		dest.AvgCost = inRes.AvgCost
		dest.UpdatedAt = now
		if err := recordRepo.Save(ctx, source); err != nil {
			return err
		}
		if err := recordRepo.Save(ctx, dest); err != nil {
			return err
		}

		outMov := &entity.StockMovement{
			ID:                 uuid.New().String(),
			ProductID:          in.ProductID,
			LocationID:         in.SourceLocationID,
			Type:               entity.MovementTypeTransferOut,
			QuantityDelta:      in.Quantity.Neg(),
			UnitCostAtMovement: outRes.UnitCostAtMovement,
			ResultingQuantity:  outRes.Quantity,
			ResultingAvgCost:   outRes.AvgCost,
			ReferenceID:        refID,
			Timestamp:          now,
			Actor:              actorID,
		}
		if err := movRepo.Append(ctx, outMov); err != nil {
			return err
		}
		inMov := &entity.StockMovement{
			ID:                 uuid.New().String(),
			ProductID:          in.ProductID,
			LocationID:         in.DestLocationID,
			Type:               entity.MovementTypeTransferIn,
			QuantityDelta:      in.Quantity,
			UnitCostAtMovement: inRes.UnitCostAtMovement,
			ResultingQuantity:  inRes.Quantity,
			ResultingAvgCost:   inRes.AvgCost,
			ReferenceID:        refID,
			Timestamp:          now,
			Actor:              actorID,
		}
		if err := movRepo.Append(ctx, inMov); err != nil {
			return err
		}

		out = dto.TransferResponse{
			ReferenceID:    refID,
			SourceQuantity: outRes.Quantity,
			SourceAvgCost:  outRes.AvgCost,
			DestQuantity:   inRes.Quantity,
			DestAvgCost:    inRes.AvgCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.SourceQuantity.IsNegative() {
		uc.log.Warn().
			Str("product_id", in.ProductID).
			Str("location_id", in.SourceLocationID).
			Msg("stock negativo en origen tras traslado")
	}
	return &out, nil
}
