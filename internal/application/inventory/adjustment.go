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

// AdjustmentUseCase coordina el conteo físico y la corrección manual.
// El delta se calcula contra la cantidad vigente DENTRO de la transacción, con
// la fila bloqueada, para que el conteo no pise una venta concurrente.
// El coordinador es agnóstico del canal de entrada: el conteo por QR usa el
// mismo contrato y solo difiere en la autenticación (token de ubicación).
type AdjustmentUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	engine       costing.Engine
	log          *logger.Logger
}

// NewAdjustmentUseCase construye el coordinador de ajustes.
func NewAdjustmentUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	engine costing.Engine,
	log *logger.Logger,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		engine:       engine,
		log:          log,
	}
}

// ApplyCount aplica un conteo físico: delta = actual - vigente. El costo
// promedio no cambia salvo override explícito. reason_code y nota quedan en el
// asiento de auditoría.
func (uc *AdjustmentUseCase) ApplyCount(
	ctx context.Context,
	actorID string,
	in dto.AdjustmentRequest,
) (*dto.AdjustmentResponse, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: ajuste sin producto o ubicación", domain.ErrInvalidInput)
	}
	if in.ReasonCode == "" {
		return nil, fmt.Errorf("%w: ajuste sin código de motivo", domain.ErrInvalidInput)
	}
	if in.CostOverride != nil && in.CostOverride.IsNegative() {
		return nil, fmt.Errorf("%w: override de costo negativo", domain.ErrInvalidInput)
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
		delta := in.ActualQuantity.Sub(record.Quantity)
		res, err := uc.engine.Apply(
			costing.State{Quantity: record.Quantity, AvgCost: record.AvgCost},
			costing.Movement{Type: costing.TypeAdjustment, QuantityDelta: delta, CostOverride: in.CostOverride},
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
			Type:               entity.MovementTypeAdjustment,
			QuantityDelta:      delta,
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
			QuantityDelta:     delta,
			ResultingQuantity: res.Quantity,
			ResultingAvgCost:  res.AvgCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("location_id", in.LocationID).
		Str("reason_code", in.ReasonCode).
		Str("delta", out.QuantityDelta.String()).
		Msg("conteo físico aplicado")
	return &out, nil
}
