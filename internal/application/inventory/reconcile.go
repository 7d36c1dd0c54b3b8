package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// ReconcileUseCase reconstruye el estado de un (producto, ubicación) desde el
// libro de movimientos y lo compara contra el StockRecord almacenado. El libro
// es la única fuente desde la cual el estado puede reconstruirse: si el replay
// no coincide, hay un asiento huérfano o una escritura por fuera del motor.
type ReconcileUseCase struct {
	recordRepo repository.StockRecordRepository
	movRepo    repository.StockMovementRepository
	engine     costing.Engine
}

// NewReconcileUseCase construye el reconciliador.
func NewReconcileUseCase(
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
	engine costing.Engine,
) *ReconcileUseCase {
	return &ReconcileUseCase{recordRepo: recordRepo, movRepo: movRepo, engine: engine}
}

// Reconcile hace el replay completo del libro del par desde estado cero y
// compara contra el registro vigente.
func (uc *ReconcileUseCase) Reconcile(
	ctx context.Context,
	productID, locationID string,
) (*dto.ReconcileResultDTO, error) {
	movements, err := uc.movRepo.ListByRecord(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	replayed, err := uc.Replay(movements)
	if err != nil {
		return nil, err
	}
	stored, err := uc.recordRepo.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}

	return &dto.ReconcileResultDTO{
		ProductID:        productID,
		LocationID:       locationID,
		MovementCount:    len(movements),
		StoredQuantity:   stored.Quantity,
		StoredAvgCost:    stored.AvgCost,
		ReplayedQuantity: replayed.Quantity,
		ReplayedAvgCost:  replayed.AvgCost,
		Consistent:       stored.Quantity.Equal(replayed.Quantity) && stored.AvgCost.Equal(replayed.AvgCost),
	}, nil
}

// Replay aplica los movimientos en orden cronológico sobre un estado cero.
// Cada asiento del libro lleva la información suficiente para reproducirse:
// las entradas con su costo unitario, los ajustes con el costo resultante
// (que actúa como override) y los descargues sin costo.
func (uc *ReconcileUseCase) Replay(movements []*entity.StockMovement) (costing.State, error) {
	state := costing.State{Quantity: decimal.Zero, AvgCost: decimal.Zero}
	for _, m := range movements {
		mv := costing.Movement{Type: m.Type, QuantityDelta: m.QuantityDelta}
		switch m.Type {
		case entity.MovementTypeReceipt, entity.MovementTypeTransferIn:
			unitCost := m.UnitCostAtMovement
			mv.UnitCost = &unitCost
		case entity.MovementTypeAdjustment:
			override := m.UnitCostAtMovement
			mv.CostOverride = &override
		}
		res, err := uc.engine.Apply(state, mv)
		if err != nil {
			return costing.State{}, err
		}
		state = costing.State{Quantity: res.Quantity, AvgCost: res.AvgCost}
	}
	return state, nil
}
