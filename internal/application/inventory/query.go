package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// StockQueryUseCase lecturas del estado de stock y del libro de movimientos.
// Solo consultas snapshot, sin locks.
type StockQueryUseCase struct {
	recordRepo repository.StockRecordRepository
	movRepo    repository.StockMovementRepository
}

// NewStockQueryUseCase construye el consultor.
func NewStockQueryUseCase(recordRepo repository.StockRecordRepository, movRepo repository.StockMovementRepository) *StockQueryUseCase {
	return &StockQueryUseCase{recordRepo: recordRepo, movRepo: movRepo}
}

// GetRecord devuelve el estado vigente del par; en cero si nunca tuvo movimientos.
func (uc *StockQueryUseCase) GetRecord(ctx context.Context, productID, locationID string) (*dto.StockRecordDTO, error) {
	record, err := uc.recordRepo.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	out := toRecordDTO(record)
	return &out, nil
}

// ListByLocation lista los registros de stock de una ubicación.
func (uc *StockQueryUseCase) ListByLocation(ctx context.Context, locationID string, page dto.PageRequest) ([]dto.StockRecordDTO, error) {
	page.DefaultPage()
	records, err := uc.recordRepo.ListByLocation(ctx, locationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return out, nil
}

// ListMovements lista el libro de una ubicación en un rango de fechas.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, locationID string, from, to *time.Time, page dto.PageRequest) ([]dto.StockMovementDTO, error) {
	page.DefaultPage()
	movements, err := uc.movRepo.ListByLocation(ctx, locationID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toMovementDTOs(movements), nil
}

// MovementsByReference lista los asientos generados por un mismo documento.
func (uc *StockQueryUseCase) MovementsByReference(ctx context.Context, referenceID string) ([]dto.StockMovementDTO, error) {
	movements, err := uc.movRepo.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	return toMovementDTOs(movements), nil
}

func toRecordDTO(r *entity.StockRecord) dto.StockRecordDTO {
	return dto.StockRecordDTO{
		ProductID:  r.ProductID,
		LocationID: r.LocationID,
		Quantity:   r.Quantity,
		AvgCost:    r.AvgCost,
		Value:      r.Value(),
		Negative:   r.IsNegative(),
		UpdatedAt:  r.UpdatedAt,
	}
}

func toMovementDTOs(movements []*entity.StockMovement) []dto.StockMovementDTO {
	out := make([]dto.StockMovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.StockMovementDTO{
			ID:                 m.ID,
			ProductID:          m.ProductID,
			LocationID:         m.LocationID,
			Type:               m.Type,
			QuantityDelta:      m.QuantityDelta,
			UnitCostAtMovement: m.UnitCostAtMovement,
			ResultingQuantity:  m.ResultingQuantity,
			ResultingAvgCost:   m.ResultingAvgCost,
			ReferenceID:        m.ReferenceID,
			ReasonCode:         m.ReasonCode,
			Note:               m.Note,
			Timestamp:          m.Timestamp,
			Actor:              m.Actor,
		})
	}
	return out
}
