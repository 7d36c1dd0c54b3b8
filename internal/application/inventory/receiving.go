package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/costing"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
	"github.com/jhoicas/Comanda-api/pkg/logger"
)

// ReceivingUseCase coordina la recepción de compras: por cada línea del
// documento bloquea la fila de stock, corre el motor de costeo (RECEIPT),
// persiste el nuevo StockRecord y agrega el asiento al libro. Todas las líneas
// del documento se confirman en una sola transacción o ninguna.
type ReceivingUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	engine       costing.Engine
	log          *logger.Logger
}

// NewReceivingUseCase construye el coordinador de recepción.
func NewReceivingUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	engine costing.Engine,
	log *logger.Logger,
) *ReceivingUseCase {
	return &ReceivingUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		engine:       engine,
		log:          log,
	}
}

// ReceivePurchase valida y confirma un documento de compra completo.
// Validación antes de cualquier lock: cantidades positivas, costo unitario
// positivo, producto y ubicación existentes. El documento se rechaza entero si
// alguna línea falla (sin recepción parcial). No toca precios del producto.
func (uc *ReceivingUseCase) ReceivePurchase(
	ctx context.Context,
	actorID string,
	in dto.ReceivePurchaseRequest,
) (*dto.ReceivePurchaseResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: documento de compra sin líneas", domain.ErrInvalidInput)
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || line.LocationID == "" {
			return nil, fmt.Errorf("%w: línea sin producto o ubicación", domain.ErrInvalidInput)
		}
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad de compra no positiva", domain.ErrInvalidInput)
		}
		if !line.UnitCost.IsPositive() {
			return nil, fmt.Errorf("%w: costo unitario de compra no positivo", domain.ErrInvalidInput)
		}
		if err := checkCatalog(ctx, uc.productRepo, uc.locationRepo, line.ProductID, line.LocationID); err != nil {
			return nil, err
		}
	}

	refID := in.ReferenceID
	if refID == "" {
		refID = uuid.New().String()
	}
	now := time.Now()

	// Orden fijo de locks: (ubicación, producto).
	lines := make([]dto.PurchaseLineRequest, len(in.Lines))
	copy(lines, in.Lines)
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].LocationID != lines[j].LocationID {
			return lines[i].LocationID < lines[j].LocationID
		}
		return lines[i].ProductID < lines[j].ProductID
	})

	results := make([]dto.PurchaseLineResult, 0, len(lines))
	err := runWithRetry(ctx, uc.txRunner, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error {
		results = results[:0]
		for _, line := range lines {
			record, err := recordRepo.GetForUpdate(ctx, line.ProductID, line.LocationID)
			if err != nil {
				return err
			}
			unitCost := line.UnitCost
			res, err := uc.engine.Apply(
				costing.State{Quantity: record.Quantity, AvgCost: record.AvgCost},
				costing.Movement{Type: costing.TypeReceipt, QuantityDelta: line.Quantity, UnitCost: &unitCost},
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
				ProductID:          line.ProductID,
				LocationID:         line.LocationID,
				Type:               entity.MovementTypeReceipt,
				QuantityDelta:      line.Quantity,
				UnitCostAtMovement: res.UnitCostAtMovement,
				ResultingQuantity:  res.Quantity,
				ResultingAvgCost:   res.AvgCost,
				ReferenceID:        refID,
				Timestamp:          now,
				Actor:              actorID,
			}
			if err := movRepo.Append(ctx, mov); err != nil {
				return err
			}
			results = append(results, dto.PurchaseLineResult{
				ProductID:         line.ProductID,
				LocationID:        line.LocationID,
				ResultingQuantity: res.Quantity,
				ResultingAvgCost:  res.AvgCost,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("reference_id", refID).
		Int("lines", len(results)).
		Msg("documento de compra recibido")
	return &dto.ReceivePurchaseResponse{ReferenceID: refID, Lines: results}, nil
}
