package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/ports"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

// ValuationUseCase agrega lecturas del estado de stock para dashboards y
// reportes: valorización por ubicación, stock bajo y stock negativo. Solo
// lecturas snapshot, sin locks; nunca bloquea a los coordinadores que escriben.
type ValuationUseCase struct {
	valuationRepo repository.ValuationRepository
	pdfGenerator  ports.ValuationPDFGenerator
}

// NewValuationUseCase construye el reportero de valorización.
func NewValuationUseCase(valuationRepo repository.ValuationRepository, pdfGenerator ports.ValuationPDFGenerator) *ValuationUseCase {
	return &ValuationUseCase{valuationRepo: valuationRepo, pdfGenerator: pdfGenerator}
}

// ValuationByLocation devuelve Σ cantidad × costo promedio por ubicación.
func (uc *ValuationUseCase) ValuationByLocation(ctx context.Context) ([]dto.LocationValuationDTO, error) {
	rows, err := uc.valuationRepo.ValuationByLocation(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationValuationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LocationValuationDTO{
			LocationID:   r.LocationID,
			LocationCode: r.LocationCode,
			LocationName: r.LocationName,
			ItemCount:    r.ItemCount,
			TotalValue:   r.TotalValue,
		})
	}
	return out, nil
}

// LowStock lista los SKUs con cantidad ≤ mínimo (solo productos con mínimo > 0).
func (uc *ValuationUseCase) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	rows, err := uc.valuationRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockDTO{
			ProductID:   r.ProductID,
			SKU:         r.SKU,
			ProductName: r.ProductName,
			LocationID:  r.LocationID,
			Quantity:    r.Quantity,
			MinQty:      r.MinQty,
		})
	}
	return out, nil
}

// NegativeStock lista los registros con cantidad bajo cero (estado de
// advertencia visible hasta su corrección operativa).
func (uc *ValuationUseCase) NegativeStock(ctx context.Context) ([]dto.NegativeStockDTO, error) {
	rows, err := uc.valuationRepo.NegativeStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NegativeStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.NegativeStockDTO{
			ProductID:   r.ProductID,
			SKU:         r.SKU,
			ProductName: r.ProductName,
			LocationID:  r.LocationID,
			Quantity:    r.Quantity,
			AvgCost:     r.AvgCost,
		})
	}
	return out, nil
}

// ExportPDF genera el reporte de valorización del día en PDF: valorización por
// ubicación más los anexos de stock bajo y stock negativo.
func (uc *ValuationUseCase) ExportPDF(ctx context.Context) ([]byte, error) {
	locations, err := uc.ValuationByLocation(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := uc.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	negatives, err := uc.NegativeStock(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdfGenerator.GenerateValuationReport(ctx, time.Now(), locations, lowStock, negatives)
}
