package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
)

// ValuationPDFGenerator define el puerto de generación del reporte de
// valorización en PDF (corte del día para gerencia y contabilidad).
type ValuationPDFGenerator interface {
	GenerateValuationReport(
		ctx context.Context,
		reportDate time.Time,
		locations []dto.LocationValuationDTO,
		lowStock []dto.LowStockDTO,
		negatives []dto.NegativeStockDTO,
	) ([]byte, error)
}
