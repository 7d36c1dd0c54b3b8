package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
)

// ValuationHandler maneja reportes, consultas de stock y reconciliación (protegido).
type ValuationHandler struct {
	valuation *inventory.ValuationUseCase
	query     *inventory.StockQueryUseCase
	reconcile *inventory.ReconcileUseCase
}

// NewValuationHandler construye el handler.
func NewValuationHandler(
	valuation *inventory.ValuationUseCase,
	query *inventory.StockQueryUseCase,
	reconcile *inventory.ReconcileUseCase,
) *ValuationHandler {
	return &ValuationHandler{valuation: valuation, query: query, reconcile: reconcile}
}

// GetValuation godoc
// @Summary      Valorización por ubicación
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LocationValuationDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation [get]
func (h *ValuationHandler) GetValuation(c *fiber.Ctx) error {
	out, err := h.valuation.ValuationByLocation(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "locations": out})
}

// GetLowStock godoc
// @Summary      SKUs en o bajo su mínimo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ValuationHandler) GetLowStock(c *fiber.Ctx) error {
	out, err := h.valuation.LowStock(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// GetNegativeStock godoc
// @Summary      Registros con stock negativo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.NegativeStockDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/negative-stock [get]
func (h *ValuationHandler) GetNegativeStock(c *fiber.Ctx) error {
	out, err := h.valuation.NegativeStock(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// ExportValuationPDF godoc
// @Summary      Reporte de valorización en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation/pdf [get]
func (h *ValuationHandler) ExportValuationPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.valuation.ExportPDF(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="valorizacion.pdf"`)
	return c.Send(pdfBytes)
}

// GetStock godoc
// @Summary      Estado de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "UUID del producto"
// @Param        location_id  path  string  true  "UUID de la ubicación"
// @Success      200  {object}  dto.StockRecordDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/{location_id}/{product_id} [get]
func (h *ValuationHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.query.GetRecord(c.Context(), c.Params("product_id"), c.Params("location_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Stock de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  path   string  true   "UUID de la ubicación"
// @Param        limit        query  int     false  "máx. filas (default 20)"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}   dto.StockRecordDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/{location_id} [get]
func (h *ValuationHandler) ListStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.ListByLocation(c.Context(), c.Params("location_id"), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "records": out})
}

// ListMovements godoc
// @Summary      Libro de movimientos de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  path   string  true   "UUID de la ubicación"
// @Param        from         query  string  false  "fecha inicial (RFC3339)"
// @Param        to           query  string  false  "fecha final (RFC3339)"
// @Param        limit        query  int     false  "máx. filas (default 20)"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}   dto.StockMovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/{location_id}/movements [get]
func (h *ValuationHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC3339)"})
	}
	out, err := h.query.ListMovements(c.Context(), c.Params("location_id"), from, to, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetMovementsByReference godoc
// @Summary      Asientos de un documento (compra, venta, traslado)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        reference_id  path  string  true  "referencia del documento"
// @Success      200  {array}   dto.StockMovementDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/movements/{reference_id} [get]
func (h *ValuationHandler) GetMovementsByReference(c *fiber.Ctx) error {
	out, err := h.query.MovementsByReference(c.Context(), c.Params("reference_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Reconcile godoc
// @Summary      Reconciliar estado contra el libro
// @Description  Replay del libro del par desde cero y comparación con el
//
//	registro vigente.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "UUID del producto"
// @Param        location_id  path  string  true  "UUID de la ubicación"
// @Success      200  {object}  dto.ReconcileResultDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/{location_id}/{product_id}/reconcile [get]
func (h *ValuationHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Reconcile(c.Context(), c.Params("product_id"), c.Params("location_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
