package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/ports"
)

// ScanHandler maneja el escaneo de facturas de proveedor (protegido).
// La llamada al OCR ocurre fuera de cualquier transacción: el caller revisa
// las candidatas y luego las confirma como compra en una petición aparte.
type ScanHandler struct {
	scanService ports.BillScanService
}

// NewScanHandler construye el handler.
func NewScanHandler(scanService ports.BillScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// ScanBill godoc
// @Summary      Extraer líneas de una factura fotografiada
// @Description  Envía la imagen al OCR y devuelve filas candidatas (nombre,
//
//	cantidad, costo unitario) para revisión manual. No registra
//	ningún movimiento.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanBillRequest  true  "imagen en base64 + mime type"
// @Success      200   {object}  dto.ScanBillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts/scan [post]
func (h *ScanHandler) ScanBill(c *fiber.Ctx) error {
	var in dto.ScanBillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ImageBase64 == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "image_base64 requerido"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	candidates, err := h.scanService.ScanBill(ctx, in.ImageBase64, in.MimeType)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SCAN_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.ScanBillResponse{Candidates: candidates, ScannedAt: time.Now()})
}
