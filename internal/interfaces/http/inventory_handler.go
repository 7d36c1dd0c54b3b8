package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain"
)

// InventoryHandler maneja las mutaciones de inventario (protegido).
type InventoryHandler struct {
	receiving  *inventory.ReceivingUseCase
	deduction  *inventory.DeductionUseCase
	adjustment *inventory.AdjustmentUseCase
	transfer   *inventory.TransferUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	receiving *inventory.ReceivingUseCase,
	deduction *inventory.DeductionUseCase,
	adjustment *inventory.AdjustmentUseCase,
	transfer *inventory.TransferUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		receiving:  receiving,
		deduction:  deduction,
		adjustment: adjustment,
		transfer:   transfer,
	}
}

// ReceivePurchase godoc
// @Summary      Confirmar documento de compra
// @Description  Confirma todas las líneas en una sola transacción: si una
//
//	línea falla, el documento entero se rechaza.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceivePurchaseRequest  true  "líneas con product_id, location_id, quantity, unit_cost"
// @Success      201   {object}  dto.ReceivePurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) ReceivePurchase(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.receiving.ReceivePurchase(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CloseSale godoc
// @Summary      Descargar inventario de una venta cerrada
// @Description  Resuelve la receta de cada plato y descuenta los ingredientes.
//
//	Nunca falla por stock: líneas sin receta quedan "unmatched" y los
//	descargues fallidos quedan como advertencias.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseSaleRequest  true  "líneas con menu_product_id y quantity_sold"
// @Success      200   {object}  dto.CloseSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) CloseSale(c *fiber.Ctx) error {
	var in dto.CloseSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.deduction.CloseSale(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.JSON(out)
}

// ImportSales godoc
// @Summary      Importar ventas por nombre (planilla / texto)
// @Description  Resuelve cada fila por coincidencia difusa de nombre contra
//
//	las recetas; empates y sin-coincidencia quedan "unmatched".
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportSalesRequest  true  "filas con raw_name y quantity_sold"
// @Success      200   {object}  dto.CloseSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales/import [post]
func (h *InventoryHandler) ImportSales(c *fiber.Ctx) error {
	var in dto.ImportSalesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.deduction.ImportSales(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.JSON(out)
}

// ApplyAdjustment godoc
// @Summary      Aplicar conteo físico / corrección manual
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, location_id, actual_quantity, reason_code, cost_override opcional"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) ApplyAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.adjustment.ApplyCount(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ApplyCountByToken aplica un conteo desde el canal QR. La ubicación viene del
// token, no del body: el token solo autoriza conteos sobre su ubicación.
//
// ApplyCountByToken godoc
// @Summary      Aplicar conteo físico vía token QR
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, actual_quantity, reason_code (location_id sale del token)"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) ApplyCountByToken(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.LocationID = GetCountLocationID(c)
	if in.ReasonCode == "" {
		in.ReasonCode = "COUNT"
	}
	out, err := h.adjustment.ApplyCount(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterWaste godoc
// @Summary      Registrar merma / desperdicio
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WasteRequest  true  "product_id, location_id, quantity, reason_code"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/waste [post]
func (h *InventoryHandler) RegisterWaste(c *fiber.Ctx) error {
	var in dto.WasteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.deduction.RegisterWaste(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Registra la salida en origen y la entrada en destino en una
//
//	sola transacción, al costo promedio vigente del origen.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, source_location_id, dest_location_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.transfer.Transfer(c.Context(), GetUserID(c), in)
	if err != nil {
		return mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// mutationError mapea errores de dominio a códigos HTTP.
func mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrSameLocation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_LOCATION", Message: "origen y destino deben ser distintos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrTxConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TX_CONFLICT", Message: "conflicto de concurrencia; reintente la operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
