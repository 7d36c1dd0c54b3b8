package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Recepción de compras ──────────────────────────────────────────────────────

// PurchaseLineRequest una línea de un documento de compra ya resuelto a IDs.
type PurchaseLineRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// ReceivePurchaseRequest body para POST /api/inventory/receipts.
// Todas las líneas se confirman en una sola transacción o ninguna.
type ReceivePurchaseRequest struct {
	ReferenceID string                `json:"reference_id,omitempty"` // vacío = se genera
	Lines       []PurchaseLineRequest `json:"lines"`
}

// PurchaseLineResult resultado por línea del documento confirmado.
type PurchaseLineResult struct {
	ProductID         string          `json:"product_id"`
	LocationID        string          `json:"location_id"`
	ResultingQuantity decimal.Decimal `json:"resulting_quantity"`
	ResultingAvgCost  decimal.Decimal `json:"resulting_avg_cost"`
}

// ReceivePurchaseResponse referencia confirmada + estado resultante por línea.
type ReceivePurchaseResponse struct {
	ReferenceID string               `json:"reference_id"`
	Lines       []PurchaseLineResult `json:"lines"`
}

// ── Cierre de venta / descargue por receta ────────────────────────────────────

// SaleLineRequest una línea de venta cerrada en el POS.
type SaleLineRequest struct {
	MenuProductID string          `json:"menu_product_id"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"`
}

// CloseSaleRequest body para POST /api/inventory/sales.
type CloseSaleRequest struct {
	SaleID string            `json:"sale_id"`
	Lines  []SaleLineRequest `json:"lines"`
}

// ImportedSaleLineRequest una fila de venta importada (planilla / OCR), con
// nombre crudo que se resuelve por coincidencia difusa contra las recetas.
type ImportedSaleLineRequest struct {
	RawName      string          `json:"raw_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
}

// ImportSalesRequest body para POST /api/inventory/sales/import.
type ImportSalesRequest struct {
	ReferenceID string                    `json:"reference_id,omitempty"`
	Lines       []ImportedSaleLineRequest `json:"lines"`
}

// DeductionWarning advertencia por ingrediente descargado (nunca un error que
// bloquee la venta).
type DeductionWarning struct {
	IngredientProductID string `json:"ingredient_product_id"`
	LocationID          string `json:"location_id"`
	Deducted            bool   `json:"deducted"`
	ResultingNegative   bool   `json:"resulting_negative"`
	Detail              string `json:"detail,omitempty"`
}

// SaleLineOutcome resultado de una línea de venta: descargada, o sin receta.
type SaleLineOutcome struct {
	MenuProductID string             `json:"menu_product_id,omitempty"`
	RawName       string             `json:"raw_name,omitempty"`
	Unmatched     bool               `json:"unmatched"`
	Warnings      []DeductionWarning `json:"warnings,omitempty"`
}

// CloseSaleResponse advertencias por línea; el cierre de venta nunca falla por stock.
type CloseSaleResponse struct {
	SaleID string            `json:"sale_id"`
	Lines  []SaleLineOutcome `json:"lines"`
}

// ── Ajustes (conteo físico / corrección) ──────────────────────────────────────

// AdjustmentRequest body para POST /api/inventory/adjustments. El mismo
// contrato sirve al conteo por QR; solo cambia la autenticación del canal.
type AdjustmentRequest struct {
	ProductID      string           `json:"product_id"`
	LocationID     string           `json:"location_id"`
	ActualQuantity decimal.Decimal  `json:"actual_quantity"`
	ReasonCode     string           `json:"reason_code"`
	Note           string           `json:"note,omitempty"`
	CostOverride   *decimal.Decimal `json:"cost_override,omitempty"`
}

// AdjustmentResponse estado resultante del ajuste.
type AdjustmentResponse struct {
	ReferenceID       string          `json:"reference_id"`
	QuantityDelta     decimal.Decimal `json:"quantity_delta"`
	ResultingQuantity decimal.Decimal `json:"resulting_quantity"`
	ResultingAvgCost  decimal.Decimal `json:"resulting_avg_cost"`
}

// WasteRequest body para POST /api/inventory/waste (merma / desperdicio).
type WasteRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"` // positiva; se descuenta
	ReasonCode string          `json:"reason_code"`
	Note       string          `json:"note,omitempty"`
}

// ── Traslados ─────────────────────────────────────────────────────────────────

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID        string          `json:"product_id"`
	SourceLocationID string          `json:"source_location_id"`
	DestLocationID   string          `json:"dest_location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// TransferResponse estado resultante en ambas ubicaciones.
type TransferResponse struct {
	ReferenceID    string          `json:"reference_id"`
	SourceQuantity decimal.Decimal `json:"source_quantity"`
	SourceAvgCost  decimal.Decimal `json:"source_avg_cost"`
	DestQuantity   decimal.Decimal `json:"dest_quantity"`
	DestAvgCost    decimal.Decimal `json:"dest_avg_cost"`
}

// ── Consultas de stock y libro de movimientos ─────────────────────────────────

// StockRecordDTO estado vigente de un (producto, ubicación).
type StockRecordDTO struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	Value      decimal.Decimal `json:"value"`
	Negative   bool            `json:"negative"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StockMovementDTO un asiento del libro de movimientos.
type StockMovementDTO struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	LocationID         string          `json:"location_id"`
	Type               string          `json:"type"`
	QuantityDelta      decimal.Decimal `json:"quantity_delta"`
	UnitCostAtMovement decimal.Decimal `json:"unit_cost_at_movement"`
	ResultingQuantity  decimal.Decimal `json:"resulting_quantity"`
	ResultingAvgCost   decimal.Decimal `json:"resulting_avg_cost"`
	ReferenceID        string          `json:"reference_id,omitempty"`
	ReasonCode         string          `json:"reason_code,omitempty"`
	Note               string          `json:"note,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
	Actor              string          `json:"actor,omitempty"`
}

// ── Reportes de valorización ──────────────────────────────────────────────────

// LocationValuationDTO valorización de una ubicación.
type LocationValuationDTO struct {
	LocationID   string          `json:"location_id"`
	LocationCode string          `json:"location_code"`
	LocationName string          `json:"location_name"`
	ItemCount    int64           `json:"item_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// LowStockDTO SKU en o bajo su mínimo.
type LowStockDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQty      decimal.Decimal `json:"min_qty"`
}

// NegativeStockDTO registro con cantidad negativa pendiente de corrección.
type NegativeStockDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgCost     decimal.Decimal `json:"avg_cost"`
}

// ── Reconciliación ────────────────────────────────────────────────────────────

// ReconcileResultDTO compara el estado almacenado contra el replay del libro.
type ReconcileResultDTO struct {
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	MovementCount    int             `json:"movement_count"`
	StoredQuantity   decimal.Decimal `json:"stored_quantity"`
	StoredAvgCost    decimal.Decimal `json:"stored_avg_cost"`
	ReplayedQuantity decimal.Decimal `json:"replayed_quantity"`
	ReplayedAvgCost  decimal.Decimal `json:"replayed_avg_cost"`
	Consistent       bool            `json:"consistent"`
}

// ── Escaneo de factura (OCR) ──────────────────────────────────────────────────

// ScanBillRequest body para POST /api/inventory/receipts/scan.
type ScanBillRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type,omitempty"` // vacío = image/jpeg
}

// BillLineCandidateDTO una fila candidata devuelta por el OCR; el caller la
// resuelve a product_id antes de enviarla como línea de compra.
type BillLineCandidateDTO struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ScanBillResponse candidatas extraídas de la imagen de la factura.
type ScanBillResponse struct {
	Candidates []BillLineCandidateDTO `json:"candidates"`
	ScannedAt  time.Time              `json:"scanned_at"`
}
