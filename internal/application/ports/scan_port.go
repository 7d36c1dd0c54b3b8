package ports

import (
	"context"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
)

// BillScanService define el puerto de salida hacia el OCR de facturas y
// planillas de stock. Cualquier adaptador (Anthropic, Gemini, mock) debe
// implementar esta interfaz; el core la trata como caja negra.
//
// La llamada ocurre siempre ANTES de abrir la transacción de mutación: nunca
// se mantiene un lock de fila esperando una respuesta de red externa.
type BillScanService interface {
	// ScanBill recibe la imagen en base64 y devuelve filas candidatas
	// {nombre, cantidad, costo unitario}. El core nunca resuelve estos nombres
	// a productos para compras; eso lo hace el caller antes de la recepción.
	ScanBill(ctx context.Context, imageBase64 string, mimeType string) ([]dto.BillLineCandidateDTO, error)
}
