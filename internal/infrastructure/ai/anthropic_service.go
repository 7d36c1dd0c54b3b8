package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/ports"
)

// Verificar en tiempo de compilación que AnthropicService implementa BillScanService.
var _ ports.BillScanService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	anthropicSystemPrompt = `Eres un digitador experto de facturas de proveedores de restaurantes en Colombia.
Extrae las líneas de producto de la imagen de la factura y devuelve ÚNICAMENTE un objeto JSON válido (sin markdown, sin bloques de código` + " ```json" + `) con esta estructura exacta:
{
  "lines": [
    {"name": "<nombre del producto tal como aparece>", "quantity": <número>, "unit_cost": <número: costo unitario en pesos>}
  ]
}

Reglas:
- Una entrada por línea de producto de la factura. Ignora subtotales, IVA, propinas y totales.
- quantity: la cantidad facturada. Si la factura muestra peso (kg, g), usa ese número.
- unit_cost: costo por unidad. Si la factura solo muestra el total de la línea, divide total/cantidad.
- Si un valor es ilegible, omite la línea completa en lugar de inventarlo.
- No incluyas texto fuera del JSON. Solo el objeto JSON.`
)

// AnthropicService adaptador que implementa BillScanService usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar de Go; no requiere el SDK oficial.
type AnthropicService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador.
// model suele ser "claude-3-5-haiku-20241022".
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			// Timeout de red de 25 s; el handler impone además un context.WithTimeout.
			Timeout: 25 * time.Second,
		},
	}
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type scanPayload struct {
	Lines []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		UnitCost float64 `json:"unit_cost"`
	} `json:"lines"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque Claude lo envuelva en markdown.
// Captura desde el primer '{' hasta el último '}' coincidente.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ── Implementación del puerto ─────────────────────────────────────────────────

// ScanBill envía la imagen de la factura a Claude y devuelve las filas candidatas
// (nombre, cantidad, costo unitario). El caller resuelve los nombres a productos
// y decide qué líneas registrar como compra.
func (s *AnthropicService) ScanBill(ctx context.Context, imageBase64, mimeType string) ([]dto.BillLineCandidateDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}
	if imageBase64 == "" {
		return nil, fmt.Errorf("AI: imagen vacía")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 2048,
		System:    anthropicSystemPrompt,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicContent{
					{
						Type: "image",
						Source: &anthropicImageSource{
							Type:      "base64",
							MediaType: mimeType,
							Data:      imageBase64,
						},
					},
					{Type: "text", Text: "Extrae las líneas de producto de esta factura."},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	// Manejar errores HTTP de la API de Anthropic
	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}

	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}

	rawText := anthResp.Content[0].Text

	// Parseo seguro: extraer solo el bloque JSON aunque Claude añada texto adicional.
	cleanJSON := extractJSON(rawText)
	if cleanJSON == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", rawText)
	}

	var scan scanPayload
	if err := json.Unmarshal([]byte(cleanJSON), &scan); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de líneas: %w (JSON extraído: %s)", err, cleanJSON)
	}

	candidates := make([]dto.BillLineCandidateDTO, 0, len(scan.Lines))
	for _, line := range scan.Lines {
		name := strings.TrimSpace(line.Name)
		if name == "" || line.Quantity <= 0 || line.UnitCost < 0 {
			continue
		}
		candidates = append(candidates, dto.BillLineCandidateDTO{
			Name:     name,
			Quantity: decimal.NewFromFloat(line.Quantity),
			UnitCost: decimal.NewFromFloat(line.UnitCost),
		})
	}
	return candidates, nil
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	// Eliminar bloques markdown ```json ... ``` o ``` ... ```
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// Quitar la línea de apertura (```json o ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		// Quitar el cierre ```
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	// Si el texto resultante ya empieza con '{', usarlo directamente
	if strings.HasPrefix(text, "{") {
		return text
	}

	// Fallback: regex para extraer el primer {...}
	match := jsonBlockRe.FindString(text)
	return strings.TrimSpace(match)
}
