// Package fiscalgw clientes del gateway de emisión de NFC-e.
package fiscalgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
)

var _ fiscal.Gateway = (*HTTPGateway)(nil)

// HTTPGateway solicita la emisión al gateway externo. La respuesta llega después por callback,
// así que RequestEmission devuelve (nil, nil) cuando el gateway acepta la solicitud.
type HTTPGateway struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPGateway construye el cliente. baseURL sin barra final.
func NewHTTPGateway(baseURL, token string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestEmission POST {baseURL}/emissions con Idempotency-Key = SaleID.
// 409 significa que el gateway ya tenía la solicitud: se trata como aceptada.
func (g *HTTPGateway) RequestEmission(ctx context.Context, req fiscal.EmissionRequest) (*fiscal.EmissionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("serializar solicitud: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/emissions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("crear request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.SaleID)
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway fiscal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, fmt.Errorf("gateway fiscal HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
