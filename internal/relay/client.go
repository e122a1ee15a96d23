// internal/relay/client.go
package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"print-service/internal/model"
)

// Request is the wire format accepted by a print bridge. Data carries the
// raw ESC/POS payload base64-encoded; Type selects between a caller-built
// payload and a bridge-generated test page.
type Request struct {
	Type    string      `json:"type"`
	Data    string      `json:"data,omitempty"`
	Printer RequestDest `json:"printer"`
}

// RequestDest identifies the target printer on the bridge side
type RequestDest struct {
	Name           string `json:"name"`
	ConnectionType string `json:"connection_type"`
	Address        string `json:"ip_address,omitempty"`
	Port           int    `json:"port,omitempty"`
}

// Response is the bridge's reply envelope
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Status is the bridge's health report
type Status struct {
	Status string `json:"status"`
	Bridge string `json:"bridge"`
}

// Client talks to a remote print bridge over HTTP. Used when the service
// cannot reach a printer directly and a bridge box on the printer's LAN
// relays the bytes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a bridge client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(zap.String("component", "relay"), zap.String("bridge_url", baseURL)),
	}
}

// PrintRaw forwards a formatted payload to the bridge for delivery
func (c *Client) PrintRaw(ctx context.Context, printer *model.Printer, payload []byte) error {
	req := Request{
		Type:    "raw",
		Data:    base64.StdEncoding.EncodeToString(payload),
		Printer: destFor(printer),
	}
	return c.post(ctx, req)
}

// PrintTest asks the bridge to print its own test page on the printer
func (c *Client) PrintTest(ctx context.Context, printer *model.Printer) error {
	req := Request{
		Type:    "test",
		Printer: destFor(printer),
	}
	return c.post(ctx, req)
}

// Ping checks the bridge is reachable and reports online
func (c *Client) Ping(ctx context.Context) (*Status, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge status returned HTTP %d", resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode bridge status: %w", err)
	}

	return &status, nil
}

func (c *Client) post(ctx context.Context, req Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode bridge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	var bridgeResp Response
	if err := json.NewDecoder(resp.Body).Decode(&bridgeResp); err != nil {
		return fmt.Errorf("failed to decode bridge response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !bridgeResp.Success {
		msg := bridgeResp.Error
		if msg == "" {
			msg = bridgeResp.Message
		}
		return fmt.Errorf("bridge rejected print (HTTP %d): %s", resp.StatusCode, msg)
	}

	c.logger.Debug("Bridge accepted print",
		zap.String("printer", req.Printer.Name),
		zap.String("type", req.Type),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func destFor(printer *model.Printer) RequestDest {
	return RequestDest{
		Name:           printer.Name,
		ConnectionType: string(printer.ConnectionType),
		Address:        printer.Address,
		Port:           printer.Port,
	}
}
