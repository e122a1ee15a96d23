// internal/transport/network.go
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"print-service/internal/model"
)

// NetworkTransport delivers payloads to printers listening on a raw TCP
// port, typically 9100 (JetDirect).
type NetworkTransport struct {
	host   string
	port   int
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewNetworkTransport creates a TCP transport for one printer
func NewNetworkTransport(host string, port int, logger *zap.Logger) *NetworkTransport {
	return &NetworkTransport{
		host: host,
		port: port,
		logger: logger.With(
			zap.String("transport", "network"),
			zap.String("host", host),
			zap.Int("port", port),
		),
	}
}

// Open dials the printer
func (nt *NetworkTransport) Open(ctx context.Context) error {
	nt.mutex.Lock()
	defer nt.mutex.Unlock()

	if nt.isOpen {
		return nil
	}

	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	address := net.JoinHostPort(nt.host, fmt.Sprintf("%d", nt.port))

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	nt.conn = conn
	nt.isOpen = true

	nt.logger.Debug("Network connection opened")
	return nil
}

// Write sends data over the open connection
func (nt *NetworkTransport) Write(ctx context.Context, data []byte) error {
	nt.mutex.Lock()
	defer nt.mutex.Unlock()

	if !nt.isOpen || nt.conn == nil {
		return fmt.Errorf("network connection not open")
	}

	if deadline, ok := ctx.Deadline(); ok {
		nt.conn.SetWriteDeadline(deadline)
	}

	n, err := nt.conn.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	nt.logger.Debug("Network write completed", zap.Int("bytes", n))
	return nil
}

// Close closes the connection
func (nt *NetworkTransport) Close() error {
	nt.mutex.Lock()
	defer nt.mutex.Unlock()

	if !nt.isOpen || nt.conn == nil {
		return nil
	}

	err := nt.conn.Close()
	nt.conn = nil
	nt.isOpen = false

	if err != nil {
		return fmt.Errorf("failed to close network connection: %w", err)
	}
	return nil
}

// Kind returns the connection kind
func (nt *NetworkTransport) Kind() model.ConnectionType {
	return model.ConnectionTypeNetwork
}
