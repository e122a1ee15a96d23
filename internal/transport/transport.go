// internal/transport/transport.go
package transport

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// Deliverer is a one-shot channel to a physical printer. Implementations
// are created per attempt, opened, written to, and closed; none of them is
// reused across print jobs.
type Deliverer interface {
	// Open establishes the connection
	Open(ctx context.Context) error

	// Write sends raw ESC/POS bytes to the printer
	Write(ctx context.Context, data []byte) error

	// Close releases the connection
	Close() error

	// Kind returns the connection kind this deliverer serves
	Kind() model.ConnectionType
}

// Result normalizes the outcome of one delivery attempt. Err is retained
// for logging; callers branch on Success.
type Result struct {
	Success  bool
	Message  string
	Err      error
	Duration time.Duration
}

// Sender dispatches formatted payloads over the transport matching each
// printer's connection kind.
type Sender struct {
	config *config.PrintingConfig
	logger *zap.Logger
}

// NewSender creates a transport sender
func NewSender(cfg *config.PrintingConfig, logger *zap.Logger) *Sender {
	return &Sender{
		config: cfg,
		logger: logger.With(zap.String("component", "transport")),
	}
}

// Send delivers a payload to the given printer. Transport failures are
// reported in the Result, never as a panic or a lost error: open, write,
// close, each step degrades to Success=false with the cause retained.
func (s *Sender) Send(ctx context.Context, printer *model.Printer, payload []byte) Result {
	deliverer, err := s.newDeliverer(printer)
	if err != nil {
		s.logger.Error("No transport for printer",
			zap.String("printer", printer.Name),
			zap.Error(err),
		)
		return Result{Message: err.Error(), Err: err}
	}

	timeout := s.config.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	if err := deliverer.Open(ctx); err != nil {
		s.logger.Error("Failed to open printer connection",
			zap.String("printer", printer.Name),
			zap.String("kind", string(deliverer.Kind())),
			zap.Error(err),
		)
		return Result{Message: err.Error(), Err: err, Duration: time.Since(start)}
	}
	defer deliverer.Close()

	if err := deliverer.Write(ctx, payload); err != nil {
		s.logger.Error("Failed to write to printer",
			zap.String("printer", printer.Name),
			zap.String("kind", string(deliverer.Kind())),
			zap.Int("bytes", len(payload)),
			zap.Error(err),
		)
		return Result{Message: err.Error(), Err: err, Duration: time.Since(start)}
	}

	duration := time.Since(start)
	s.logger.Info("Payload delivered",
		zap.String("printer", printer.Name),
		zap.String("kind", string(deliverer.Kind())),
		zap.Int("bytes", len(payload)),
		zap.Duration("duration", duration),
	)

	return Result{Success: true, Message: "printed", Duration: duration}
}

// newDeliverer builds the transport for a printer's connection kind. The
// switch is exhaustive over model.ConnectionType; an unknown kind is a
// configuration error, not a silent no-op.
func (s *Sender) newDeliverer(printer *model.Printer) (Deliverer, error) {
	switch printer.ConnectionType {
	case model.ConnectionTypeNetwork:
		port := printer.Port
		if port == 0 {
			port = s.config.DefaultPort
		}
		return NewNetworkTransport(printer.Address, port, s.logger), nil

	case model.ConnectionTypeUSB:
		return NewUSBTransport(printer.USBVendorID, printer.USBProductID, s.logger), nil

	case model.ConnectionTypeBluetooth:
		return NewBluetoothTransport(printer.BluetoothName, &s.config.Bluetooth, s.logger), nil

	case model.ConnectionTypeSerial:
		baud := printer.BaudRate
		if baud == 0 {
			baud = s.config.Serial.BaudRate
		}
		return NewSerialTransport(printer.SerialPort, baud, &s.config.Serial, s.logger), nil

	default:
		return nil, fmt.Errorf("unsupported connection type: %q", printer.ConnectionType)
	}
}
