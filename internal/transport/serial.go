// internal/transport/serial.go
package transport

import (
	"context"
	"fmt"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// SerialTransport delivers payloads to printers on RS-232/USB-serial ports
type SerialTransport struct {
	portName string
	baudRate int
	config   *config.SerialConfig

	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewSerialTransport creates a serial transport for one printer. The
// printer's baud rate wins over the configured default; framing (data
// bits, parity, stop bits) comes from the serial config section.
func NewSerialTransport(portName string, baudRate int, cfg *config.SerialConfig, logger *zap.Logger) *SerialTransport {
	return &SerialTransport{
		portName: portName,
		baudRate: baudRate,
		config:   cfg,
		logger: logger.With(
			zap.String("transport", "serial"),
			zap.String("port", portName),
			zap.Int("baud_rate", baudRate),
		),
	}
}

// serialMode maps the config section to the port mode, defaulting to 8N1
func serialMode(baudRate int, cfg *config.SerialConfig) *serial.Mode {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	if cfg == nil {
		return mode
	}

	if cfg.DataBits == 5 || cfg.DataBits == 6 || cfg.DataBits == 7 || cfg.DataBits == 8 {
		mode.DataBits = cfg.DataBits
	}
	switch cfg.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	}
	if cfg.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	return mode
}

// Open opens the serial port with the configured framing
func (st *SerialTransport) Open(ctx context.Context) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if st.isOpen {
		return nil
	}

	mode := serialMode(st.baudRate, st.config)

	port, err := serial.Open(st.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", st.portName, err)
	}

	st.port = port
	st.isOpen = true

	st.logger.Debug("Serial port opened")
	return nil
}

// Write sends data to the serial port
func (st *SerialTransport) Write(ctx context.Context, data []byte) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if !st.isOpen || st.port == nil {
		return fmt.Errorf("serial port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := st.port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	if err := st.port.Drain(); err != nil {
		return fmt.Errorf("failed to drain serial port: %w", err)
	}

	st.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return nil
}

// Close closes the serial port
func (st *SerialTransport) Close() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if !st.isOpen || st.port == nil {
		return nil
	}

	err := st.port.Close()
	st.port = nil
	st.isOpen = false

	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// Kind returns the connection kind
func (st *SerialTransport) Kind() model.ConnectionType {
	return model.ConnectionTypeSerial
}
