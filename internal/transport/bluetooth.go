// internal/transport/bluetooth.go
package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// BluetoothTransport delivers payloads to BLE thermal printers. The printer
// is located by its advertised name, the first writable GATT characteristic
// takes the payload in chunks sized to the configured MTU.
type BluetoothTransport struct {
	name   string
	config *config.BTConfig

	device ble.Device
	client ble.Client
	char   *ble.Characteristic

	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewBluetoothTransport creates a BLE transport for one printer
func NewBluetoothTransport(name string, cfg *config.BTConfig, logger *zap.Logger) *BluetoothTransport {
	return &BluetoothTransport{
		name:   name,
		config: cfg,
		logger: logger.With(
			zap.String("transport", "bluetooth"),
			zap.String("name", name),
		),
	}
}

// Open scans for the advertised name, connects and resolves a writable
// characteristic
func (bt *BluetoothTransport) Open(ctx context.Context) error {
	bt.mutex.Lock()
	defer bt.mutex.Unlock()

	if bt.isOpen {
		return nil
	}

	device, err := linux.NewDevice()
	if err != nil {
		return fmt.Errorf("failed to initialize bluetooth adapter: %w", err)
	}
	ble.SetDefaultDevice(device)
	bt.device = device

	connectTimeout := bt.config.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 20 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	target := strings.ToLower(bt.name)
	client, err := ble.Connect(connectCtx, func(a ble.Advertisement) bool {
		return strings.ToLower(a.LocalName()) == target
	})
	if err != nil {
		bt.stopDevice()
		return fmt.Errorf("failed to connect to bluetooth printer %q: %w", bt.name, err)
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		client.CancelConnection()
		bt.stopDevice()
		return fmt.Errorf("failed to discover bluetooth services: %w", err)
	}

	char := writableCharacteristic(profile)
	if char == nil {
		client.CancelConnection()
		bt.stopDevice()
		return fmt.Errorf("no writable characteristic on %q", bt.name)
	}

	bt.client = client
	bt.char = char
	bt.isOpen = true

	bt.logger.Debug("Bluetooth connection opened")
	return nil
}

// Write sends data in MTU-sized chunks
func (bt *BluetoothTransport) Write(ctx context.Context, data []byte) error {
	bt.mutex.Lock()
	defer bt.mutex.Unlock()

	if !bt.isOpen || bt.client == nil {
		return fmt.Errorf("bluetooth connection not open")
	}

	chunkSize := bt.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 128
	}

	for offset := 0; offset < len(data); offset += chunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}

		if err := bt.client.WriteCharacteristic(bt.char, data[offset:end], true); err != nil {
			return fmt.Errorf("failed to write bluetooth chunk at %d: %w", offset, err)
		}
	}

	bt.logger.Debug("Bluetooth write completed", zap.Int("bytes", len(data)))
	return nil
}

// Close drops the connection and stops the adapter
func (bt *BluetoothTransport) Close() error {
	bt.mutex.Lock()
	defer bt.mutex.Unlock()

	if !bt.isOpen {
		return nil
	}

	if bt.client != nil {
		bt.client.CancelConnection()
		bt.client = nil
	}
	bt.char = nil
	bt.stopDevice()
	bt.isOpen = false
	return nil
}

// Kind returns the connection kind
func (bt *BluetoothTransport) Kind() model.ConnectionType {
	return model.ConnectionTypeBluetooth
}

func (bt *BluetoothTransport) stopDevice() {
	if bt.device != nil {
		bt.device.Stop()
		bt.device = nil
	}
}

// writableCharacteristic picks the first characteristic accepting writes.
// Generic BLE printers expose a single vendor service with one write
// characteristic, so first match is the right one.
func writableCharacteristic(profile *ble.Profile) *ble.Characteristic {
	for _, svc := range profile.Services {
		for _, char := range svc.Characteristics {
			if char.Property&(ble.CharWrite|ble.CharWriteNR) != 0 {
				return char
			}
		}
	}
	return nil
}
