// internal/model/printer.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionType represents how a printer is reached
type ConnectionType string

const (
	ConnectionTypeNetwork   ConnectionType = "network"
	ConnectionTypeUSB       ConnectionType = "usb"
	ConnectionTypeBluetooth ConnectionType = "bluetooth"
	ConnectionTypeSerial    ConnectionType = "serial"
)

// Valid reports whether the connection type is one of the supported kinds
func (ct ConnectionType) Valid() bool {
	switch ct {
	case ConnectionTypeNetwork, ConnectionTypeUSB, ConnectionTypeBluetooth, ConnectionTypeSerial:
		return true
	}
	return false
}

// Printer represents a configured output device for one branch
type Printer struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	BranchID       uuid.UUID      `json:"branch_id" db:"branch_id"`
	Name           string         `json:"name" db:"name"`
	ConnectionType ConnectionType `json:"connection_type" db:"connection_type"`

	// Network
	Address string `json:"ip_address,omitempty" db:"ip_address"`
	Port    int    `json:"port,omitempty" db:"port"`

	// USB (hex ids, e.g. "0x04b8"; empty means first printer-class device)
	USBVendorID  string `json:"usb_vendor_id,omitempty" db:"usb_vendor_id"`
	USBProductID string `json:"usb_product_id,omitempty" db:"usb_product_id"`

	// Bluetooth
	BluetoothName string `json:"bluetooth_name,omitempty" db:"bluetooth_name"`

	// Serial
	SerialPort string `json:"serial_port,omitempty" db:"serial_port"`
	BaudRate   int    `json:"baud_rate,omitempty" db:"baud_rate"`

	PaperWidth int       `json:"paper_width" db:"paper_width"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the per-kind connection invariants
func (p *Printer) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("printer name is required")
	}
	if !p.ConnectionType.Valid() {
		return fmt.Errorf("unsupported connection type: %q", p.ConnectionType)
	}

	switch p.ConnectionType {
	case ConnectionTypeNetwork:
		if p.Address == "" {
			return fmt.Errorf("network printer requires an address")
		}
		if p.Port <= 0 || p.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", p.Port)
		}
	case ConnectionTypeBluetooth:
		if p.BluetoothName == "" {
			return fmt.Errorf("bluetooth printer requires an advertised name")
		}
	case ConnectionTypeSerial:
		if p.SerialPort == "" {
			return fmt.Errorf("serial printer requires a device path")
		}
	}

	if p.PaperWidth != 0 && p.PaperWidth != 58 && p.PaperWidth != 80 {
		return fmt.Errorf("paper width must be 58 or 80, got %d", p.PaperWidth)
	}

	return nil
}

// Category represents a product category with an optional printer assignment
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BranchID  uuid.UUID  `json:"branch_id" db:"branch_id"`
	Name      string     `json:"name" db:"name"`
	PrinterID *uuid.UUID `json:"printer_id,omitempty" db:"printer_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
